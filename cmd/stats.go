package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var statsJSON bool

// statsCmd validates URLs read from stdin (one per line) and prints the
// resulting decision-log statistics and rejection patterns. Useful for
// batch-auditing an existing URL inventory.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Validate URLs from stdin and report aggregate statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := initPipeline(cfg)

		scanner := bufio.NewScanner(os.Stdin)
		var count int
		for scanner.Scan() {
			rawURL := strings.TrimSpace(scanner.Text())
			if rawURL == "" {
				continue
			}
			env.Orchestrator.Validate(ctx, rawURL, "", nil)
			count++
		}
		if err := scanner.Err(); err != nil {
			return eris.Wrap(err, "stats: read stdin")
		}

		report := struct {
			Validated int `json:"validated"`
			Stats     any `json:"stats"`
			Patterns  any `json:"patterns"`
			Cache     any `json:"cache"`
		}{
			Validated: count,
			Stats:     env.Declog.Stats(),
			Patterns:  env.Declog.Patterns(),
			Cache:     env.Cache.Stats(),
		}

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		s := env.Declog.Stats()
		fmt.Printf("validated: %d  ok: %d  rejected: %d  errors: %d (network %d, timeout %d)\n",
			s.Total, s.Successful, s.Rejected, s.Errors, s.NetworkErrors, s.TimeoutErrors)
		fmt.Printf("avg validation time: %.1fms\n", s.AverageValidationTimeMs)
		for _, rc := range env.Declog.Patterns().CommonReasons {
			fmt.Printf("  %5.1f%%  %d  %s\n", rc.Percentage, rc.Count, rc.Reason)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit JSON output")
	rootCmd.AddCommand(statsCmd)
}
