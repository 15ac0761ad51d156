package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/imagegate/internal/model"
)

var (
	validateMimeType    string
	validateConcurrency int
	validateJSON        bool
)

var validateCmd = &cobra.Command{
	Use:   "validate URL...",
	Short: "Validate one or more image URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := initPipeline(cfg)

		type outcome struct {
			URL    string                     `json:"url"`
			Result model.ClassificationResult `json:"result"`
		}

		results := make([]outcome, len(args))
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(fanOutLimit(validateConcurrency))
		for i, rawURL := range args {
			i, rawURL := i, rawURL
			g.Go(func() error {
				res := env.Orchestrator.Validate(gctx, rawURL, validateMimeType, nil)
				mu.Lock()
				results[i] = outcome{URL: rawURL, Result: res}
				mu.Unlock()
				return nil
			})
		}
		// Validate never fails; the group exists only for bounded fan-out.
		_ = g.Wait()

		if validateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		for _, out := range results {
			if out.Result.IsValid {
				fmt.Printf("%s\n  valid: %s (%s, confidence %.2f)\n",
					out.URL, out.Result.DetectedFormat, out.Result.DetectionMethod, out.Result.Confidence)
			} else {
				fmt.Printf("%s\n  rejected: %s (%s, confidence %.2f)\n",
					out.URL, out.Result.RejectionReason, out.Result.DetectionMethod, out.Result.Confidence)
			}
		}
		return nil
	},
}

// fanOutLimit keeps the errgroup limit positive; SetLimit(0) would make
// every Go call block.
func fanOutLimit(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func init() {
	validateCmd.Flags().StringVar(&validateMimeType, "mime-type", "", "MIME type hint applied to every URL")
	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", 4, "max concurrent validations")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit JSON output")
	rootCmd.AddCommand(validateCmd)
}
