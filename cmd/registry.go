package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/imagegate/internal/model"
	"github.com/sells-group/imagegate/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect and check the format registry",
}

var registryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List supported and rejected formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.NewDefault()
		fmt.Printf("supported (enabled): %s\n", strings.Join(reg.SupportedNames(), ", "))
		fmt.Printf("rejected: %s\n", strings.Join(reg.RejectedNames(), ", "))
		return nil
	},
}

var registryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the registry configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.NewDefault()
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		if err := enc.Encode(reg.Get()); err != nil {
			return eris.Wrap(err, "registry export: encode")
		}
		return nil
	},
}

var registryCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Validate a registry configuration file without applying it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "registry check: read file")
		}
		var candidate model.RegistryConfig
		if err := yaml.Unmarshal(data, &candidate); err != nil {
			return eris.Wrap(err, "registry check: parse yaml")
		}

		reg := registry.NewDefault()
		outcome := reg.ReplaceAll(candidate)
		for _, w := range outcome.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if !outcome.IsValid {
			for _, e := range outcome.Errors {
				fmt.Printf("error: %s\n", e)
			}
			return eris.Errorf("registry check: %d error(s)", len(outcome.Errors))
		}
		fmt.Println("configuration is valid")
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryShowCmd, registryExportCmd, registryCheckCmd)
	rootCmd.AddCommand(registryCmd)
}
