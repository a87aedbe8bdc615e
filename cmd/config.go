package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/examslot/internal/config"
)

// loadConfig resolves the config path, merges it over the defaults and
// applies environment fallbacks.
func loadConfig(explicit string) (config.File, string, error) {
	path := config.ResolvePath(explicit)
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, path, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv(getenv)
	return cfg, path, nil
}

func newConfigCmd(configFile *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged examslot configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			w := cmd.OutOrStdout()
			if path != "" {
				fmt.Fprintf(w, "# merged from %s\n", path)
			}
			_, err = w.Write(out)
			return err
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the built-in default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
			return err
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "themes",
		Short: "List available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			for _, name := range cfg.ThemeNames() {
				marker := " "
				if name == cfg.UI.Theme {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ResolvePath(*configFile)
			if path == "" {
				return fmt.Errorf("no config file found (looked under $XDG_CONFIG_HOME and %s)", os.ExpandEnv("$HOME/.config"))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})
	return configCmd
}
