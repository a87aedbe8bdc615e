package cmd

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/examslot/pkg/settings"
)

// cliVersionString builds the text printed by `examslot version` and --version.
func cliVersionString() string {
	info := settings.VersionInformation
	version := info.BuildVersion
	commit := info.Commit
	goVersion := runtime.Version()

	if bi, ok := rdebug.ReadBuildInfo(); ok {
		if version == "" || version == "v0.0.0-nightly" {
			if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
				version = bi.Main.Version
			}
		}
		if commit == "" || commit == "unknown" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
					break
				}
			}
		}
		if bi.GoVersion != "" {
			goVersion = bi.GoVersion
		}
	}
	return fmt.Sprintf("%s %s (commit %s, built %s, go %s)", settings.CliBinaryName, version, commit, info.BuildTime, goVersion)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print examslot version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}
