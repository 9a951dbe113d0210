package cmd

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tblx/pkg/settings"
)

// versionString builds the human-readable version used by `tblx version`
// and --version.
func versionString() string {
	info := settings.VersionInformation
	version := info.BuildVersion
	if bi, ok := rdebug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" && version == "v0.0.0-nightly" {
		version = bi.Main.Version
	}
	return fmt.Sprintf("%s %s (commit %s, built %s, go %s)", settings.CliBinaryName, version, info.Commit, info.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  maxArgs(0),
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}
