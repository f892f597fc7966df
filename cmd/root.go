package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "indm",
	Short:   "A segmented download manager written in Go",
	Long: `indm fetches a file over multiple concurrent ranged connections,
assembles it into a sparse temp file, and keeps a resume record so an
interrupted download restarts exactly where it stopped.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("indm version {{.Version}}\n")
}
