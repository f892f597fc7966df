package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/niteshrghv/indm/internal/config"
	"github.com/niteshrghv/indm/internal/engine"
	"github.com/niteshrghv/indm/internal/engine/state"
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <ID>",
	Short: "Resume a paused download",
	Long:  `Resume a download from its persisted resume record.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jobID := args[0]

		settings, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		stateDir, _ := cmd.Flags().GetString("state-dir")
		if stateDir == "" {
			stateDir = settings.Download.StateDir
		}
		if stateDir == "" {
			stateDir = settings.Download.OutputDir
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

		rec, err := state.Load(state.PathFor(stateDir, jobID))
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Error: no resume record for %s in %s\n", jobID, stateDir)
			} else if errors.Is(err, state.ErrCorrupt) {
				fmt.Fprintf(os.Stderr, "Error: resume record for %s is corrupt; re-run 'indm get' to start fresh\n", jobID)
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}

		isMaster, err := AcquireLock()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error acquiring lock: %v\n", err)
			os.Exit(1)
		}
		if !isMaster {
			fmt.Fprintln(os.Stderr, "Error: another indm instance is running.")
			os.Exit(1)
		}
		defer ReleaseLock()

		job, err := engine.FromRecord(rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		catalog := openCatalog()
		if catalog != nil {
			defer catalog.Close()
		}

		if err := runJob(job, catalog, quiet); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.Flags().String("state-dir", "", "directory holding the resume record")
	resumeCmd.Flags().BoolP("quiet", "q", false, "suppress the progress bar")
}
