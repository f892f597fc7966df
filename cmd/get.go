package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/niteshrghv/indm/internal/config"
	"github.com/niteshrghv/indm/internal/engine"
	"github.com/niteshrghv/indm/internal/engine/state"
	"github.com/niteshrghv/indm/internal/utils"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Download a file",
	Long: `Download a file from an HTTP(S) URL using multiple ranged connections.

If a resume record for the same URL already exists for the given --id, the
download continues from the recorded progress instead of starting over.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rawurl := args[0]

		settings, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		outputDir, _ := cmd.Flags().GetString("output")
		if outputDir == "" {
			outputDir = settings.Download.OutputDir
		}
		stateDir, _ := cmd.Flags().GetString("state-dir")
		if stateDir == "" {
			stateDir = settings.Download.StateDir
		}
		connections, _ := cmd.Flags().GetInt("connections")
		if connections < 1 {
			connections = settings.Download.Connections
		}
		fileName, _ := cmd.Flags().GetString("filename")
		jobID, _ := cmd.Flags().GetString("id")
		if jobID == "" {
			jobID = uuid.New().String()
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

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

		job, err := buildJob(rawurl, outputDir, stateDir, fileName, jobID, connections)
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

// buildJob constructs a fresh job, or rebuilds one from an existing resume
// record for the same id. A corrupt record falls back to a fresh start.
func buildJob(rawurl, outputDir, stateDir, fileName, jobID string, connections int) (*engine.Job, error) {
	recDir := stateDir
	if recDir == "" {
		recDir = outputDir
	}

	rec, err := state.Load(state.PathFor(recDir, jobID))
	switch {
	case err == nil && rec.URL == rawurl:
		utils.Debug("resuming job %s from %s", jobID, state.PathFor(recDir, jobID))
		return engine.FromRecord(rec)
	case err != nil && !os.IsNotExist(err):
		fmt.Fprintln(os.Stderr, "Warning: resume record unusable, starting fresh.")
	}

	opts := []engine.Option{
		engine.WithUUID(jobID),
		engine.WithConnections(connections),
	}
	if stateDir != "" {
		opts = append(opts, engine.WithStateDir(stateDir))
	}
	if fileName != "" {
		opts = append(opts, engine.WithFileName(fileName))
	}
	return engine.New(rawurl, outputDir, opts...)
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringP("output", "o", "", "output directory")
	getCmd.Flags().IntP("connections", "c", 0, "number of parallel connections")
	getCmd.Flags().StringP("filename", "O", "", "save under this file name")
	getCmd.Flags().String("state-dir", "", "directory for resume records (default: output directory)")
	getCmd.Flags().String("id", "", "job id (default: generated)")
	getCmd.Flags().BoolP("quiet", "q", false, "suppress the progress bar")
}
