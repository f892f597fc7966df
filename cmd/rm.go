package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/niteshrghv/indm/internal/engine/state"
	"github.com/niteshrghv/indm/internal/history"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <ID>",
	Short: "Remove a download from the history",
	Long:  `Remove a download from the history catalog, along with its resume record if that record is in the download's output directory.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog := openCatalog()
		if catalog == nil {
			fmt.Fprintln(os.Stderr, "Error: history catalog unavailable")
			os.Exit(1)
		}
		defer catalog.Close()

		id, err := resolveID(catalog, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		entry, err := catalog.Get(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if entry == nil {
			fmt.Fprintf(os.Stderr, "Error: download not found: %s\n", id)
			os.Exit(1)
		}

		// The catalog does not record the state directory, so the resume
		// record is removed only from the destination file's directory (the
		// default state location); a record kept elsewhere through
		// --state-dir or state_dir is left in place.
		if entry.FinalPath != "" {
			_ = state.Delete(filepath.Dir(entry.FinalPath), id)
		}

		if err := catalog.Remove(id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %s\n", id)
	},
}

// resolveID expands a unique id prefix into the full job id. An ambiguous
// prefix is an error; an unknown one passes through and fails later with
// "not found".
func resolveID(catalog *history.Catalog, partial string) (string, error) {
	entries, err := catalog.List()
	if err != nil {
		return partial, nil
	}

	var matches []string
	for _, e := range entries {
		if strings.HasPrefix(e.ID, partial) {
			matches = append(matches, e.ID)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous ID prefix %q matches %d downloads", partial, len(matches))
	}
	return partial, nil
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
