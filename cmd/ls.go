package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/niteshrghv/indm/internal/utils"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List downloads",
	Long:  `List past and paused downloads from the history catalog.`,
	Run: func(cmd *cobra.Command, args []string) {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		catalog := openCatalog()
		if catalog == nil {
			fmt.Fprintln(os.Stderr, "Error: history catalog unavailable")
			os.Exit(1)
		}
		defer catalog.Close()

		entries, err := catalog.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing downloads: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(entries, "", "  ")
			fmt.Println(string(data))
			return
		}

		if len(entries) == 0 {
			fmt.Println("No downloads found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFILENAME\tSTATUS\tPROGRESS\tSIZE")
		for _, e := range entries {
			var progress float64
			if e.TotalBytes > 0 {
				progress = float64(e.Downloaded) * 100 / float64(e.TotalBytes)
			}

			id := e.ID
			if len(id) > 8 {
				id = id[:8]
			}
			name := e.FileName
			if len(name) > 30 {
				name = name[:27] + "..."
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%s\n",
				id, name, e.Status, progress,
				utils.ConvertBytesToHumanReadable(e.TotalBytes))
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().Bool("json", false, "Output in JSON format")
}
