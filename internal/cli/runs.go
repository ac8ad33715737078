package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cityfeed/cityfeed/internal/store"
)

var runsLimit int

// runsCmd lists recent ingestion runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent ingestion runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := store.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		if err := s.Migrate(); err != nil {
			return err
		}

		runs, err := s.ListRuns(runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no ingestion runs yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE\tCITY\tSTATUS\tSTARTED\tERROR")
		for _, r := range runs {
			errText := ""
			if r.Error != nil {
				errText = *r.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Source, r.City, r.Status,
				r.StartedAt.Format("2006-01-02 15:04:05"), errText)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
