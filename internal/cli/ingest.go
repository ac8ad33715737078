package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cityfeed/cityfeed/internal/pipeline"
	"github.com/cityfeed/cityfeed/internal/store"
)

var (
	ingestCity string
	ingestURL  string
)

// ingestCmd runs one ingestion from the command line.
var ingestCmd = &cobra.Command{
	Use:   "ingest <source>",
	Short: "Run one ingestion for a source and city",
	Long: `Execute a single ingestion run and print its summary.

Scrape sources need --url pointing at the page to extract; geodata
sources (openstreetmap) query around the city centroid and ignore --url.

Examples:
  cityfeed ingest dice --city milan --url https://dice.fm/browse/milan
  cityfeed ingest openstreetmap --city milan`,
	Args: cobra.ExactArgs(1),
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

		pipe := pipeline.New(cfg, s)
		summary, err := pipe.Ingest(cmd.Context(), args[0], ingestCity, ingestURL)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

// sourcesCmd lists the registered sources.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered ingestion sources",
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

		for _, name := range pipeline.New(cfg, s).Sources() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCity, "city", "", "city slug (required)")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "page URL for scrape sources")
	_ = ingestCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(sourcesCmd)
}
