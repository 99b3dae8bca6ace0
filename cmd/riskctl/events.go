package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/loader"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/report"
)

func newEventsCmd(root *rootOptions) *cobra.Command {
	var (
		input  string
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Detect and score suspicious log events",
		Long: `Loads a log CSV (or a directory holding sample_logs.csv), flags
suspicious events, scores them and writes an HTML report or JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "html" && format != "json" {
				return fmt.Errorf("unsupported format %q: use html or json", format)
			}

			records, err := loader.LoadLogRecords(input)
			if err != nil {
				return err
			}

			logger := root.logger(cmd)
			eng, err := root.buildEngine(logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %d log entries.\n", len(records))

			resp, err := eng.scoreEvents.Execute(cmd.Context(), dto.ScoreEventsRequest{Records: records})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Detected %d anomalies.\n", len(resp.Events))

			if format == "json" {
				path := ""
				if cmd.Flags().Changed("output") {
					path = output
				}
				return writeOutput(out, path, func(w io.Writer) error {
					return writeIndentedJSON(w, resp.Events, "  ")
				})
			}

			renderer := report.NewRenderer()
			err = writeOutput(out, output, func(w io.Writer) error {
				return renderer.WriteHTML(w, resp.Events)
			})
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(output)
			if err != nil {
				abs = output
			}
			fmt.Fprintf(out, "Risk report written to: %s\n", abs)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "data/system_logs/", "log CSV file or directory containing "+loader.DefaultLogFile)
	cmd.Flags().StringVar(&output, "output", report.DefaultHTMLFile, "report path")
	cmd.Flags().StringVar(&format, "format", "html", "output format: html or json")
	return cmd
}
