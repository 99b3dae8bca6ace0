package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/loader"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/report"
)

func newDatasetCmd(root *rootOptions) *cobra.Command {
	var (
		input  string
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Derive key risk indicators from a CSV dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unsupported format %q: use text or json", format)
			}

			dataset, err := loader.LoadDataset(input)
			if err != nil {
				return err
			}

			logger := root.logger(cmd)
			eng, err := root.buildEngine(logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.close() }()

			analysis, err := eng.analyzeDataset.Execute(cmd.Context(), dto.AnalyzeDatasetRequest{Dataset: dataset})
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				if format == "json" {
					return writeIndentedJSON(w, analysis, "  ")
				}
				text, err := report.NewRenderer().Text(analysis)
				if err != nil {
					return err
				}
				_, err = io.WriteString(w, text+"\n")
				return err
			})
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "CSV dataset")
	cmd.Flags().StringVar(&output, "output", "", "write the report here instead of stdout")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
