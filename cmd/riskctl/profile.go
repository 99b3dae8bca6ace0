package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/infrastructure/loader"
)

func newProfileCmd(root *rootOptions) *cobra.Command {
	var (
		inputs []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Score one or more applicant profiles",
		Long: `Scores each JSON profile given with --input. A single profile prints
its result object; several print an array in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reqs := make([]dto.ScoreProfileRequest, 0, len(inputs))
			for _, path := range inputs {
				p, err := loader.LoadProfile(path)
				if err != nil {
					return err
				}
				reqs = append(reqs, dto.ScoreProfileRequest{Profile: p})
			}

			logger := root.logger(cmd)
			eng, err := root.buildEngine(logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.close() }()

			resps, err := eng.scoreProfile.ExecuteBatch(cmd.Context(), reqs)
			if err != nil {
				return err
			}

			results := make([]model.AggregateResult, len(resps))
			for i, r := range resps {
				results[i] = r.Result
			}
			var doc any = results
			if len(results) == 1 {
				doc = results[0]
			}

			err = writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return writeIndentedJSON(w, doc, "    ")
			})
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Risk scoring saved to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&inputs, "input", nil, "profile JSON file (repeatable)")
	cmd.Flags().StringVar(&output, "output", "", "write the result JSON here instead of stdout")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
