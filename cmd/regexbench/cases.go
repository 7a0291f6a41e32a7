package main

import (
	"github.com/spf13/cobra"

	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/report"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the correctness and benchmark cases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		h, err := newHarness(cmd.Context())
		if err != nil {
			return err
		}
		defer h.Close()

		set := h.corpus()
		out := cmd.OutOrStdout()
		report.WriteCases(out, "Tests", describe(set.Tests()))
		report.WriteCases(out, "Benchmarks", describe(set.Benchmarks()))
		return nil
	},
}

func describe(cases []domain.Case) []string {
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.String()
	}
	return out
}
