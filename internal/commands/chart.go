package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"finlens/internal/charts"
)

func newChartCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "chart <payload.json>",
		Short: "Project a chart-data payload into a Chart.js config",
		Long: "Reads a {spending_by_category, monthly_spending} payload (\"-\" for stdin) " +
			"and prints the Chart.js configuration the dashboard would render.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			payload, err := charts.DecodePayload(data)
			if err != nil {
				return err
			}

			out := map[string]charts.Config{}
			kinds := []string{kind}
			if kind == "all" {
				kinds = []string{charts.KindCategory, charts.KindMonthly}
			}
			for _, k := range kinds {
				cfg, err := charts.Build(k, payload)
				if err != nil {
					return err
				}
				out[k] = cfg
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if len(kinds) == 1 {
				return enc.Encode(out[kind])
			}
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "all", "chart to build: category, monthly or all")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}
