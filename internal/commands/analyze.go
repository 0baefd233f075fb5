package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"finlens/internal/analysis"
	"finlens/internal/format"
	"finlens/internal/models"
	"finlens/internal/parsers"
)

type analyzeOptions struct {
	rules  string
	topN   int
	dedup  bool
	asJSON bool
}

func newAnalyzeCommand() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <statement>...",
		Short: "Analyze CSV or Excel statements and print a spending summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runAnalyze(args, opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.rules, "rules", "", "YAML file with extra category keywords")
	cmd.Flags().IntVar(&opts.topN, "top", analysis.DefaultTopN, "number of top categories and merchants")
	cmd.Flags().BoolVar(&opts.dedup, "dedup", false, "drop duplicate transactions across statements")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the full analysis as JSON")

	return cmd
}

func runAnalyze(paths []string, opts analyzeOptions) (*models.SpendingAnalysis, error) {
	rules, err := analysis.LoadRules(opts.rules)
	if err != nil {
		return nil, err
	}

	analyzerOpts := []analysis.Option{analysis.WithTopN(opts.topN)}
	if opts.dedup {
		analyzerOpts = append(analyzerOpts, analysis.WithDeduplication())
	}
	analyzer := analysis.New(analysis.NewCategorizer(rules...), analyzerOpts...)

	var transactions []models.Transaction
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		txns, err := parseStatement(path)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txns...)
		names = append(names, filepath.Base(path))
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("no transactions found in %s", strings.Join(names, ", "))
	}

	return analyzer.Analyze(strings.Join(names, ", "), transactions), nil
}

func parseStatement(path string) ([]models.Transaction, error) {
	parser, err := parsers.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.Parse(f, filepath.Base(path))
}

func printSummary(w io.Writer, a *models.SpendingAnalysis) {
	fmt.Fprintf(w, "Statement:     %s\n", a.SourceName)
	fmt.Fprintf(w, "Transactions:  %d", a.TransactionCount())
	if a.DuplicatesRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", a.DuplicatesRemoved)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Income:        %s\n", format.FormatCurrency(a.Income))
	fmt.Fprintf(w, "Expenses:      %s\n", format.FormatCurrency(a.Expenses))
	fmt.Fprintf(w, "Net cash flow: %s\n", format.FormatCurrency(a.NetCashFlow))
	fmt.Fprintf(w, "Savings rate:  %s\n", format.FormatPercentage(a.SavingsRate*100))

	if len(a.TopCategories) > 0 {
		fmt.Fprintln(w, "\nTop categories:")
		for _, c := range a.TopCategories {
			fmt.Fprintf(w, "  %-20s %12s  %s\n", c.Category, format.FormatCurrency(c.Amount), format.FormatPercentage(c.Percentage))
		}
	}
	if len(a.TopMerchants) > 0 {
		fmt.Fprintln(w, "\nTop merchants:")
		for _, m := range a.TopMerchants {
			fmt.Fprintf(w, "  %-20s %12s  x%d\n", m.Merchant, format.FormatCurrency(m.Amount), m.Count)
		}
	}
}
