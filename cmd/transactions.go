package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx"},
	Short:   "Transaction list with search and type filter",
	RunE:    runTransactions,
}

var (
	flagTxSearch string
	flagTxType   string
	flagTxLimit  int
	flagTxMonth  bool
)

func init() {
	transactionsCmd.Flags().StringVarP(&flagTxSearch, "search", "s", "", "Case-insensitive match on description or merchant")
	transactionsCmd.Flags().StringVarP(&flagTxType, "type", "t", "all", "Filter: all, income, expense, pending")
	transactionsCmd.Flags().IntVarP(&flagTxLimit, "limit", "l", 30, "Number of transactions to show (0 for all)")
	transactionsCmd.Flags().BoolVar(&flagTxMonth, "this-month", false, "Only transactions in the reference month")
	rootCmd.AddCommand(transactionsCmd)
}

func runTransactions(cmd *cobra.Command, _ []string) error {
	filter, ok := model.ParseTypeFilter(flagTxType)
	if !ok {
		names := make([]string, len(model.TypeFilters))
		for i, f := range model.TypeFilters {
			names[i] = string(f)
		}
		return fmt.Errorf("invalid --type %q (want one of %s)", flagTxType, strings.Join(names, ", "))
	}
	ref, err := referenceTime()
	if err != nil {
		return err
	}

	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	txs := result.Snapshot.Transactions
	if flagTxMonth {
		txs = pipeline.PeriodTransactions(txs, ref)
	}
	txs = pipeline.FilterTransactions(txs, flagTxSearch, filter)
	if len(txs) == 0 {
		fmt.Println("\n  No matching transactions.")
		return nil
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
	totals := pipeline.Totals(txs)
	total := len(txs)
	if flagTxLimit > 0 && len(txs) > flagTxLimit {
		txs = txs[:flagTxLimit]
	}

	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		desc := t.Description
		if t.MerchantName != "" && !strings.EqualFold(t.MerchantName, t.Description) {
			desc += " · " + t.MerchantName
		}
		status := ""
		if t.Status != model.StatusCompleted {
			status = strings.ToLower(string(t.Status))
		}
		rows = append(rows, []string{
			cli.FormatDate(t.Date),
			cli.Truncate(desc, 32),
			string(t.CategoryID),
			cli.FormatSigned(t.Amount, t.Currency),
			status,
		})
	}

	cur := appCfg.General.Currency
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TRANSACTIONS  %s (showing %d of %d)", filter, len(txs), total)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Description", "Category", "Amount", "Status"},
		Rows:    rows,
	}))
	fmt.Printf("  %s  %s   %s  %s\n",
		cli.Muted("In"), cli.FormatMoney(totals.Income, cur),
		cli.Muted("Out"), cli.FormatMoney(totals.Expenses, cur))
	return nil
}
