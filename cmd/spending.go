package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/cli"
)

var spendingCmd = &cobra.Command{
	Use:   "spending",
	Short: "Expenses by category for the reference month",
	RunE:  runSpending,
}

var hundred = decimal.NewFromInt(100)

func init() {
	rootCmd.AddCommand(spendingCmd)
}

func runSpending(cmd *cobra.Command, _ []string) error {
	_, dash, err := loadDashboard(cmd)
	if err != nil {
		return err
	}
	if len(dash.Spending) == 0 {
		fmt.Println("\n  No categorized expenses this month.")
		return nil
	}
	cur := displayCurrency(dash)
	top := dash.Spending[0].Spent

	fmt.Println()
	fmt.Println(cli.RenderTitle("SPENDING  " + calendar.MonthKey(dash.Reference)))
	fmt.Println()

	rows := make([][]string, 0, len(dash.Spending))
	for _, cs := range dash.Spending {
		share := "-"
		if dash.Month.Expenses.IsPositive() {
			share = cli.FormatPercent(cs.Spent.Mul(hundred).Div(dash.Month.Expenses))
		}
		rows = append(rows, []string{
			cli.Truncate(string(cs.CategoryID), 20),
			cli.FormatMoney(cs.Spent, cur),
			fmt.Sprintf("%d", cs.Count),
			share,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Spent", "Count", "Share"},
		Rows:    rows,
	}))
	fmt.Println()
	for _, cs := range dash.Spending {
		fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-20s", cli.Truncate(string(cs.CategoryID), 20)), cs.Spent, top, 30))
	}
	return nil
}
