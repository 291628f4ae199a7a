package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Balance, monthly totals, budgets and goals at a glance",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

// loadDashboard loads the snapshot and derives the dashboard for --month.
func loadDashboard(cmd *cobra.Command) (*pipeline.LoadResult, model.Dashboard, error) {
	ref, err := referenceTime()
	if err != nil {
		return nil, model.Dashboard{}, err
	}
	result, err := loadData(cmd.Context())
	if err != nil {
		return nil, model.Dashboard{}, err
	}
	dash := pipeline.BuildDashboard(result.Snapshot, ref)
	if dash.MixedCurrency() {
		logger.Warnf("accounts use several currencies (%s); totals are summed without conversion",
			strings.Join(dash.Currencies, ", "))
	}
	return result, dash, nil
}

// displayCurrency picks the symbol used for aggregate figures.
func displayCurrency(dash model.Dashboard) string {
	if len(dash.Currencies) == 1 {
		return dash.Currencies[0]
	}
	return appCfg.General.Currency
}

func runSummary(cmd *cobra.Command, _ []string) error {
	result, dash, err := loadDashboard(cmd)
	if err != nil {
		return err
	}
	if result.Snapshot.Empty() {
		fmt.Println("\n  No finance data found.")
		fmt.Println("  Point --data-dir at an export directory or run `fburn setup` to configure the API.")
		return nil
	}
	cur := displayCurrency(dash)

	fmt.Println()
	fmt.Println(cli.RenderTitle("FINANCES  " + calendar.MonthKey(dash.Reference)))
	fmt.Println()

	rows := [][]string{
		{"Total Balance", cli.FormatMoney(dash.TotalBalance, cur)},
		{"Active Accounts", fmt.Sprintf("%d", dash.Accounts)},
		{cli.SeparatorRow},
		{"Income", cli.FormatMoney(dash.Month.Income, cur)},
		{"Expenses", cli.FormatMoney(dash.Month.Expenses, cur)},
		{"Savings", cli.FormatSigned(dash.Month.Savings, cur)},
		{"Transactions", fmt.Sprintf("%d", dash.Month.Count)},
		{"Days Left", fmt.Sprintf("%d", calendar.DaysLeftInMonth(dash.Reference))},
	}
	if dash.Insights.Sufficient {
		rows = append(rows,
			[]string{cli.SeparatorRow},
			[]string{"Income (est)", cli.FormatMoney(dash.Insights.IncomeEstimate, cur)},
			[]string{"Fixed Costs (est)", cli.FormatMoney(dash.Insights.FixedCostsEstimate, cur)},
		)
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Metric", "Value"}, Rows: rows}))

	if len(dash.Budgets) > 0 {
		fmt.Println()
		fmt.Print(cli.RenderTable(budgetTable(dash.Budgets, cur)))
	}
	if len(dash.Goals) > 0 {
		fmt.Println()
		fmt.Print(cli.RenderTable(goalTable(dash.Goals, cur)))
	}
	if len(dash.Alerts) > 0 {
		fmt.Println()
		for _, a := range dash.Alerts {
			fmt.Printf("  %s  %s at %s of %s\n", cli.RenderAlertLevel(a.Level), a.CategoryID,
				cli.FormatPercent(a.ThresholdPercentage), cli.FormatMoney(a.Amount, cur))
		}
	}
	return nil
}
