package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
)

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "Budget consumption for the reference month",
	RunE:  runBudgets,
}

func init() {
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgets(cmd *cobra.Command, _ []string) error {
	_, dash, err := loadDashboard(cmd)
	if err != nil {
		return err
	}
	if len(dash.Budgets) == 0 {
		fmt.Println("\n  No budgets configured.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGETS  " + calendar.MonthKey(dash.Reference)))
	fmt.Println()
	fmt.Print(cli.RenderTable(budgetTable(dash.Budgets, displayCurrency(dash))))
	return nil
}

func budgetTable(budgets []model.BudgetConsumption, cur string) cli.Table {
	rows := make([][]string, 0, len(budgets))
	for _, bc := range budgets {
		name := string(bc.Budget.CategoryID)
		if name == "" {
			name = string(bc.Budget.ID)
		}
		if !bc.Budget.IsActive {
			name += " (inactive)"
		}
		rows = append(rows, []string{
			cli.Truncate(name, 20),
			cli.FormatMoney(bc.Spent, cur),
			cli.FormatMoney(bc.Budget.Amount, cur),
			cli.FormatMoney(bc.Remaining, cur),
			cli.RenderPercentBar(bc.Percentage, 12) + " " + cli.FormatPercent(bc.Percentage),
			cli.RenderBudgetStatus(bc.Status),
		})
	}
	return cli.Table{
		Title:   "Budgets",
		Headers: []string{"Category", "Spent", "Budget", "Remaining", "Used", "Status"},
		Rows:    rows,
	}
}
