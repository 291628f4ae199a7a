package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Savings goal progress and recommended monthly saving",
	RunE:  runGoals,
}

func init() {
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(cmd *cobra.Command, _ []string) error {
	_, dash, err := loadDashboard(cmd)
	if err != nil {
		return err
	}
	if len(dash.Goals) == 0 {
		fmt.Println("\n  No savings goals found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS GOALS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(goalTable(dash.Goals, displayCurrency(dash))))
	return nil
}

func goalTable(goals []model.GoalProgress, cur string) cli.Table {
	rows := make([][]string, 0, len(goals))
	for _, gp := range goals {
		monthly := "-"
		if gp.RecommendedMonthlySaving != nil {
			monthly = cli.FormatMoney(*gp.RecommendedMonthlySaving, cur) + "/mo"
		}
		title := gp.Goal.Title
		if title == "" {
			title = string(gp.Goal.ID)
		}
		rows = append(rows, []string{
			cli.Truncate(title, 22),
			cli.FormatMoney(gp.Goal.CurrentAmount, cur) + " / " + cli.FormatMoney(gp.Goal.TargetAmount, cur),
			cli.RenderPercentBar(gp.Percentage, 12) + " " + cli.FormatPercent(gp.Percentage),
			cli.FormatMoney(gp.Remaining, cur),
			cli.FormatDays(gp.DaysRemaining),
			monthly,
			string(gp.Goal.Status),
		})
	}
	return cli.Table{
		Title:   "Goals",
		Headers: []string{"Goal", "Saved", "Progress", "Remaining", "Deadline", "Saving", "Status"},
		Rows:    rows,
	}
}
