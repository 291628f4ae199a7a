package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/calendar"
	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/notify"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Budgets past their warning or critical threshold",
	RunE:  runAlerts,
}

var flagAlertsPublish bool

func init() {
	alertsCmd.Flags().BoolVar(&flagAlertsPublish, "publish", false, "Publish alerts to the configured AMQP broker")
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	_, dash, err := loadDashboard(cmd)
	if err != nil {
		return err
	}
	if len(dash.Alerts) == 0 {
		fmt.Println("\n  No budget alerts for " + calendar.MonthKey(dash.Reference) + ".")
		return nil
	}
	cur := displayCurrency(dash)

	rows := make([][]string, 0, len(dash.Alerts))
	for _, a := range dash.Alerts {
		rows = append(rows, []string{
			string(a.BudgetID),
			string(a.CategoryID),
			cli.RenderAlertLevel(a.Level),
			cli.FormatMoney(a.Spent, cur) + " / " + cli.FormatMoney(a.Amount, cur),
			cli.FormatPercent(a.ThresholdPercentage),
			cli.FormatPercent(a.Threshold),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET ALERTS  " + calendar.MonthKey(dash.Reference)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Budget", "Category", "Level", "Spent", "Used", "Threshold"},
		Rows:    rows,
	}))

	if !flagAlertsPublish {
		return nil
	}

	url := config.GetAMQPURL(appCfg)
	if url == "" {
		return errors.New("no AMQP URL configured (set notify.amqp_url or FBURN_AMQP_URL)")
	}
	pub, err := notify.NewPublisher(url, appCfg.Notify.Exchange, appCfg.Notify.Queue, logger)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()

	for _, a := range dash.Alerts {
		if err := pub.Publish(cmd.Context(), a); err != nil {
			return fmt.Errorf("publishing alert for %s: %w", a.BudgetID, err)
		}
	}
	fmt.Printf("\n  Published %d alerts to %s\n", len(dash.Alerts), appCfg.Notify.Exchange)
	return nil
}
