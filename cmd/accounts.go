package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Account list with balances",
	RunE:  runAccounts,
}

var flagAccountsAll bool

func init() {
	accountsCmd.Flags().BoolVarP(&flagAccountsAll, "all", "a", false, "Include inactive accounts")
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	result, err := loadData(cmd.Context())
	if err != nil {
		return err
	}
	accounts := result.Snapshot.Accounts
	if len(accounts) == 0 {
		fmt.Println("\n  No accounts found.")
		return nil
	}

	rows := make([][]string, 0, len(accounts)+2)
	for _, a := range accounts {
		if !a.IsActive && !flagAccountsAll {
			continue
		}
		name := a.Name
		if !a.IsActive {
			name += " (inactive)"
		}
		rows = append(rows, []string{
			cli.Truncate(name, 24),
			string(a.Type),
			a.BankName,
			a.Currency,
			cli.FormatMoney(a.Balance, a.Currency),
		})
	}

	currencies := pipeline.ActiveCurrencies(accounts)
	cur := appCfg.General.Currency
	if len(currencies) == 1 {
		cur = currencies[0]
	}
	rows = append(rows, []string{cli.SeparatorRow}, []string{"Total (active)", "", "", "", cli.FormatMoney(pipeline.TotalBalance(accounts), cur)})

	fmt.Println()
	fmt.Println(cli.RenderTitle("ACCOUNTS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Account", "Type", "Bank", "Currency", "Balance"},
		Rows:    rows,
	}))
	if len(currencies) > 1 {
		fmt.Println(cli.Warn("  Balances in different currencies are summed without conversion."))
	}
	return nil
}
