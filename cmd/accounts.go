package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"dataproc-bridge/auth"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List credentialed Google accounts",
	RunE:  runAccounts,
}

func runAccounts(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store := auth.NewSDKStore()
	accounts, active, err := store.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("Failed to list accounts: %w", err)
	}
	options := auth.AccountOptions(accounts, auth.ADCConfigured(ctx))

	fmt.Printf("INFO: Selectable accounts: %d\n\n", len(options))

	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}

	if len(options) == 0 {
		fmt.Println("No credentialed accounts. Run `gcloud auth login` to authorize.")
	}
	return nil
}
