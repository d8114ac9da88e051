package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dataproc-bridge/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an access token for the selected account",
	Long: `Resolves credentials the same way a notebook session would: the --account
flag wins, then application default credentials, then the active gcloud
account. Prints a bearer token for the result.`,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	authenticator, err := auth.NewGoogleAuthenticator(ctx, auth.Config{Account: account})
	if err != nil {
		return err
	}
	creds := authenticator.Credentials()
	if creds == nil {
		return fmt.Errorf("no account selected and application default credentials are not configured")
	}

	token, err := creds.AccessToken()
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
