package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dataproc-bridge/auth"
	"dataproc-bridge/dataproc"
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Resolve the cluster's Component Gateway Livy URL",
	RunE:  runURL,
}

func runURL(cmd *cobra.Command, args []string) error {
	if err := requireClusterFlags(); err != nil {
		return err
	}
	ctx := cmd.Context()

	authenticator, err := auth.NewGoogleAuthenticator(ctx, auth.Config{Account: account})
	if err != nil {
		return err
	}
	creds := authenticator.Credentials()
	if creds == nil {
		return fmt.Errorf("no account selected and application default credentials are not configured")
	}

	url, err := dataproc.ComponentGatewayURL(ctx, projectID, region, clusterName, creds.TokenSource())
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}
