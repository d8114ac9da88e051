package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dataproc-bridge/auth"
	"dataproc-bridge/livy"
)

var sessionKind string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List Livy sessions behind the Component Gateway",
	RunE:  runSessions,
}

var sessionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a new Livy session",
	RunE:  runSessionsCreate,
}

func init() {
	sessionsCreateCmd.Flags().StringVar(&sessionKind, "kind", "spark", "session kind: spark, pyspark, sparkr or sql")
	sessionsCmd.AddCommand(sessionsCreateCmd)
}

// gatewayClient builds an authenticated Livy client for the configured
// cluster, driving the authenticator the way a notebook frontend does:
// widget values first, then UpdateWithWidgetValues.
func gatewayClient(ctx context.Context) (*livy.Client, error) {
	if err := requireClusterFlags(); err != nil {
		return nil, err
	}
	authenticator, err := auth.NewGoogleAuthenticator(ctx, auth.Config{Account: account})
	if err != nil {
		return nil, err
	}
	applyClusterFlags(authenticator)
	if err := authenticator.UpdateWithWidgetValues(ctx); err != nil {
		return nil, err
	}
	return livy.NewClient(authenticator.GatewayURL(), auth.NewClient(authenticator)), nil
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := gatewayClient(ctx)
	if err != nil {
		return err
	}
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("Failed to list sessions: %w", err)
	}

	fmt.Printf("INFO: Total sessions: %d\n\n", len(sessions))
	for _, session := range sessions {
		fmt.Printf("%d. kind=%s state=%s appId=%s\n", session.ID, session.Kind, session.State, session.AppID)
	}
	return nil
}

func runSessionsCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := gatewayClient(ctx)
	if err != nil {
		return err
	}
	session, err := client.CreateSession(ctx, sessionKind)
	if err != nil {
		return fmt.Errorf("Failed to create session: %w", err)
	}

	fmt.Printf("INFO: Created session %d (%s), state: %s\n", session.ID, session.Kind, session.State)
	return nil
}
