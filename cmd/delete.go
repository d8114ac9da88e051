package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a Livy session",
	Long:  "Permanently delete a session and its Spark application from the cluster.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}

	if !deleteForce {
		fmt.Printf("WARNING: Are you sure you want to delete session %d? (yes/no): ", id)
		var response string
		fmt.Scanln(&response)

		if strings.ToLower(response) != "yes" {
			fmt.Println("INFO: Cancelled.")
			return nil
		}
	}

	client, err := gatewayClient(ctx)
	if err != nil {
		return err
	}
	if err := client.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("Failed to delete session: %w", err)
	}

	fmt.Printf("INFO: Session %d deleted.\n", id)
	return nil
}
