package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dataproc-bridge/livy"
)

const pollInterval = 5 * time.Second

var runSessionID int

var runCmd = &cobra.Command{
	Use:   "run <code>",
	Short: "Submit a statement to a Livy session and wait for its output",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStatement,
}

func init() {
	runCmd.Flags().IntVar(&runSessionID, "session", -1, "session id; -1 starts a new spark session")
}

func runStatement(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := gatewayClient(ctx)
	if err != nil {
		return err
	}

	sessionID := runSessionID
	if sessionID < 0 {
		fmt.Println("INFO: Starting a new spark session, this can take a few minutes...")
		session, err := client.CreateSession(ctx, "spark")
		if err != nil {
			return fmt.Errorf("Failed to create session: %w", err)
		}
		session, err = client.WaitSession(ctx, session.ID, pollInterval)
		if err != nil {
			return err
		}
		if session.State != livy.SessionIdle {
			return fmt.Errorf("session %d entered state %q before accepting statements", session.ID, session.State)
		}
		sessionID = session.ID
	}

	code := strings.Join(args, " ")
	statement, err := client.RunStatement(ctx, sessionID, code)
	if err != nil {
		return fmt.Errorf("Failed to submit statement: %w", err)
	}
	statement, err = client.WaitStatement(ctx, sessionID, statement.ID, pollInterval)
	if err != nil {
		return err
	}

	if statement.Output == nil {
		fmt.Printf("INFO: Statement %d finished in state %s with no output\n", statement.ID, statement.State)
		return nil
	}
	if statement.Output.Status == "error" {
		fmt.Printf("WARNING: %s: %s\n", statement.Output.ErrorName, statement.Output.ErrorValue)
		for _, line := range statement.Output.Traceback {
			fmt.Print(line)
		}
		return fmt.Errorf("statement %d failed", statement.ID)
	}
	fmt.Println(statement.Output.Text())
	return nil
}
