package cmd

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dataproc-bridge/auth"
	"dataproc-bridge/widgets"
)

var saveEnv bool

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactively pick project, region, cluster and account",
	Long: `Renders the authenticator's input widgets as a terminal form, resolves the
Component Gateway URL with the entered values, and optionally saves the
selections to .env for later runs.`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().BoolVar(&saveEnv, "save", false, "write the selections to .env")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	authenticator, err := auth.NewGoogleAuthenticator(ctx, auth.Config{Account: account})
	if err != nil {
		return err
	}
	applyClusterFlags(authenticator)

	var fields []huh.Field
	var accountWidget *widgets.Dropdown
	for _, w := range authenticator.Widgets() {
		switch w := w.(type) {
		case *widgets.Text:
			fields = append(fields, huh.NewInput().Title(w.Description).Value(&w.Value))
		case *widgets.Dropdown:
			if w.Disabled {
				continue
			}
			accountWidget = w
			names := make([]string, 0, len(w.Options))
			for name := range w.Options {
				names = append(names, name)
			}
			sort.Strings(names)
			fields = append(fields, huh.NewSelect[string]().
				Title(w.Description).
				Options(huh.NewOptions(names...)...).
				Value(&w.Value))
		}
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}
	if err := authenticator.UpdateWithWidgetValues(ctx); err != nil {
		return err
	}
	fmt.Printf("Component Gateway Livy URL: %s\n", authenticator.GatewayURL())

	if !saveEnv {
		return nil
	}
	values := map[string]string{}
	for _, w := range authenticator.Widgets() {
		t, ok := w.(*widgets.Text)
		if !ok {
			continue
		}
		switch t.Description {
		case "Project:":
			values["DATAPROC_PROJECT"] = t.Value
		case "Region:":
			values["DATAPROC_REGION"] = t.Value
		case "Cluster:":
			values["DATAPROC_CLUSTER"] = t.Value
		}
	}
	if accountWidget != nil && accountWidget.Value != "" {
		values["DATAPROC_ACCOUNT"] = accountWidget.Value
	}
	if err := godotenv.Write(values, ".env"); err != nil {
		return fmt.Errorf("Failed to write .env: %w", err)
	}
	fmt.Println("INFO: Selections saved to .env")
	return nil
}
