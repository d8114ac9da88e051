package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dataproc-bridge/auth"
	"dataproc-bridge/widgets"
)

var (
	projectID   string
	region      string
	clusterName string
	account     string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Google-authenticated bridge to a Dataproc Spark gateway",
	Long: `A CLI tool to acquire Google OAuth credentials from gcloud or application
default credentials and talk to a Dataproc cluster's Component Gateway Livy API.

Project, region, cluster and account can also come from the DATAPROC_PROJECT,
DATAPROC_REGION, DATAPROC_CLUSTER and DATAPROC_ACCOUNT environment variables;
a .env file in the working directory is honored.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	},
}

func init() {
	// Missing .env files are fine; flags and the environment still apply.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&projectID, "project", os.Getenv("DATAPROC_PROJECT"), "Google Cloud project id")
	rootCmd.PersistentFlags().StringVar(&region, "region", os.Getenv("DATAPROC_REGION"), "Dataproc region, e.g. us-central1")
	rootCmd.PersistentFlags().StringVar(&clusterName, "cluster", os.Getenv("DATAPROC_CLUSTER"), "Dataproc cluster name")
	rootCmd.PersistentFlags().StringVar(&account, "account", os.Getenv("DATAPROC_ACCOUNT"), "credentialed account, or default-credentials")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(runCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func requireClusterFlags() error {
	if projectID == "" || region == "" || clusterName == "" {
		return fmt.Errorf("project, region and cluster are required, set flags or DATAPROC_* environment variables")
	}
	return nil
}

// applyClusterFlags copies the cluster settings into the authenticator's
// text widgets, the same way a notebook user would type them in.
func applyClusterFlags(a *auth.GoogleAuthenticator) {
	for _, w := range a.Widgets() {
		t, ok := w.(*widgets.Text)
		if !ok {
			continue
		}
		switch t.Description {
		case "Project:":
			t.Value = projectID
		case "Region:":
			t.Value = region
		case "Cluster:":
			t.Value = clusterName
		}
	}
}
