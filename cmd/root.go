// Package cmd provides the command-line interface for the reqmail CLI tool.
package cmd

import (
	"context"

	"github.com/danielolaszy/reqmail/internal/config"
	"github.com/danielolaszy/reqmail/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reqmail",
		Short: "reqmail sends email notifications for GitHub repository requests",
		Long: `reqmail composes and sends the emails of a GitHub repository request workflow.

A request is announced with 'create', which prints a thread ID. Pass that ID
to 'update', 'comment' and 'approve' (or store it in the payload's
email_thread_id field) so every email about the request lands in one
conversation.

Relay settings are read from the environment, optionally seeded from a .env
file: SENDER_EMAIL, RECEIVER_EMAIL, SENDER_PASSWORD, SMTP_SERVER, SMTP_PORT.

Delivery is best effort: a relay failure is logged and the command still
exits successfully so the calling workflow is not blocked.`,
		SilenceUsage: true,
	}

	// Add persistent flags that will be available to all commands
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file to read configuration from, if it exists")
	rootCmd.PersistentFlags().Bool("dry-run", false, "print messages to stderr instead of sending them")

	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newCommentCmd())
	rootCmd.AddCommand(newApproveCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig reads configuration using the --env-file flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}

	logging.Debug("configuration loaded",
		"sender", cfg.Mail.Sender,
		"receiver", cfg.Mail.Receiver,
		"smtp_server", cfg.Mail.Host,
		"smtp_port", cfg.Mail.Port,
		"sender_password", logging.MaskSensitive(cfg.Mail.Password),
		"github_token", logging.MaskSensitive(cfg.GitHub.Token))

	return cfg, nil
}
