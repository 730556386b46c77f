package cmd

import (
	"fmt"

	"github.com/danielolaszy/reqmail/internal/config"
	"github.com/danielolaszy/reqmail/internal/github"
	"github.com/danielolaszy/reqmail/internal/logging"
	"github.com/danielolaszy/reqmail/internal/mail"
	"github.com/danielolaszy/reqmail/internal/notifier"
	"github.com/danielolaszy/reqmail/internal/payload"
	"github.com/danielolaszy/reqmail/pkg/models"
	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Announce a new repository request",
		Long: `Send the email that opens a repository request thread.

The new thread ID is printed on stdout. Keep it and pass it to the
update, comment and approve commands.

Example:
  THREAD=$(reqmail create -f request.json)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, models.ActionCreate)
		},
	}
	addPayloadFlags(cmd, false)
	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Send the updated details of a request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, models.ActionUpdate)
		},
	}
	addPayloadFlags(cmd, true)
	return cmd
}

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Send reviewer comments on a request",
		Long: `Send the payload's comments field as a reply in the request thread,
asking the requester to update the request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, models.ActionComment)
		},
	}
	addPayloadFlags(cmd, true)
	return cmd
}

func newApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Confirm that a request was approved",
		Long: `Send the approval email with a link to the repository.

With --verify-repo the repository is looked up on GitHub first (GITHUB_TOKEN
is required) and no email is sent when it does not exist yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, models.ActionApprove)
		},
	}
	addPayloadFlags(cmd, true)
	cmd.Flags().Bool("verify-repo", false, "check that the repository exists on GitHub before sending")
	return cmd
}

func addPayloadFlags(cmd *cobra.Command, threaded bool) {
	cmd.Flags().StringP("file", "f", "", "request payload (JSON or YAML), '-' for stdin")
	cmd.MarkFlagRequired("file")
	if threaded {
		cmd.Flags().StringP("thread-id", "t", "", "thread ID printed by create (defaults to the payload's email_thread_id)")
	}
}

// runAction loads configuration and the payload, then sends the email for
// action. Delivery failures are logged by the notifier and do not fail the
// command.
func runAction(cmd *cobra.Command, action models.Action) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.ValidateMailConfig(cfg); err != nil {
		return err
	}

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if !dryRun {
		if err := config.ValidateRelayConfig(cfg); err != nil {
			return err
		}
	}

	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}

	req, err := payload.NewParser(cfg.Workflow.EnterpriseOrganization).Load(path, action)
	if err != nil {
		return err
	}

	thread, err := resolveThread(cmd, req)
	if err != nil {
		return err
	}

	if action == models.ActionApprove {
		verify, err := cmd.Flags().GetBool("verify-repo")
		if err != nil {
			return err
		}
		if verify {
			if err := verifyRepository(cmd, cfg, req); err != nil {
				return err
			}
		}
	}

	var transport notifier.Transport
	if dryRun {
		transport = mail.NewWriterTransport(cmd.ErrOrStderr())
	} else {
		transport = mail.NewSMTPTransport(cfg.Mail)
	}

	logging.Info("sending notification",
		"action", action,
		"repository", req.Organization+"/"+req.RepoName,
		"thread_id", thread,
		"dry_run", dryRun)

	n := notifier.New(*cfg, transport)
	thread, outcome, err := n.Notify(cmd.Context(), action, req, thread)
	if err != nil {
		return fmt.Errorf("failed to build %s notification: %w", action, err)
	}
	if !outcome.Delivered {
		logging.Warn("notification not delivered, continuing", "action", action, "message_id", outcome.MessageID)
	}

	if action == models.ActionCreate {
		fmt.Fprintln(cmd.OutOrStdout(), thread)
	}
	return nil
}

// resolveThread prefers the --thread-id flag over the payload field.
func resolveThread(cmd *cobra.Command, req *models.RepositoryRequest) (models.ThreadID, error) {
	if cmd.Flags().Lookup("thread-id") == nil {
		return "", nil
	}
	flagThread, err := cmd.Flags().GetString("thread-id")
	if err != nil {
		return "", err
	}
	if flagThread != "" {
		return models.ThreadID(flagThread), nil
	}
	return req.EmailThreadID, nil
}

func verifyRepository(cmd *cobra.Command, cfg *config.Config, req *models.RepositoryRequest) error {
	if err := config.ValidateGitHubConfig(cfg); err != nil {
		return err
	}

	githubClient, err := github.NewClient(cfg.GitHub)
	if err != nil {
		return fmt.Errorf("failed to initialize github client: %w", err)
	}

	exists, err := githubClient.RepositoryExists(cmd.Context(), req.Organization, req.RepoName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("repository %s/%s not found on %s, not sending approval", req.Organization, req.RepoName, cfg.GitHub.Domain)
	}
	return nil
}
