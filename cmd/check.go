package cmd

import (
	"fmt"

	"github.com/danielolaszy/reqmail/internal/config"
	"github.com/danielolaszy/reqmail/internal/github"
	"github.com/danielolaszy/reqmail/internal/logging"
	"github.com/danielolaszy/reqmail/internal/payload"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a requested repository already exists on GitHub",
		Long: `Look up the requested repository on GitHub and print "exists" or
"available". The repository is taken from --organization/--name or from
the organization and repo_name fields of a payload file.

Requires GITHUB_TOKEN. GITHUB_DOMAIN selects a GitHub Enterprise host.

Example:
  reqmail check -o acme -n widgets
  reqmail check -f request.json`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	cmd.Flags().StringP("organization", "o", "", "GitHub organization")
	cmd.Flags().StringP("name", "n", "", "repository name")
	cmd.Flags().StringP("file", "f", "", "request payload to read the repository from")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.ValidateGitHubConfig(cfg); err != nil {
		return err
	}

	owner, err := cmd.Flags().GetString("organization")
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}

	if path != "" {
		req, err := payload.NewParser(cfg.Workflow.EnterpriseOrganization).LoadRepository(path)
		if err != nil {
			return err
		}
		if owner == "" {
			owner = req.Organization
		}
		if name == "" {
			name = req.RepoName
		}
	}

	if owner == "" || name == "" {
		return fmt.Errorf("organization and name are required, use --organization/--name or --file")
	}

	githubClient, err := github.NewClient(cfg.GitHub)
	if err != nil {
		return fmt.Errorf("failed to initialize github client: %w", err)
	}

	exists, err := githubClient.RepositoryExists(cmd.Context(), owner, name)
	if err != nil {
		return err
	}

	logging.Info("repository lookup complete", "repository", owner+"/"+name, "exists", exists)
	if exists {
		fmt.Fprintln(cmd.OutOrStdout(), "exists")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "available")
	}
	return nil
}
