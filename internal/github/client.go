// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielolaszy/reqmail/internal/config"
	"github.com/danielolaszy/reqmail/internal/logging"
	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"
)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client
}

// APIURL returns the REST endpoint for a GitHub domain. An empty domain
// means github.com.
func APIURL(domain string) string {
	if domain == "" || domain == config.DefaultGitHubDomain {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

// RepositoryURL returns the browser link of a repository on the given domain.
func RepositoryURL(domain, owner, repo string) string {
	if domain == "" {
		domain = config.DefaultGitHubDomain
	}
	return fmt.Sprintf("https://%s/%s/%s", domain, owner, repo)
}

// NewClient creates a GitHub API client authenticated with the configured token.
// Enterprise domains get their own API and upload endpoints.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	apiURL := APIURL(cfg.Domain)

	logging.Info("github configuration",
		"domain", cfg.Domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(cfg.Token))

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return newClientWithBaseURL(tc, apiURL)
}

func newClientWithBaseURL(httpClient *http.Client, apiURL string) (*Client, error) {
	parsedURL, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url: %w", err)
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	client := github.NewClient(httpClient)
	client.BaseURL = parsedURL
	client.UploadURL = parsedURL

	return &Client{client: client}, nil
}

// RepositoryExists reports whether owner/repo is visible to the token.
// A 404 from the API is not an error.
func (c *Client) RepositoryExists(ctx context.Context, owner, repo string) (bool, error) {
	if owner == "" || repo == "" {
		return false, fmt.Errorf("invalid repository: owner and name are required, got %q/%q", owner, repo)
	}

	logging.Debug("looking up repository", "owner", owner, "repo", repo)

	_, resp, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			logging.Debug("repository not found", "owner", owner, "repo", repo)
			return false, nil
		}
		logging.Error("failed to look up repository",
			"owner", owner,
			"repo", repo,
			"error", err)
		return false, fmt.Errorf("failed to look up repository %s/%s: %w", owner, repo, err)
	}

	return true, nil
}
