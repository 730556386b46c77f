// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultSMTPPort is the submission port used when SMTP_PORT is not set.
	DefaultSMTPPort = 587
	// DefaultGitHubDomain is used to build repository links when GITHUB_DOMAIN is not set.
	DefaultGitHubDomain = "github.com"
	// DefaultEnterpriseOrganization is the organization whose requests carry triage settings.
	DefaultEnterpriseOrganization = "gitopslab-enterprise"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Mail     MailConfig
	GitHub   GitHubConfig
	Workflow WorkflowConfig
}

// MailConfig holds the envelope addresses and relay settings.
type MailConfig struct {
	// Sender is the From address and the relay login identity.
	Sender string
	// Receiver is the fixed To address for every notification.
	Receiver string
	// Password authenticates Sender against the relay.
	Password string
	Host     string
	Port     int
	// InsecureSkipVerify disables certificate checks on the STARTTLS upgrade.
	InsecureSkipVerify bool
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// WorkflowConfig holds settings that shape the rendered request details.
type WorkflowConfig struct {
	EnterpriseOrganization string
}

// LoadConfig initializes and loads configuration from environment variables.
// When envFile names an existing dotenv file its values are used for any
// variable that is not already set in the environment. Commands validate the
// parts they need with the Validate* functions.
func LoadConfig(envFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envFile != "" {
		if err := readEnvFile(v, envFile); err != nil {
			return nil, err
		}
	}

	// Map specific environment variables
	v.BindEnv("sender_email", "SENDER_EMAIL")
	v.BindEnv("receiver_email", "RECEIVER_EMAIL")
	v.BindEnv("reciever_email", "RECIEVER_EMAIL")
	v.BindEnv("sender_password", "SENDER_PASSWORD")
	v.BindEnv("smtp_server", "SMTP_SERVER")
	v.BindEnv("smtp_port", "SMTP_PORT")
	v.BindEnv("smtp_insecure_skip_verify", "SMTP_INSECURE_SKIP_VERIFY")
	v.BindEnv("enterprise_organization", "ENTERPRISE_ORGANIZATION")
	v.BindEnv("github_token", "GITHUB_TOKEN")
	v.BindEnv("github_domain", "GITHUB_DOMAIN")

	v.SetDefault("smtp_port", DefaultSMTPPort)
	v.SetDefault("github_domain", DefaultGitHubDomain)
	v.SetDefault("enterprise_organization", DefaultEnterpriseOrganization)

	// The original deployments spell the variable RECIEVER_EMAIL.
	receiver := v.GetString("receiver_email")
	if receiver == "" {
		receiver = v.GetString("reciever_email")
	}

	config := &Config{
		Mail: MailConfig{
			Sender:             v.GetString("sender_email"),
			Receiver:           receiver,
			Password:           v.GetString("sender_password"),
			Host:               v.GetString("smtp_server"),
			Port:               v.GetInt("smtp_port"),
			InsecureSkipVerify: v.GetBool("smtp_insecure_skip_verify"),
		},
		GitHub: GitHubConfig{
			Token:  v.GetString("github_token"),
			Domain: v.GetString("github_domain"),
		},
		Workflow: WorkflowConfig{
			EnterpriseOrganization: v.GetString("enterprise_organization"),
		},
	}

	return config, nil
}

func readEnvFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return nil
}

// ValidateMailConfig ensures the envelope addresses are provided.
func ValidateMailConfig(config *Config) error {
	var missingVars []string

	if config.Mail.Sender == "" {
		missingVars = append(missingVars, "SENDER_EMAIL")
	}
	if config.Mail.Receiver == "" {
		missingVars = append(missingVars, "RECEIVER_EMAIL")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateRelayConfig validates the settings needed to reach the mail relay.
func ValidateRelayConfig(config *Config) error {
	if config.Mail.Host == "" {
		return fmt.Errorf("missing required environment variables: %v", []string{"SMTP_SERVER"})
	}
	if config.Mail.Port <= 0 || config.Mail.Port > 65535 {
		return fmt.Errorf("invalid SMTP_PORT: %d", config.Mail.Port)
	}
	return nil
}

// ValidateGitHubConfig validates GitHub-specific configuration.
func ValidateGitHubConfig(config *Config) error {
	if config.GitHub.Token == "" {
		return fmt.Errorf("missing required environment variables: %v", []string{"GITHUB_TOKEN"})
	}
	return nil
}
