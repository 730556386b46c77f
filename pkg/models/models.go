// Package models defines data structures shared across the application.
package models

import "fmt"

// ThreadID is the Message-ID of the email that opened a request thread.
// Every later email about the same request references it.
type ThreadID string

// Action is a step in the repository request workflow.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionComment Action = "comment"
	ActionApprove Action = "approve"
)

// ParseAction validates a workflow action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionCreate, ActionUpdate, ActionComment, ActionApprove:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// CICD selector values that enable the system specific fields.
const (
	CICDJenkins     = "Jenkins"
	CICDAzureDevOps = "Azure DevOps"
)

// RepositoryRequest is the payload describing one repository request and its
// current workflow state. It is supplied by the workflow system.
type RepositoryRequest struct {
	// Email is the requester's address
	Email string `yaml:"email" json:"email"`

	// LeadEmail is the lead/approver the request is addressed to
	LeadEmail string `yaml:"lead_email" json:"lead_email"`

	// Requirement is the requester's free-text justification
	Requirement string `yaml:"requirement" json:"requirement"`

	// CCList is a comma-separated list of addresses copied on every email
	CCList string `yaml:"cc_list" json:"cc_list"`

	RepoName     string   `yaml:"repo_name" json:"repo_name"`
	Organization string   `yaml:"organization" json:"organization"`
	RepoType     bool     `yaml:"repo_type" json:"repo_type"`
	Description  string   `yaml:"description" json:"description"`
	WebsiteURL   string   `yaml:"website_url" json:"website_url"`
	Topics       []string `yaml:"topics" json:"topics"`
	EnableIssues bool     `yaml:"enable_issues" json:"enable_issues"`

	PRProtection bool     `yaml:"pr_protection" json:"pr_protection"`
	Teams        []string `yaml:"teams" json:"teams"`

	// Triage settings only apply to the enterprise organization
	EnableTriageAll        bool   `yaml:"enable_triage_wso2all" json:"enable_triage_wso2all"`
	EnableTriageAllInterns bool   `yaml:"enable_triage_wso2allinterns" json:"enable_triage_wso2allinterns"`
	DisableTriageReason    string `yaml:"disable_triage_reason" json:"disable_triage_reason"`

	// CICDRequirement selects which of the CI fields below are meaningful
	CICDRequirement    string `yaml:"cicd_requirement" json:"cicd_requirement"`
	JenkinsJobType     string `yaml:"jenkins_job_type" json:"jenkins_job_type"`
	JenkinsGroupID     string `yaml:"jenkins_group_id" json:"jenkins_group_id"`
	AzureDevOpsOrg     string `yaml:"azure_devops_org" json:"azure_devops_org"`
	AzureDevOpsProject string `yaml:"azure_devops_project" json:"azure_devops_project"`

	// Timestamp is the ISO-8601 time the request was submitted
	Timestamp string `yaml:"timestamp" json:"timestamp"`

	ApprovalState string `yaml:"approval_state" json:"approval_state"`
	Comments      string `yaml:"comments" json:"comments"`

	// EmailThreadID is the thread persisted by the workflow after creation
	EmailThreadID ThreadID `yaml:"email_thread_id" json:"email_thread_id"`
}
