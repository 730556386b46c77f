package notifier

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/reqmail/pkg/models"
)

// NotApplicable replaces fields that do not apply to the request's
// organization or CI system.
const NotApplicable = "Not Applicable"

// RenderDetails formats every request field into a fixed-order plain-text
// block. Triage settings are shown only for the enterprise organization and
// CI fields only for the selected CI system. The output depends on nothing
// but its arguments.
func RenderDetails(req *models.RepositoryRequest, enterpriseOrganization string) string {
	enterprise := req.Organization == enterpriseOrganization
	jenkins := req.CICDRequirement == models.CICDJenkins
	azure := req.CICDRequirement == models.CICDAzureDevOps

	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}

	line("Requested By", req.Email)
	line("Requesting From", req.LeadEmail)
	line("Requirement", req.Requirement)

	b.WriteString("\nRepository Details\n")
	line("Repository Name", req.RepoName)
	line("Organization", req.Organization)
	line("Description", req.Description)
	line("Website URL", req.WebsiteURL)
	line("Topics", strings.Join(req.Topics, ", "))
	line("Enable Issues", formatBool(req.EnableIssues))

	b.WriteString("\nSecurity Details\n")
	line("PR Protection Enabled", formatBool(req.PRProtection))
	b.WriteString("Teams to be added:\n")
	b.WriteString(strings.Join(req.Teams, ", ") + "\n")
	line("Enable Triage for WSO2 All", applicable(enterprise, formatBool(req.EnableTriageAll)))
	line("Enable Triage for WSO2 All Interns", applicable(enterprise, formatBool(req.EnableTriageAllInterns)))
	line("Disable Triage Reason", applicable(enterprise, req.DisableTriageReason))

	b.WriteString("\nDevops Details\n")
	line("CICD Requirement", req.CICDRequirement)
	line("Jenkins Job Type", applicable(jenkins, req.JenkinsJobType))
	line("Jenkins Group ID", applicable(jenkins, req.JenkinsGroupID))
	line("Azure DevOps Organization", applicable(azure, req.AzureDevOpsOrg))
	line("Azure DevOps Project", applicable(azure, req.AzureDevOpsProject))

	return b.String()
}

func applicable(ok bool, value string) string {
	if !ok {
		return NotApplicable
	}
	return value
}

// formatBool matches the True/False spelling the workflow UI shows.
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
