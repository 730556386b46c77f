package payload

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielolaszy/reqmail/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const enterpriseOrg = "gitopslab-enterprise"

func samplePayload() map[string]any {
	return map[string]any{
		"email":                        "hello@example.com",
		"lead_email":                   "lead@example.com",
		"requirement":                  "new service",
		"cc_list":                      "a@example.com,b@example.com",
		"repo_name":                    "widgets",
		"organization":                 "acme",
		"repo_type":                    false,
		"description":                  "Widget service",
		"enable_issues":                true,
		"website_url":                  "",
		"topics":                       []string{"go", "mail"},
		"pr_protection":                true,
		"teams":                        []string{"a-internal-commiters"},
		"enable_triage_wso2all":        false,
		"enable_triage_wso2allinterns": false,
		"disable_triage_reason":        "",
		"cicd_requirement":             "Not Applicable",
		"jenkins_job_type":             "",
		"jenkins_group_id":             "",
		"azure_devops_org":             "",
		"azure_devops_project":         "",
		"timestamp":                    "2025-03-04T10:36:29.858240",
		"approval_state":               "Pending",
		"comments":                     "",
		"email_thread_id":              "<174106838985.41140.6395963164442515735@example.local>",
	}
}

func encode(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func TestParseJSON(t *testing.T) {
	parser := NewParser(enterpriseOrg)

	req, err := parser.Parse(encode(t, samplePayload()), models.ActionCreate)
	require.NoError(t, err)

	assert.Equal(t, "hello@example.com", req.Email)
	assert.Equal(t, "a@example.com,b@example.com", req.CCList)
	assert.Equal(t, "widgets", req.RepoName)
	assert.Equal(t, []string{"go", "mail"}, req.Topics)
	assert.True(t, req.EnableIssues)
	assert.True(t, req.PRProtection)
	assert.Equal(t, "2025-03-04T10:36:29.858240", req.Timestamp)
	assert.Equal(t, models.ThreadID("<174106838985.41140.6395963164442515735@example.local>"), req.EmailThreadID)
}

func TestParseYAML(t *testing.T) {
	doc := `
email: hello@example.com
cc_list: a@example.com
organization: acme
repo_name: widgets
timestamp: "2025-03-04T10:36:29"
`
	req, err := NewParser(enterpriseOrg).Parse([]byte(doc), models.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, "acme", req.Organization)
	assert.Equal(t, "widgets", req.RepoName)
}

func TestParseMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		action  models.Action
		mutate  func(doc map[string]any)
		missing string
	}{
		{
			name:    "Create without timestamp",
			action:  models.ActionCreate,
			mutate:  func(doc map[string]any) { delete(doc, "timestamp") },
			missing: "timestamp",
		},
		{
			name:    "Update without topics",
			action:  models.ActionUpdate,
			mutate:  func(doc map[string]any) { delete(doc, "topics") },
			missing: "topics",
		},
		{
			name:    "Comment without comments",
			action:  models.ActionComment,
			mutate:  func(doc map[string]any) { delete(doc, "comments") },
			missing: "comments",
		},
		{
			name:    "Approve without organization",
			action:  models.ActionApprove,
			mutate:  func(doc map[string]any) { delete(doc, "organization") },
			missing: "organization",
		},
		{
			name:    "Any action without cc list",
			action:  models.ActionComment,
			mutate:  func(doc map[string]any) { delete(doc, "cc_list") },
			missing: "cc_list",
		},
		{
			name:   "Enterprise request without triage reason",
			action: models.ActionCreate,
			mutate: func(doc map[string]any) {
				doc["organization"] = enterpriseOrg
				delete(doc, "disable_triage_reason")
			},
			missing: "disable_triage_reason",
		},
		{
			name:   "Jenkins request without group id",
			action: models.ActionCreate,
			mutate: func(doc map[string]any) {
				doc["cicd_requirement"] = models.CICDJenkins
				delete(doc, "jenkins_group_id")
			},
			missing: "jenkins_group_id",
		},
		{
			name:   "Azure request without project",
			action: models.ActionUpdate,
			mutate: func(doc map[string]any) {
				doc["cicd_requirement"] = models.CICDAzureDevOps
				delete(doc, "azure_devops_project")
			},
			missing: "azure_devops_project",
		},
	}

	parser := NewParser(enterpriseOrg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := samplePayload()
			tt.mutate(doc)

			req, err := parser.Parse(encode(t, doc), tt.action)
			require.Error(t, err)
			assert.Nil(t, req)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestParseNullFields(t *testing.T) {
	tests := []struct {
		name    string
		action  models.Action
		key     string
		wantErr bool
	}{
		{
			name:    "Null topics on create",
			action:  models.ActionCreate,
			key:     "topics",
			wantErr: true,
		},
		{
			name:    "Null teams on update",
			action:  models.ActionUpdate,
			key:     "teams",
			wantErr: true,
		},
		{
			name:    "Null comments on comment",
			action:  models.ActionComment,
			key:     "comments",
			wantErr: true,
		},
		{
			name:   "Null topics on approve is not read",
			action: models.ActionApprove,
			key:    "topics",
		},
		{
			name:   "Null thread id is optional",
			action: models.ActionUpdate,
			key:    "email_thread_id",
		},
	}

	parser := NewParser(enterpriseOrg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := samplePayload()
			doc[tt.key] = nil

			req, err := parser.Parse(encode(t, doc), tt.action)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Nil(t, req)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), tt.key+" is null")
		})
	}
}

func TestParseRepository(t *testing.T) {
	parser := NewParser(enterpriseOrg)

	req, err := parser.ParseRepository([]byte("organization: acme\nrepo_name: widgets\n"))
	require.NoError(t, err)
	assert.Equal(t, "acme", req.Organization)
	assert.Equal(t, "widgets", req.RepoName)

	_, err = parser.ParseRepository([]byte("organization: acme\ncc_list: a@example.com\n"))
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "repo_name")

	_, err = parser.ParseRepository([]byte("organization: acme\nrepo_name: null\n"))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestParseSkipsIrrelevantKeys(t *testing.T) {
	tests := []struct {
		name   string
		action models.Action
		remove []string
	}{
		{
			name:   "Triage keys outside enterprise organization",
			action: models.ActionCreate,
			remove: triageKeys,
		},
		{
			name:   "CI keys when no CI system selected",
			action: models.ActionCreate,
			remove: append(append([]string{}, jenkinsKeys...), azureKeys...),
		},
		{
			name:   "Approval only needs organization and name",
			action: models.ActionApprove,
			remove: []string{"email", "topics", "teams", "comments", "description"},
		},
	}

	parser := NewParser(enterpriseOrg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := samplePayload()
			for _, key := range tt.remove {
				delete(doc, key)
			}
			_, err := parser.Parse(encode(t, doc), tt.action)
			assert.NoError(t, err)
		})
	}
}

func TestParseInvalidDocuments(t *testing.T) {
	parser := NewParser(enterpriseOrg)

	_, err := parser.Parse([]byte("   "), models.ActionCreate)
	assert.Error(t, err)

	_, err = parser.Parse([]byte("- just\n- a list\n"), models.ActionCreate)
	assert.Error(t, err)

	_, err = parser.Parse([]byte(`{"topics": "not-a-list"`), models.ActionCreate)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, encode(t, samplePayload()), 0o600))

	parser := NewParser(enterpriseOrg)
	req, err := parser.Load(path, models.ActionCreate)
	require.NoError(t, err)
	assert.Equal(t, "widgets", req.RepoName)

	_, err = parser.Load(filepath.Join(t.TempDir(), "missing.json"), models.ActionCreate)
	assert.Error(t, err)

	repo, err := parser.LoadRepository(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", repo.Organization)
}
