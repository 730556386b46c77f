// Package payload decodes repository request documents handed over by the
// workflow system and checks that every field a notification reads is there.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danielolaszy/reqmail/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrMissingField is returned when a key the action's email reads is absent
// or null.
var ErrMissingField = errors.New("payload field missing")

// detailKeys are read by the request details block regardless of context.
var detailKeys = []string{
	"email",
	"lead_email",
	"requirement",
	"repo_name",
	"organization",
	"description",
	"website_url",
	"topics",
	"enable_issues",
	"pr_protection",
	"teams",
	"cicd_requirement",
}

var (
	triageKeys  = []string{"enable_triage_wso2all", "enable_triage_wso2allinterns", "disable_triage_reason"}
	jenkinsKeys = []string{"jenkins_job_type", "jenkins_group_id"}
	azureKeys   = []string{"azure_devops_org", "azure_devops_project"}
)

// Parser decodes request payloads. Triage keys are only required for
// requests against the enterprise organization.
type Parser struct {
	enterpriseOrganization string
}

// NewParser returns a Parser for the given enterprise organization.
func NewParser(enterpriseOrganization string) *Parser {
	return &Parser{enterpriseOrganization: enterpriseOrganization}
}

// repositoryKeys identify the requested repository.
var repositoryKeys = []string{"organization", "repo_name"}

// Load reads a payload from path, or from stdin when path is "-".
func (p *Parser) Load(path string, action models.Action) (*models.RepositoryRequest, error) {
	data, err := readPayload(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(data, action)
}

// LoadRepository reads a payload from path and only requires the keys that
// name the repository.
func (p *Parser) LoadRepository(path string) (*models.RepositoryRequest, error) {
	data, err := readPayload(path)
	if err != nil {
		return nil, err
	}
	return p.ParseRepository(data)
}

// Parse decodes a YAML or JSON payload and verifies the keys that action needs.
func (p *Parser) Parse(data []byte, action models.Action) (*models.RepositoryRequest, error) {
	return p.parse(data, func(req *models.RepositoryRequest) []string {
		return p.requiredKeys(action, req)
	})
}

// ParseRepository decodes a payload that only has to carry organization and
// repo_name.
func (p *Parser) ParseRepository(data []byte) (*models.RepositoryRequest, error) {
	return p.parse(data, func(*models.RepositoryRequest) []string {
		return repositoryKeys
	})
}

func readPayload(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload %s: %w", path, err)
	}
	return data, nil
}

// parse decodes data and checks that every key returned by required is
// present with a non-null value.
func (p *Parser) parse(data []byte, required func(*models.RepositoryRequest) []string) (*models.RepositoryRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	var req models.RepositoryRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	for _, key := range required(&req) {
		value, ok := fields[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
		}
		if value == nil {
			return nil, fmt.Errorf("%w: %s is null", ErrMissingField, key)
		}
	}

	return &req, nil
}

// requiredKeys lists the keys read when rendering the email for action.
func (p *Parser) requiredKeys(action models.Action, req *models.RepositoryRequest) []string {
	keys := []string{"cc_list", "timestamp"}

	switch action {
	case models.ActionCreate, models.ActionUpdate:
		keys = append(keys, detailKeys...)
		if req.Organization == p.enterpriseOrganization {
			keys = append(keys, triageKeys...)
		}
		switch req.CICDRequirement {
		case models.CICDJenkins:
			keys = append(keys, jenkinsKeys...)
		case models.CICDAzureDevOps:
			keys = append(keys, azureKeys...)
		}
	case models.ActionComment:
		keys = append(keys, "comments")
	case models.ActionApprove:
		keys = append(keys, repositoryKeys...)
	}

	return keys
}
