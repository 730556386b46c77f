package notifier

import (
	"embed"
	"strings"
	"text/template"

	"github.com/danielolaszy/reqmail/pkg/models"
)

var (
	//go:embed templates/*.tmpl
	templateFS embed.FS

	bodyTemplates = map[models.Action]*template.Template{
		models.ActionCreate:  mustParse("create"),
		models.ActionUpdate:  mustParse("update"),
		models.ActionComment: mustParse("comment"),
		models.ActionApprove: mustParse("approve"),
	}
)

func mustParse(name string) *template.Template {
	return template.Must(template.New(name+".tmpl").ParseFS(templateFS, "templates/"+name+".tmpl"))
}

// bodyParams is the data every body template is executed with.
type bodyParams struct {
	Details       string
	Comments      string
	RepositoryURL string
}

func renderBody(action models.Action, p bodyParams) (string, error) {
	var b strings.Builder
	if err := bodyTemplates[action].Execute(&b, p); err != nil {
		return "", err
	}
	return b.String(), nil
}
