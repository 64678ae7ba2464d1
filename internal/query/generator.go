// Package query renders search queries from company records and a set of
// ordered templates.
package query

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hpfinder-cli/internal/model"
)

// placeholderRe matches `{name}`-style placeholders inside a template.
var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// knownPlaceholders are the record fields a template may reference.
var knownPlaceholders = map[string]bool{
	"name":     true,
	"industry": true,
	"region":   true,
}

// Template is a compiled query template: the raw text plus the placeholders
// it requires.
type Template struct {
	Raw          string
	Placeholders []string
}

// CompileTemplates validates the template list at startup. An unknown
// placeholder or a template without any placeholder is a configuration
// error; per-record rendering never fails.
func CompileTemplates(raw []string) ([]Template, error) {
	if len(raw) == 0 {
		return nil, eris.New("query: no templates configured")
	}

	templates := make([]Template, 0, len(raw))
	for _, r := range raw {
		matches := placeholderRe.FindAllStringSubmatch(r, -1)
		if len(matches) == 0 {
			return nil, eris.Errorf("query: template %q has no placeholders", r)
		}

		var placeholders []string
		for _, m := range matches {
			if !knownPlaceholders[m[1]] {
				return nil, eris.Errorf("query: template %q references unknown placeholder {%s}", r, m[1])
			}
			placeholders = append(placeholders, m[1])
		}
		templates = append(templates, Template{Raw: r, Placeholders: placeholders})
	}
	return templates, nil
}

// Generator renders ordered search queries for a company record.
type Generator struct {
	templates []Template
}

// NewGenerator creates a Generator from compiled templates.
func NewGenerator(templates []Template) *Generator {
	return &Generator{templates: templates}
}

// Generate renders one query per template, in template order, skipping
// templates that require a field the record does not have. The company name
// is always present; industry and region are optional record fields.
func (g *Generator) Generate(company model.Company) []model.SearchQuery {
	fields := map[string]string{
		"name":     company.CleanName(),
		"industry": strings.TrimSpace(company.Industry),
		"region":   strings.TrimSpace(company.Region),
	}

	var queries []model.SearchQuery
	for _, tpl := range g.templates {
		if !hasRequiredFields(tpl, fields) {
			continue
		}

		text := tpl.Raw
		for key, val := range fields {
			text = strings.ReplaceAll(text, "{"+key+"}", val)
		}
		queries = append(queries, model.SearchQuery{
			Template: tpl.Raw,
			Text:     strings.TrimSpace(text),
		})
	}
	return queries
}

func hasRequiredFields(tpl Template, fields map[string]string) bool {
	for _, p := range tpl.Placeholders {
		if fields[p] == "" {
			return false
		}
	}
	return true
}
