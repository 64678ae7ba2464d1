package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hpfinder-cli/internal/model"
)

func TestCompileTemplates_RejectsUnknownPlaceholder(t *testing.T) {
	_, err := CompileTemplates([]string{"{name} {prefecture}"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown placeholder")
}

func TestCompileTemplates_RejectsNoPlaceholders(t *testing.T) {
	_, err := CompileTemplates([]string{"公式サイト"})
	require.Error(t, err)
}

func TestCompileTemplates_RejectsEmptyList(t *testing.T) {
	_, err := CompileTemplates(nil)
	require.Error(t, err)
}

func TestGenerate_RendersInTemplateOrder(t *testing.T) {
	templates, err := CompileTemplates([]string{
		"{name} {industry} {region}",
		`"{name}" 公式サイト`,
	})
	require.NoError(t, err)

	g := NewGenerator(templates)
	queries := g.Generate(model.Company{
		ID: "c1", Name: "株式会社サンプル", Industry: "美容", Region: "東京",
	})

	require.Len(t, queries, 2)
	assert.Equal(t, "株式会社サンプル 美容 東京", queries[0].Text)
	assert.Equal(t, `"株式会社サンプル" 公式サイト`, queries[1].Text)
	assert.Equal(t, "{name} {industry} {region}", queries[0].Template)
}

func TestGenerate_SkipsTemplatesWithMissingFields(t *testing.T) {
	templates, err := CompileTemplates([]string{
		"{name} {industry} {region}",
		"{name} {region}",
		"{name}",
	})
	require.NoError(t, err)

	g := NewGenerator(templates)
	queries := g.Generate(model.Company{ID: "c1", Name: "サンプル", Region: "大阪"})

	require.Len(t, queries, 2)
	assert.Equal(t, "サンプル 大阪", queries[0].Text)
	assert.Equal(t, "サンプル", queries[1].Text)
}

func TestGenerate_UsesCleanedName(t *testing.T) {
	templates, err := CompileTemplates([]string{"{name}"})
	require.NoError(t, err)

	g := NewGenerator(templates)
	queries := g.Generate(model.Company{ID: "c1", Name: "【フリガナ】株式会社サンプル"})

	require.Len(t, queries, 1)
	assert.Equal(t, "株式会社サンプル", queries[0].Text)
}
