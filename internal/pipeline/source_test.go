package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCompanyCSV(t *testing.T) {
	path := writeCSV(t, `id,name,industry,region
c1,株式会社サンプル,美容,東京
c2,Barber Boss,,大阪
`)
	companies, err := ParseCompanyCSV(path)
	require.NoError(t, err)
	require.Len(t, companies, 2)

	assert.Equal(t, "c1", companies[0].ID)
	assert.Equal(t, "株式会社サンプル", companies[0].Name)
	assert.Equal(t, "美容", companies[0].Industry)
	assert.Equal(t, "東京", companies[0].Region)
	assert.Empty(t, companies[1].Industry)
}

func TestParseCompanyCSV_JapaneseHeaders(t *testing.T) {
	path := writeCSV(t, `会社ID,会社名,業種,都道府県
c1,サンプル,小売,北海道
`)
	companies, err := ParseCompanyCSV(path)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "c1", companies[0].ID)
	assert.Equal(t, "北海道", companies[0].Region)
}

func TestParseCompanyCSV_SynthesizesMissingID(t *testing.T) {
	path := writeCSV(t, `name
サンプル
`)
	companies, err := ParseCompanyCSV(path)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.NotEmpty(t, companies[0].ID)

	// Synthesized ids are stable across parses of the same file.
	again, err := ParseCompanyCSV(path)
	require.NoError(t, err)
	assert.Equal(t, companies[0].ID, again[0].ID)
}

func TestParseCompanyCSV_SkipsBlankNamesAndDuplicateIDs(t *testing.T) {
	path := writeCSV(t, `id,name
c1,サンプル
c1,重複
,
c2,別の会社
`)
	companies, err := ParseCompanyCSV(path)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "サンプル", companies[0].Name)
	assert.Equal(t, "c2", companies[1].ID)
}

func TestParseCompanyCSV_MissingNameColumn(t *testing.T) {
	path := writeCSV(t, `id,url
c1,https://x.com
`)
	_, err := ParseCompanyCSV(path)
	assert.Error(t, err)
}

func TestParseCompanyCSV_NoDataRows(t *testing.T) {
	path := writeCSV(t, "id,name\n")
	_, err := ParseCompanyCSV(path)
	assert.Error(t, err)
}

func TestParseCompanyCSV_MissingFile(t *testing.T) {
	_, err := ParseCompanyCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
