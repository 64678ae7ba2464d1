package pipeline

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/hpfinder-cli/internal/model"
)

// headerAliases maps accepted CSV column names to company fields. Exports
// from different upstream systems label the same columns differently.
var headerAliases = map[string]string{
	"id":       "id",
	"会社id":     "id",
	"name":     "name",
	"会社名":      "name",
	"company":  "name",
	"industry": "industry",
	"業種":       "industry",
	"region":   "region",
	"地域":       "region",
	"都道府県":     "region",
}

// ParseCompanyCSV reads a company CSV and returns parsed records. The name
// column is required; id, industry, and region are optional. A missing id
// is synthesized from the row so decisions still key consistently within a
// run.
func ParseCompanyCSV(csvPath string) ([]model.Company, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, eris.Wrap(err, "source: open csv")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "source: read csv")
	}
	if len(records) < 2 {
		return nil, eris.New("source: csv has no data rows")
	}

	colIdx := make(map[string]int)
	for i, col := range records[0] {
		if field, ok := headerAliases[strings.ToLower(strings.TrimSpace(col))]; ok {
			colIdx[field] = i
		}
	}
	if _, ok := colIdx["name"]; !ok {
		return nil, eris.New("source: missing required name column")
	}

	seen := make(map[string]bool)
	var companies []model.Company
	for rowNum, row := range records[1:] {
		name := getCol(row, colIdx, "name")
		if name == "" {
			continue
		}

		id := getCol(row, colIdx, "id")
		if id == "" {
			id = "row-" + strconv.Itoa(rowNum+2) + "-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		companies = append(companies, model.Company{
			ID:       id,
			Name:     name,
			Industry: getCol(row, colIdx, "industry"),
			Region:   getCol(row, colIdx, "region"),
		})
	}

	if len(companies) == 0 {
		return nil, eris.New("source: no valid companies found in csv")
	}
	return companies, nil
}

// getCol safely retrieves a column value from a CSV row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
