package ingest

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Leorasaharia/provider-directory/internal/model"
)

// LoadXLSX reads a provider roster from the first sheet of an XLSX file.
// The first row must be a header; columns follow the same aliases as the
// CSV loader.
func LoadXLSX(path string) ([]model.ProviderRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("ingest: xlsx sheet is empty")
	}

	cols := headerIndex(rowToStrings(sheet.Rows[0]))
	if _, ok := cols["name"]; !ok {
		return nil, eris.New("ingest: xlsx header is missing a name column")
	}

	var providers []model.ProviderRecord
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if blankRow(cells) {
			continue
		}
		providers = append(providers, recordFromRow(cols, cells))
	}

	return providers, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
