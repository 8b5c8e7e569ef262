// Package ingest loads provider rosters from tabular files.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Leorasaharia/provider-directory/internal/model"
)

// columnAliases maps accepted header spellings to canonical column names.
var columnAliases = map[string]string{
	"name":          "name",
	"provider_name": "name",
	"npi":           "npi",
	"phone":         "phone",
	"mobile_no":     "phone",
	"mobile":        "phone",
	"address":       "address",
	"speciality":    "speciality",
	"specialty":     "speciality",
	"impact":        "impact",
	"member_impact": "impact",
}

// LoadCSV reads a provider roster from a CSV file. The first row must be a
// header; column order is free. A missing or invalid impact column defaults
// to model.DefaultImpact.
func LoadCSV(path string) ([]model.ProviderRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseCSV reads a provider roster from an io.Reader in CSV form.
func ParseCSV(r io.Reader) ([]model.ProviderRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("ingest: csv is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv header")
	}

	cols := headerIndex(header)
	if _, ok := cols["name"]; !ok {
		return nil, eris.New("ingest: csv header is missing a name column")
	}

	var providers []model.ProviderRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		providers = append(providers, recordFromRow(cols, row))
	}

	return providers, nil
}

// headerIndex maps canonical column names to their position in the header.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := columnAliases[key]; ok {
			if _, seen := cols[canonical]; !seen {
				cols[canonical] = i
			}
		}
	}
	return cols
}

func recordFromRow(cols map[string]int, row []string) model.ProviderRecord {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	impact := model.DefaultImpact
	if raw := cell("impact"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			impact = n
		}
	}

	return model.ProviderRecord{
		Name:       cell("name"),
		NPI:        cell("npi"),
		Phone:      cell("phone"),
		Address:    cell("address"),
		Speciality: cell("speciality"),
		Impact:     impact,
	}.Normalize()
}
