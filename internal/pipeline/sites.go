package pipeline

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SiteDirectory maps NPI numbers to known practice-website URLs. It is
// injected into the pipeline so tests and deployments can substitute their
// own mapping.
type SiteDirectory map[string]string

// URLFor returns the practice URL for an NPI, or "" when unknown.
func (d SiteDirectory) URLFor(npi string) string {
	if d == nil {
		return ""
	}
	return d[npi]
}

// LoadSiteDirectory reads an NPI-to-URL mapping from a YAML file of the form:
//
//	"1053395590": https://example.com/dr-aaron
//	"1144297730": https://example.com/dr-abad-santos
func LoadSiteDirectory(path string) (SiteDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read site directory %s", path)
	}

	var dir SiteDirectory
	if err := yaml.Unmarshal(raw, &dir); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse site directory %s", path)
	}
	return dir, nil
}
