package impact

import (
	"strings"

	"CitationWatch/internal/ports"
)

// builtinFactors holds impact factors for journals that show up constantly in
// biomedical spike digests. Config overrides extend or replace these entries.
var builtinFactors = map[string]string{
	"nature":                          "64.8",
	"science":                         "56.9",
	"cell":                            "64.5",
	"the lancet":                      "168.9",
	"new england journal of medicine": "176.1",
	"nature medicine":                 "87.2",
	"nature biotechnology":            "68.2",
	"jama":                            "120.7",
	"bmj":                             "105.7",
}

// Table answers journal impact-factor lookups from an in-memory map.
type Table struct {
	factors map[string]string
}

var _ ports.ImpactSource = (*Table)(nil)

// NewTable merges the builtin factors with configured overrides. Journal
// names are matched case-insensitively.
func NewTable(overrides map[string]string) *Table {
	factors := make(map[string]string, len(builtinFactors)+len(overrides))
	for name, factor := range builtinFactors {
		factors[normalize(name)] = factor
	}
	for name, factor := range overrides {
		factors[normalize(name)] = factor
	}
	return &Table{factors: factors}
}

// Lookup returns the impact factor for a journal, or false when unknown.
func (t *Table) Lookup(journal string) (string, bool) {
	key := normalize(journal)
	if key == "" {
		return "", false
	}
	factor, ok := t.factors[key]
	return factor, ok
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
