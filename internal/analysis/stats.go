package analysis

import (
	"sort"
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/rezmoss/sctk/internal/sbom"
	"github.com/rezmoss/sctk/internal/table"
)

// ComponentStats contains statistics about converted scanner output
type ComponentStats struct {
	TotalComponents   int              `json:"total_components"`
	ByType            map[string]int   `json:"by_type,omitempty"`
	ByLicense         map[string]int   `json:"by_license,omitempty"`
	WithoutLicense    int              `json:"without_license"`
	WithCPEs          int              `json:"with_cpes"`
	WithoutCPEs       int              `json:"without_cpes"`
	WithPURL          int              `json:"with_purl"`
	WithoutPURL       int              `json:"without_purl"`
	LicenseCategories *LicenseCategory `json:"license_categories,omitempty"`
	DuplicateCount    int              `json:"duplicate_count"`
	Duplicates        []DuplicateGroup `json:"duplicates,omitempty"`
}

// LicenseCategory groups licenses by type
type LicenseCategory struct {
	Copyleft     int `json:"copyleft"`   // GPL, LGPL, AGPL, etc.
	Permissive   int `json:"permissive"` // MIT, BSD, Apache, etc.
	PublicDomain int `json:"public_domain"`
	Unknown      int `json:"unknown"`
}

// ComputeComponentStats calculates statistics for a list of components
func ComputeComponentStats(comps []sbom.Component) ComponentStats {
	stats := ComponentStats{
		ByType:    make(map[string]int),
		ByLicense: make(map[string]int),
	}
	stats.TotalComponents = len(comps)
	categories := &LicenseCategory{}

	for _, c := range comps {
		ptype := ExtractPURLType(c.PURL)
		if ptype == "unknown" && c.Type != "" {
			ptype = c.Type
		}
		stats.ByType[ptype]++

		if len(c.Licenses) == 0 {
			stats.WithoutLicense++
			categories.Unknown++
		} else {
			for _, lic := range c.Licenses {
				stats.ByLicense[lic]++
			}
			// Categorize by first license
			switch CategorizeLicense(c.Licenses[0]) {
			case "copyleft":
				categories.Copyleft++
			case "permissive":
				categories.Permissive++
			case "public_domain":
				categories.PublicDomain++
			default:
				categories.Unknown++
			}
		}

		if len(c.CPEs) > 0 {
			stats.WithCPEs++
		} else {
			stats.WithoutCPEs++
		}
		if c.PURL != "" {
			stats.WithPURL++
		} else {
			stats.WithoutPURL++
		}
	}

	if stats.TotalComponents > 0 {
		stats.LicenseCategories = categories
	}

	dups := DetectDuplicates(comps)
	stats.DuplicateCount = len(dups)
	if len(dups) > 0 {
		stats.Duplicates = dups
	}
	return stats
}

// CategorizeLicense categorizes a license into copyleft, permissive, public_domain, or unknown
func CategorizeLicense(license string) string {
	lic := strings.ToUpper(license)

	for _, prefix := range []string{"GPL", "LGPL", "AGPL", "MPL", "EPL", "CPL", "CDDL", "EUPL"} {
		if strings.Contains(lic, prefix) {
			return "copyleft"
		}
	}
	for _, prefix := range []string{"MIT", "BSD", "APACHE", "ISC", "ZLIB", "UNLICENSE", "WTFPL", "CC0", "EXPAT", "X11"} {
		if strings.Contains(lic, prefix) {
			return "permissive"
		}
	}
	if strings.Contains(lic, "PUBLIC-DOMAIN") || strings.Contains(lic, "PUBLIC DOMAIN") || strings.Contains(lic, "PUBLICDOMAIN") {
		return "public_domain"
	}
	return "unknown"
}

// ExtractPURLType extracts the package type from a PURL
func ExtractPURLType(purl string) string {
	p, err := packageurl.FromString(purl)
	if err != nil || p.Type == "" {
		return "unknown"
	}
	return p.Type
}

// ValueCount is one distinct value of a column and how often it occurs.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnStats describes the values of one table column.
type ColumnStats struct {
	Name     string       `json:"name"`
	Filled   int          `json:"filled"`
	Empty    int          `json:"empty"`
	Distinct int          `json:"distinct"`
	Top      []ValueCount `json:"top,omitempty"`
}

// TableStats contains per-column statistics of a table.
type TableStats struct {
	Rows    int           `json:"rows"`
	Columns []ColumnStats `json:"columns"`
}

// ComputeStats counts filled and empty cells per column and keeps the
// topN most frequent non-empty values. Ties are ordered by value.
func ComputeStats(tbl *table.Table, topN int) TableStats {
	stats := TableStats{Rows: len(tbl.Rows)}
	for _, h := range tbl.Headers {
		cs := ColumnStats{Name: h}
		counts := make(map[string]int)
		for _, r := range tbl.Rows {
			v := strings.TrimSpace(r.Value(h))
			if v == "" {
				cs.Empty++
				continue
			}
			cs.Filled++
			counts[v]++
		}
		cs.Distinct = len(counts)
		for _, v := range SortedByValue(counts) {
			if topN > 0 && len(cs.Top) >= topN {
				break
			}
			cs.Top = append(cs.Top, ValueCount{Value: v, Count: counts[v]})
		}
		stats.Columns = append(stats.Columns, cs)
	}
	return stats
}

// SortedKeys returns map keys sorted alphabetically
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedByValue returns map keys sorted by value (descending), then by key
func SortedByValue(m map[string]int) []string {
	keys := SortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return m[keys[i]] > m[keys[j]]
	})
	return keys
}
