package sbom

import (
	"strings"
)

// scanCodeRefPrefix marks ScanCode license keys that have no SPDX
// identifier when a scan is exported as SPDX.
const scanCodeRefPrefix = "LicenseRef-scancode-"

// noAssertion lists the license values scanners write when they have no
// license to report.
var noAssertion = map[string]bool{
	"noassertion": true,
	"none":        true,
	"unknown":     true,
}

func normalizeName(s string) string {
	return strings.ToLower(collapseSpace(s))
}

// normalizeType lowercases the scanner package type so that it reads like
// a PURL type in the Package Type column.
func normalizeType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeLicense cleans one license entry before it is joined into the
// License Expression column. Keys keep their case since license data is
// looked up by exact key. "LicenseRef-scancode-" references turn back
// into their ScanCode key.
func normalizeLicense(s string) string {
	s = collapseSpace(s)
	if noAssertion[strings.ToLower(s)] {
		return ""
	}
	return strings.ReplaceAll(s, scanCodeRefPrefix, "")
}

// NormalizeComponent applies all normalizations to a component. Licenses
// are cleaned and repeated entries dropped, keeping first-seen order.
func NormalizeComponent(c Component) Component {
	normalized := Component{
		ID:        c.ID,
		Name:      normalizeName(c.Name),
		Version:   strings.TrimSpace(c.Version),
		PURL:      strings.TrimSpace(c.PURL),
		CPEs:      c.CPEs,
		BOMRef:    strings.TrimSpace(c.BOMRef),
		SPDXID:    strings.TrimSpace(c.SPDXID),
		Namespace: strings.TrimSpace(c.Namespace),
		Supplier:  collapseSpace(c.Supplier),
		Type:      normalizeType(c.Type),
	}

	seen := make(map[string]bool, len(c.Licenses))
	for _, lic := range c.Licenses {
		lic = normalizeLicense(lic)
		if lic == "" || seen[lic] {
			continue
		}
		seen[lic] = true
		normalized.Licenses = append(normalized.Licenses, lic)
	}

	if normalized.ID == "" {
		normalized.ID = ComputeID(normalized)
	}
	return normalized
}

// NormalizeComponents normalizes a slice of components
func NormalizeComponents(comps []Component) []Component {
	result := make([]Component, len(comps))
	for i, c := range comps {
		result[i] = NormalizeComponent(c)
	}
	return result
}
