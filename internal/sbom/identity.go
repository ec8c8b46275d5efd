package sbom

import (
	"strings"

	"github.com/package-url/packageurl-go"
)

// ComputeID generates a canonical identity for a component
// using the following precedence:
// 1. PURL (without version/qualifiers/subpath)
// 2. CPE (vendor:product only)
// 3. BOM-ref / SPDXID
// 4. Namespace + Name
// 5. Name only (fallback)
func ComputeID(c Component) string {
	if c.PURL != "" {
		if id := normalizePURL(c.PURL); id != "" {
			return id
		}
	}

	for _, cpe := range c.CPEs {
		if normalized := normalizeCPE(cpe); normalized != "" {
			return normalized
		}
	}

	if c.BOMRef != "" {
		return "ref:" + c.BOMRef
	}
	if c.SPDXID != "" {
		return "ref:" + c.SPDXID
	}

	if c.Namespace != "" {
		return c.Namespace + "/" + c.Name
	}
	return c.Name
}

// normalizePURL drops version, qualifiers and subpath from a package URL.
// Invalid PURLs yield "".
func normalizePURL(s string) string {
	p, err := packageurl.FromString(s)
	if err != nil {
		return ""
	}
	p.Version = ""
	p.Qualifiers = nil
	p.Subpath = ""
	return p.ToString()
}

// normalizeCPE extracts vendor:product from a CPE string
// Supports both CPE 2.3 and CPE 2.2 formats
// Returns empty string if CPE is invalid
func normalizeCPE(cpe string) string {
	// CPE 2.3 format: cpe:2.3:part:vendor:product:version:...
	if strings.HasPrefix(cpe, "cpe:2.3:") {
		parts := strings.Split(cpe, ":")
		if len(parts) >= 5 {
			vendor, product := parts[3], parts[4]
			if vendor != "" && vendor != "*" && product != "" && product != "*" {
				return "cpe:" + vendor + ":" + product
			}
		}
		return ""
	}

	// CPE 2.2 format: cpe:/part:vendor:product:version...
	if strings.HasPrefix(cpe, "cpe:/") {
		parts := strings.Split(cpe[len("cpe:/"):], ":")
		if len(parts) >= 3 && parts[1] != "" && parts[2] != "" {
			return "cpe:" + parts[1] + ":" + parts[2]
		}
	}
	return ""
}
