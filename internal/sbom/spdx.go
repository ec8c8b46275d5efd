package sbom

import (
	"bytes"
	"strings"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx"
)

// ParseSPDX parses SPDX JSON data
func ParseSPDX(data []byte) ([]Component, error) {
	doc, err := spdxjson.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var comps []Component
	for _, pkg := range doc.Packages {
		comp := Component{
			Name:    pkg.PackageName,
			Version: pkg.PackageVersion,
			SPDXID:  string(pkg.PackageSPDXIdentifier),
		}
		for _, ref := range pkg.PackageExternalReferences {
			if ref.RefType == spdx.PackageManagerPURL || ref.RefType == "purl" {
				comp.PURL = ref.Locator
			}
			if ref.RefType == "cpe22Type" || ref.RefType == "cpe23Type" {
				comp.CPEs = append(comp.CPEs, ref.Locator)
			}
		}
		// Concluded wins over declared when the scanner asserted one
		switch {
		case normalizeLicense(pkg.PackageLicenseConcluded) != "":
			comp.Licenses = append(comp.Licenses, pkg.PackageLicenseConcluded)
		case pkg.PackageLicenseDeclared != "":
			comp.Licenses = append(comp.Licenses, pkg.PackageLicenseDeclared)
		}
		if pkg.PackageSupplier != nil && pkg.PackageSupplier.Supplier != "" {
			comp.Supplier = strings.TrimSpace(pkg.PackageSupplier.Supplier)
		}
		comp.ID = ComputeID(comp)
		comps = append(comps, comp)
	}
	return comps, nil
}
