package sbom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/rezmoss/sctk/internal/table"
)

// Inventory columns written by ScanCodeInventory.
const (
	ColumnResourcePath      = "Resource Path"
	ColumnResourceName      = "Resource Name"
	ColumnItemType          = "Item Type"
	ColumnPackageName       = "Package Name"
	ColumnPackageVersion    = "Package Version"
	ColumnPackageNamespace  = "Package Namespace"
	ColumnInventoryPURL     = "purl"
	ColumnHomepageURL       = "Homepage URL"
	ColumnDownloadURL       = "Download URL"
	ColumnDetectedLicense   = "Detected License Expression"
	ColumnDetectedCopyright = "Detected Copyright"
	ColumnLanguage          = "Language"
)

// InventoryHeaders is the column order of ScanCodeInventory.
var InventoryHeaders = []string{
	ColumnResourcePath,
	ColumnResourceName,
	ColumnItemType,
	ColumnPackageType,
	ColumnPackageNamespace,
	ColumnPackageName,
	ColumnPackageVersion,
	ColumnInventoryPURL,
	ColumnHomepageURL,
	ColumnDownloadURL,
	ColumnDetectedLicense,
	ColumnDetectedCopyright,
	ColumnLanguage,
}

type scanCodeDoc struct {
	Headers []struct {
		ToolName    string `json:"tool_name"`
		ToolVersion string `json:"tool_version"`
	} `json:"headers"`
	ScanCodeVersion string            `json:"scancode_version"`
	Packages        []scanCodePackage `json:"packages"`
	Files           []scanCodeFile    `json:"files"`
}

type scanCodeFile struct {
	Path                      string            `json:"path"`
	Type                      string            `json:"type"`
	Name                      string            `json:"name"`
	ProgrammingLanguage       string            `json:"programming_language"`
	DetectedLicenseExpression string            `json:"detected_license_expression"`
	LicenseExpressions        []string          `json:"license_expressions"`
	Holders                   []scanCodeValue   `json:"holders"`
	Packages                  []scanCodePackage `json:"packages"`
	PackageManifests          []scanCodePackage `json:"package_manifests"`
	PackageData               []scanCodePackage `json:"package_data"`
}

// packages returns the package list of f. Scan versions store it under
// different keys.
func (f scanCodeFile) packages() []scanCodePackage {
	switch {
	case len(f.PackageData) > 0:
		return f.PackageData
	case len(f.PackageManifests) > 0:
		return f.PackageManifests
	}
	return f.Packages
}

// scanCodeValue is a holder or copyright entry. Older scans put the text
// under "value".
type scanCodeValue struct {
	Value  string `json:"value"`
	Holder string `json:"holder"`
}

func (v scanCodeValue) text() string {
	if v.Holder != "" {
		return v.Holder
	}
	return v.Value
}

type scanCodePackage struct {
	Type                      string `json:"type"`
	Namespace                 string `json:"namespace"`
	Name                      string `json:"name"`
	Version                   string `json:"version"`
	PURL                      string `json:"purl"`
	PrimaryLanguage           string `json:"primary_language"`
	HomepageURL               string `json:"homepage_url"`
	DownloadURL               string `json:"download_url"`
	DeclaredLicenseExpression string `json:"declared_license_expression"`
	LicenseExpression         string `json:"license_expression"`
	Parties                   []struct {
		Role string `json:"role"`
		Name string `json:"name"`
	} `json:"parties"`
}

// purl returns the package URL of p, building one from its coordinates
// when the scan has none.
func (p scanCodePackage) purl() string {
	if p.PURL != "" || p.Type == "" || p.Name == "" {
		return p.PURL
	}
	return packageurl.NewPackageURL(p.Type, p.Namespace, p.Name, p.Version, nil, "").ToString()
}

func (p scanCodePackage) licenseExpression() string {
	if p.DeclaredLicenseExpression != "" {
		return p.DeclaredLicenseExpression
	}
	return p.LicenseExpression
}

func (p scanCodePackage) supplier() string {
	for _, party := range p.Parties {
		if party.Role == "owner" || party.Role == "vendor" {
			return party.Name
		}
	}
	return ""
}

func (p scanCodePackage) component() Component {
	c := Component{
		Name:      p.Name,
		Version:   p.Version,
		PURL:      p.purl(),
		Namespace: p.Namespace,
		Supplier:  p.supplier(),
		Type:      p.Type,
	}
	if lic := p.licenseExpression(); lic != "" {
		c.Licenses = []string{lic}
	}
	return c
}

// IsScanCode returns true if data is a ScanCode Toolkit JSON scan
func IsScanCode(data []byte) bool {
	var doc struct {
		Headers []struct {
			ToolName string `json:"tool_name"`
		} `json:"headers"`
		ScanCodeVersion string          `json:"scancode_version"`
		Files           json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Files == nil {
		return false
	}
	if doc.ScanCodeVersion != "" {
		return true
	}
	for _, h := range doc.Headers {
		if strings.HasPrefix(h.ToolName, "scancode") {
			return true
		}
	}
	return false
}

func parseScanCodeDoc(data []byte) (scanCodeDoc, error) {
	var doc scanCodeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing ScanCode scan: %w", err)
	}
	return doc, nil
}

// ParseScanCode returns the packages of a ScanCode scan. Scans that list
// packages at the top level use that list; older scans list them per
// file. A package URL reported by several files is returned once.
func ParseScanCode(data []byte) ([]Component, Info, error) {
	doc, err := parseScanCodeDoc(data)
	if err != nil {
		return nil, Info{}, err
	}

	info := Info{SourceType: "scan", SourceName: "scancode-toolkit " + doc.ScanCodeVersion}
	if len(doc.Headers) > 0 {
		info.SourceName = doc.Headers[0].ToolName + " " + doc.Headers[0].ToolVersion
	}
	info.SourceName = strings.TrimSpace(info.SourceName)

	pkgs := doc.Packages
	if len(pkgs) == 0 {
		for _, f := range doc.Files {
			pkgs = append(pkgs, f.packages()...)
		}
	}

	var comps []Component
	seen := make(map[string]bool)
	for _, p := range pkgs {
		c := p.component()
		if c.PURL != "" {
			if seen[c.PURL] {
				continue
			}
			seen[c.PURL] = true
		}
		comps = append(comps, c)
	}
	return comps, info, nil
}

// ScanCodeInventory lays a ScanCode scan out as one inventory row per
// scanned resource. A resource with a single package carries the package
// columns on its own row; each package of a resource with several is
// written on an extra row holding only the resource path and package
// columns.
func ScanCodeInventory(data []byte) (*table.Table, error) {
	if !IsScanCode(data) {
		return nil, ErrUnknownFormat
	}
	doc, err := parseScanCodeDoc(data)
	if err != nil {
		return nil, err
	}

	out := table.New(InventoryHeaders...)
	for _, f := range doc.Files {
		row := table.NewRow(
			ColumnResourcePath, f.Path,
			ColumnResourceName, f.Name,
			ColumnItemType, itemType(f.Type),
			ColumnDetectedLicense, f.detectedLicense(),
			ColumnDetectedCopyright, f.holders(),
			ColumnLanguage, f.ProgrammingLanguage,
		)

		pkgs := f.packages()
		if len(pkgs) > 0 && row.Value(ColumnLanguage) == "" {
			row.Set(ColumnLanguage, pkgs[0].PrimaryLanguage)
		}
		if len(pkgs) == 1 {
			setPackageColumns(row, pkgs[0])
		}
		out.Append(row)

		if len(pkgs) > 1 {
			for _, p := range pkgs {
				prow := table.NewRow(ColumnResourcePath, f.Path)
				setPackageColumns(prow, p)
				out.Append(prow)
			}
		}
	}
	return out, nil
}

func setPackageColumns(row *table.Row, p scanCodePackage) {
	row.Set(ColumnPackageType, p.Type)
	row.Set(ColumnPackageNamespace, p.Namespace)
	row.Set(ColumnPackageName, p.Name)
	row.Set(ColumnPackageVersion, p.Version)
	row.Set(ColumnInventoryPURL, p.purl())
	row.Set(ColumnHomepageURL, p.HomepageURL)
	row.Set(ColumnDownloadURL, p.DownloadURL)
}

func itemType(t string) string {
	switch t {
	case "file":
		return "F"
	case "directory":
		return "D"
	}
	return ""
}

func (f scanCodeFile) detectedLicense() string {
	if f.DetectedLicenseExpression != "" {
		return f.DetectedLicenseExpression
	}
	return strings.Join(f.LicenseExpressions, "\n")
}

// holders joins the distinct copyright holders of f, one per line.
func (f scanCodeFile) holders() string {
	var out []string
	seen := make(map[string]bool)
	for _, h := range f.Holders {
		if t := h.text(); t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
