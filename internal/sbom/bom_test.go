package sbom

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const cycloneDXDoc = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.5",
  "metadata": {
    "component": {"type": "container", "name": "alpine", "version": "3.19"}
  },
  "components": [
    {
      "type": "library",
      "name": "Lodash",
      "version": "4.17.21",
      "purl": "pkg:npm/lodash@4.17.21",
      "licenses": [{"license": {"id": "MIT"}}, {"license": {"id": "MIT"}}],
      "supplier": {"name": "OpenJS"},
      "components": [
        {"type": "library", "name": "inner", "version": "1.0", "group": "org.example",
         "licenses": [{"expression": "Apache-2.0 OR MIT"}]}
      ]
    }
  ]
}`

const spdxDoc = `{
  "spdxVersion": "SPDX-2.3",
  "dataLicense": "CC0-1.0",
  "SPDXID": "SPDXRef-DOCUMENT",
  "name": "example",
  "documentNamespace": "https://example.com/example",
  "creationInfo": {"created": "2024-01-01T00:00:00Z", "creators": ["Tool: test"]},
  "packages": [
    {
      "SPDXID": "SPDXRef-Package-guava",
      "name": "guava",
      "versionInfo": "32.0.0",
      "downloadLocation": "NOASSERTION",
      "licenseConcluded": "NOASSERTION",
      "licenseDeclared": "Apache-2.0",
      "supplier": "Organization: Google",
      "externalRefs": [
        {"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl",
         "referenceLocator": "pkg:maven/com.google.guava/guava@32.0.0"}
      ]
    }
  ]
}`

const syftDoc = `{
  "artifacts": [
    {"name": "busybox", "version": "1.36.1-r15", "type": "apk",
     "purl": "pkg:apk/alpine/busybox@1.36.1-r15?arch=x86_64",
     "licenses": [{"value": "GPL-2.0-only", "spdxExpression": "GPL-2.0-only"}],
     "cpes": [{"cpe": "cpe:2.3:a:busybox:busybox:1.36.1-r15:*:*:*:*:*:*:*"}]}
  ],
  "distro": {"name": "alpine", "version": "3.19.1"},
  "source": {"type": "image", "metadata": {"userInput": "alpine:3.19"}}
}`

func TestParseBytesCycloneDX(t *testing.T) {
	comps, info, err := ParseBytes([]byte(cycloneDXDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %d", len(comps))
	}
	if info.OSName != "alpine" || info.SourceType != "container" {
		t.Errorf("unexpected info: %+v", info)
	}
	if comps[0].Name != "lodash" {
		t.Errorf("expected normalized name lodash, got %s", comps[0].Name)
	}
	if comps[0].ID != "pkg:npm/lodash" {
		t.Errorf("expected ID pkg:npm/lodash, got %s", comps[0].ID)
	}
	if comps[1].ID != "org.example/inner" {
		t.Errorf("expected ID org.example/inner, got %s", comps[1].ID)
	}
}

func TestParseBytesSPDX(t *testing.T) {
	comps, _, err := ParseBytes([]byte(spdxDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}
	c := comps[0]
	if len(c.Licenses) != 1 || c.Licenses[0] != "Apache-2.0" {
		t.Errorf("expected declared license to replace NOASSERTION, got %v", c.Licenses)
	}
	if c.Supplier != "Google" {
		t.Errorf("expected supplier Google, got %q", c.Supplier)
	}
	if c.ID != "pkg:maven/com.google.guava/guava" {
		t.Errorf("unexpected ID %s", c.ID)
	}
}

func TestParseBytesSyft(t *testing.T) {
	comps, info, err := ParseBytes([]byte(syftDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.OSVersion != "3.19.1" || info.SourceName != "alpine:3.19" {
		t.Errorf("unexpected info: %+v", info)
	}
	if len(comps) != 1 || comps[0].Type != "apk" {
		t.Fatalf("unexpected components: %+v", comps)
	}
	if comps[0].ID != "pkg:apk/alpine/busybox" {
		t.Errorf("expected qualifiers and version to be dropped, got %s", comps[0].ID)
	}
}

func TestParseBytesUnknown(t *testing.T) {
	_, _, err := ParseBytes([]byte(`{"hello": "world"}`))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestToTable(t *testing.T) {
	comps, _, err := ParseBytes([]byte(cycloneDXDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl := ToTable(comps)

	if len(tbl.Headers) != len(BOMHeaders) {
		t.Fatalf("expected %d headers, got %d", len(BOMHeaders), len(tbl.Headers))
	}
	row := tbl.Rows[0]
	if got := row.Value(ColumnPackageType); got != "npm" {
		t.Errorf("expected package type npm, got %s", got)
	}
	if got := row.Value(ColumnLicenseExpression); got != "MIT" {
		t.Errorf("expected duplicate licenses to collapse, got %s", got)
	}
	if got := row.Value(ColumnSupplier); got != "OpenJS" {
		t.Errorf("expected supplier OpenJS, got %s", got)
	}

	inner := tbl.Rows[1]
	if got := inner.Value(ColumnPackageType); got != "library" {
		t.Errorf("expected scanner type without purl, got %s", got)
	}
	if got := inner.Value(ColumnNamespace); got != "org.example" {
		t.Errorf("expected group as namespace, got %s", got)
	}
}

func TestLicenseExpression(t *testing.T) {
	tests := []struct {
		name     string
		licenses []string
		expected string
	}{
		{"empty", nil, ""},
		{"single", []string{"MIT"}, "MIT"},
		{"duplicates", []string{"MIT", "BSD-3-Clause", "MIT"}, "MIT AND BSD-3-Clause"},
		{"compound", []string{"Apache-2.0 OR MIT", "MIT"}, "(Apache-2.0 OR MIT) AND MIT"},
		{"unbalanced kept", []string{"MIT)"}, "MIT)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LicenseExpression(tt.licenses); got != tt.expected {
				t.Errorf("LicenseExpression(%v) = %q, want %q", tt.licenses, got, tt.expected)
			}
		})
	}
}

func TestComputeID(t *testing.T) {
	tests := []struct {
		name     string
		comp     Component
		expected string
	}{
		{"purl", Component{PURL: "pkg:golang/github.com/foo/bar@v1.0.0", Name: "bar"}, "pkg:golang/github.com/foo/bar"},
		{"invalid purl falls through", Component{PURL: "not-a-purl", Name: "pkg"}, "pkg"},
		{"cpe23", Component{CPEs: []string{"cpe:2.3:a:vendor:product:1.0:*:*:*:*:*:*:*"}}, "cpe:vendor:product"},
		{"cpe22", Component{CPEs: []string{"cpe:/a:vendor:product:1.0"}}, "cpe:vendor:product"},
		{"bom-ref", Component{BOMRef: "ref-1", Name: "x"}, "ref:ref-1"},
		{"spdxid", Component{SPDXID: "SPDXRef-1", Name: "x"}, "ref:SPDXRef-1"},
		{"namespace", Component{Namespace: "org", Name: "x"}, "org/x"},
		{"name", Component{Name: "x"}, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeID(tt.comp); got != tt.expected {
				t.Errorf("ComputeID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

const scanCodeReportDoc = `{
  "headers": [{"tool_name": "scancode-toolkit", "tool_version": "32.0.8"}],
  "packages": [
    {"type": "npm", "name": "left-pad", "version": "1.3.0",
     "purl": "pkg:npm/left-pad@1.3.0", "declared_license_expression": "wtfpl",
     "parties": [{"role": "author", "name": "azer"}, {"role": "owner", "name": "Cameron"}]}
  ],
  "files": [
    {"path": "src", "type": "directory", "name": "src"},
    {"path": "src/package.json", "type": "file", "name": "package.json",
     "programming_language": "", "detected_license_expression": "wtfpl",
     "holders": [{"holder": "Cameron"}, {"holder": "Cameron"}, {"holder": "Azer"}],
     "package_data": [{"type": "npm", "name": "left-pad", "version": "1.3.0",
       "primary_language": "JavaScript", "homepage_url": "https://example.com/left-pad"}]},
    {"path": "src/vendor.txt", "type": "file", "name": "vendor.txt",
     "package_data": [
       {"type": "pypi", "name": "six", "version": "1.16.0"},
       {"type": "pypi", "name": "idna", "version": "3.4"}
     ]}
  ]
}`

const scanCodeLegacyDoc = `{
  "scancode_version": "3.2.3",
  "files": [
    {"path": "a/setup.py", "type": "file", "name": "setup.py",
     "license_expressions": ["mit", "LicenseRef-scancode-public-domain"],
     "holders": [{"value": "Acme"}],
     "packages": [{"type": "pypi", "name": "acme-tools", "version": "2.0", "license_expression": "mit"}]},
    {"path": "b/setup.py", "type": "file", "name": "setup.py",
     "packages": [{"type": "pypi", "name": "acme-tools", "version": "2.0", "license_expression": "mit"}]}
  ]
}`

func TestParseBytesScanCode(t *testing.T) {
	comps, info, err := ParseBytes([]byte(scanCodeReportDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.SourceName != "scancode-toolkit 32.0.8" {
		t.Errorf("unexpected info: %+v", info)
	}
	if len(comps) != 1 {
		t.Fatalf("expected the top-level package only, got %d components", len(comps))
	}
	row := ToTable(comps).Rows[0]
	want := map[string]string{
		ColumnName:              "left-pad",
		ColumnPackageType:       "npm",
		ColumnPURL:              "pkg:npm/left-pad@1.3.0",
		ColumnLicenseExpression: "wtfpl",
		ColumnSupplier:          "Cameron",
		ColumnID:                "pkg:npm/left-pad",
	}
	for col, v := range want {
		if got := row.Value(col); got != v {
			t.Errorf("%s: expected %q, got %q", col, v, got)
		}
	}

	t.Run("per-file packages", func(t *testing.T) {
		comps, _, err := ParseBytes([]byte(scanCodeLegacyDoc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(comps) != 1 {
			t.Fatalf("expected the repeated package once, got %d", len(comps))
		}
		if comps[0].PURL != "pkg:pypi/acme-tools@2.0" || LicenseExpression(comps[0].Licenses) != "mit" {
			t.Errorf("unexpected component %+v", comps[0])
		}
	})

	t.Run("not a scan", func(t *testing.T) {
		if IsScanCode([]byte(`{"files": []}`)) || IsScanCode([]byte(syftDoc)) {
			t.Error("expected documents without a ScanCode header to be rejected")
		}
	})
}

func TestScanCodeInventory(t *testing.T) {
	tbl, err := ScanCodeInventory([]byte(scanCodeReportDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got [][]string
	for _, row := range tbl.Rows {
		got = append(got, row.Project([]string{
			ColumnResourcePath, ColumnItemType, ColumnPackageName, ColumnInventoryPURL,
			ColumnDetectedLicense, ColumnDetectedCopyright, ColumnLanguage,
		}))
	}
	want := [][]string{
		{"src", "D", "", "", "", "", ""},
		{"src/package.json", "F", "left-pad", "pkg:npm/left-pad@1.3.0", "wtfpl", "Cameron\nAzer", "JavaScript"},
		{"src/vendor.txt", "F", "", "", "", "", ""},
		{"src/vendor.txt", "", "six", "pkg:pypi/six@1.16.0", "", "", ""},
		{"src/vendor.txt", "", "idna", "pkg:pypi/idna@3.4", "", "", ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("inventory mismatch (-want +got):\n%s", diff)
	}

	legacy, err := ScanCodeInventory([]byte(scanCodeLegacyDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := legacy.Rows[0].Value(ColumnDetectedLicense); got != "mit\nLicenseRef-scancode-public-domain" {
		t.Errorf("unexpected detected license %q", got)
	}
	if got := legacy.Rows[0].Value(ColumnDetectedCopyright); got != "Acme" {
		t.Errorf("unexpected holders %q", got)
	}

	if _, err := ScanCodeInventory([]byte(cycloneDXDoc)); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
