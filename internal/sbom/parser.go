package sbom

import (
	"errors"
	"os"
	"strings"
)

// ErrUnknownFormat is returned for documents that are not CycloneDX, SPDX,
// Syft or ScanCode JSON.
var ErrUnknownFormat = errors.New("unknown SBOM format")

// ParseFile reads a scanner output file and returns normalized components
func ParseFile(path string) ([]Component, Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, err
	}
	return ParseBytes(data)
}

// ParseBytes detects the document format and returns normalized components
func ParseBytes(data []byte) ([]Component, Info, error) {
	var (
		comps []Component
		info  Info
		err   error
	)
	switch {
	case IsScanCode(data):
		comps, info, err = ParseScanCode(data)
	case IsCycloneDX(data):
		comps, info, err = ParseCycloneDX(data)
	case IsSPDX(data):
		comps, err = ParseSPDX(data)
	case IsSyft(data):
		comps, info, err = ParseSyft(data)
	default:
		return nil, Info{}, ErrUnknownFormat
	}
	if err != nil {
		return nil, Info{}, err
	}
	return NormalizeComponents(comps), info, nil
}

// IsSyft returns true if data looks like Syft JSON format
func IsSyft(data []byte) bool {
	return strings.Contains(string(data), "\"artifacts\"")
}

// IsCycloneDX returns true if data looks like CycloneDX JSON format
func IsCycloneDX(data []byte) bool {
	return strings.Contains(string(data), "\"bomFormat\"") ||
		(strings.Contains(string(data), "\"$schema\"") && strings.Contains(string(data), "cyclonedx"))
}

// IsSPDX returns true if data looks like SPDX JSON format
func IsSPDX(data []byte) bool {
	return strings.Contains(string(data), "\"spdxVersion\"") || strings.Contains(string(data), "\"SPDXID\"")
}
