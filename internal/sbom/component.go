package sbom

// Info holds metadata about the scanned subject (OS, distro, source type)
type Info struct {
	OSName     string `json:"os_name,omitempty"`
	OSVersion  string `json:"os_version,omitempty"`
	SourceType string `json:"source_type,omitempty"` // e.g., "image", "directory", "file"
	SourceName string `json:"source_name,omitempty"` // e.g., "alpine:latest", "/path/to/dir"
}

// Component represents a normalized package from any scanner output
type Component struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	PURL      string   `json:"purl,omitempty"`
	Licenses  []string `json:"licenses,omitempty"`
	CPEs      []string `json:"cpes,omitempty"`
	BOMRef    string   `json:"bom-ref,omitempty"`
	SPDXID    string   `json:"spdxid,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Supplier  string   `json:"supplier,omitempty"`
	Type      string   `json:"type,omitempty"` // Package type reported by the scanner (npm, deb, library...)
}

// ComputeID computes the canonical ID for this component
func (c *Component) ComputeID() string {
	return ComputeID(*c)
}
