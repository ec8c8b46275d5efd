package sbom

import (
	"encoding/json"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// ParseCycloneDX parses CycloneDX format SBOM data and extracts metadata
func ParseCycloneDX(data []byte) ([]Component, Info, error) {
	var bom cdx.BOM
	if err := json.Unmarshal(data, &bom); err != nil {
		return nil, Info{}, err
	}

	info := Info{}
	if bom.Metadata != nil {
		// Main component (the subject of the SBOM)
		if mc := bom.Metadata.Component; mc != nil {
			switch mc.Type {
			case cdx.ComponentTypeOS, cdx.ComponentTypeContainer:
				info.OSName = mc.Name
				info.OSVersion = mc.Version
				info.SourceType = string(mc.Type)
			case cdx.ComponentTypeApplication, cdx.ComponentTypeFile:
				info.SourceName = mc.Name
				info.SourceType = string(mc.Type)
			}
		}
		if bom.Metadata.Properties != nil {
			for _, prop := range *bom.Metadata.Properties {
				switch strings.ToLower(prop.Name) {
				case "syft:distro:name", "distro:name", "os:name":
					if info.OSName == "" {
						info.OSName = prop.Value
					}
				case "syft:distro:version", "distro:version", "os:version":
					if info.OSVersion == "" {
						info.OSVersion = prop.Value
					}
				case "syft:image:tag", "image:tag":
					if info.SourceName == "" {
						info.SourceName = prop.Value
					}
				}
			}
		}
	}

	var comps []Component
	if bom.Components == nil {
		return comps, info, nil
	}
	for _, c := range *bom.Components {
		comps = appendCycloneDX(comps, c)
	}
	return comps, info, nil
}

// appendCycloneDX adds c and its nested components to comps.
func appendCycloneDX(comps []Component, c cdx.Component) []Component {
	comp := Component{
		Name:      c.Name,
		Version:   c.Version,
		PURL:      c.PackageURL,
		BOMRef:    c.BOMRef,
		Namespace: c.Group,
		Type:      string(c.Type),
	}
	if c.CPE != "" {
		comp.CPEs = append(comp.CPEs, c.CPE)
	}
	if c.Licenses != nil {
		for _, lic := range *c.Licenses {
			switch {
			case lic.Expression != "":
				comp.Licenses = append(comp.Licenses, lic.Expression)
			case lic.License != nil && lic.License.ID != "":
				comp.Licenses = append(comp.Licenses, lic.License.ID)
			case lic.License != nil && lic.License.Name != "":
				comp.Licenses = append(comp.Licenses, lic.License.Name)
			}
		}
	}
	if c.Supplier != nil && c.Supplier.Name != "" {
		comp.Supplier = c.Supplier.Name
	}
	comp.ID = ComputeID(comp)
	comps = append(comps, comp)

	if c.Components != nil {
		for _, sub := range *c.Components {
			comps = appendCycloneDX(comps, sub)
		}
	}
	return comps
}
