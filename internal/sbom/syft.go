package sbom

import (
	"encoding/json"
)

// ParseSyft parses Syft format SBOM data
func ParseSyft(data []byte) ([]Component, Info, error) {
	var doc struct {
		Artifacts []json.RawMessage `json:"artifacts"`
		Distro    struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"distro"`
		Source struct {
			Type     string `json:"type"`
			Metadata struct {
				UserInput string `json:"userInput"`
			} `json:"metadata"`
		} `json:"source"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, Info{}, err
	}

	info := Info{
		OSName:     doc.Distro.Name,
		OSVersion:  doc.Distro.Version,
		SourceType: doc.Source.Type,
		SourceName: doc.Source.Metadata.UserInput,
	}

	var comps []Component
	for _, rawArtifact := range doc.Artifacts {
		var a struct {
			Name     string `json:"name"`
			Version  string `json:"version"`
			Type     string `json:"type"`
			PURL     string `json:"purl"`
			Licenses []struct {
				Value    string `json:"value"`
				SPDXExpr string `json:"spdxExpression"`
			} `json:"licenses"`
			CPEs []struct {
				CPE string `json:"cpe"`
			} `json:"cpes"`
		}
		if err := json.Unmarshal(rawArtifact, &a); err != nil {
			continue // Skip malformed artifacts
		}

		comp := Component{
			Name:    a.Name,
			Version: a.Version,
			PURL:    a.PURL,
			Type:    a.Type,
		}
		for _, lic := range a.Licenses {
			switch {
			case lic.SPDXExpr != "":
				comp.Licenses = append(comp.Licenses, lic.SPDXExpr)
			case lic.Value != "":
				comp.Licenses = append(comp.Licenses, lic.Value)
			}
		}
		for _, cpe := range a.CPEs {
			if cpe.CPE != "" {
				comp.CPEs = append(comp.CPEs, cpe.CPE)
			}
		}
		comp.ID = ComputeID(comp)
		comps = append(comps, comp)
	}
	return comps, info, nil
}
