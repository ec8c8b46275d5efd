package analysis

import (
	"sort"

	"github.com/rezmoss/sctk/internal/sbom"
)

// DuplicateGroup represents a group of components with the same ID
type DuplicateGroup struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Versions   []string         `json:"versions"`
	Components []sbom.Component `json:"components"`
}

// Collision represents an ambiguous identity match
type Collision struct {
	ID         string           `json:"id"`
	Reason     string           `json:"reason"`
	Components []sbom.Component `json:"components"`
}

func groupByID(comps []sbom.Component) map[string][]sbom.Component {
	groups := make(map[string][]sbom.Component)
	for _, c := range comps {
		groups[c.ID] = append(groups[c.ID], c)
	}
	return groups
}

// DetectDuplicates finds components reported more than once under the
// same ID, usually with different versions
func DetectDuplicates(comps []sbom.Component) []DuplicateGroup {
	var dups []DuplicateGroup
	for id, components := range groupByID(comps) {
		if len(components) < 2 {
			continue
		}
		versions := make([]string, 0, len(components))
		seen := make(map[string]bool)
		for _, c := range components {
			if !seen[c.Version] {
				versions = append(versions, c.Version)
				seen[c.Version] = true
			}
		}
		sort.Strings(versions)
		dups = append(dups, DuplicateGroup{
			ID:         id,
			Name:       components[0].Name,
			Versions:   versions,
			Components: components,
		})
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].ID < dups[j].ID })
	return dups
}

// DetectCollisions finds IDs shared by components with different names,
// which points at an ambiguous identity match
func DetectCollisions(comps []sbom.Component) []Collision {
	var collisions []Collision
	for id, components := range groupByID(comps) {
		names := make(map[string]bool)
		for _, c := range components {
			names[c.Name] = true
		}
		if len(names) > 1 {
			collisions = append(collisions, Collision{
				ID:         id,
				Reason:     "name_mismatch",
				Components: components,
			})
		}
	}
	sort.Slice(collisions, func(i, j int) bool {
		return collisions[i].ID < collisions[j].ID
	})
	return collisions
}
