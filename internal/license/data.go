package license

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Data is the metadata of one license key as served by license
// catalog APIs.
type Data struct {
	Key                    string `json:"key"`
	ShortName              string `json:"short_name"`
	Category               string `json:"category"`
	IsException            bool   `json:"is_exception"`
	AttributionRequired    bool   `json:"attribution_required"`
	RedistributionRequired bool   `json:"redistribution_required"`
	SPDXKey                string `json:"spdx_license_key"`
}

// Catalog maps license keys to their metadata.
type Catalog map[string]Data

// Keys returns the catalog keys in sorted order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadData reads a catalog from a JSON file.
func LoadData(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading license data: %w", err)
	}
	c, err := ParseData(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseData decodes either a list of license objects or an object keyed
// by license key. Map entries without a "key" field take the map key.
func ParseData(b []byte) (Catalog, error) {
	var list []Data
	if err := json.Unmarshal(b, &list); err == nil {
		c := make(Catalog, len(list))
		for _, d := range list {
			if d.Key == "" {
				return nil, fmt.Errorf("license entry without key: %+v", d)
			}
			c[d.Key] = d
		}
		return c, nil
	}

	var byKey map[string]Data
	if err := json.Unmarshal(b, &byKey); err != nil {
		return nil, fmt.Errorf("parsing license data: %w", err)
	}
	c := make(Catalog, len(byKey))
	for k, d := range byKey {
		if d.Key == "" {
			d.Key = k
		}
		c[k] = d
	}
	return c, nil
}
