package sbom

import (
	"strings"

	"github.com/package-url/packageurl-go"

	"github.com/rezmoss/sctk/internal/expression"
	"github.com/rezmoss/sctk/internal/table"
)

// BOM columns written by ToTable.
const (
	ColumnName              = "Name"
	ColumnVersion           = "Version"
	ColumnPackageType       = "Package Type"
	ColumnNamespace         = "Namespace"
	ColumnPURL              = "PURL"
	ColumnLicenseExpression = "License Expression"
	ColumnSupplier          = "Supplier"
	ColumnID                = "ID"
)

// BOMHeaders is the column order of ToTable.
var BOMHeaders = []string{
	ColumnName,
	ColumnVersion,
	ColumnPackageType,
	ColumnNamespace,
	ColumnPURL,
	ColumnLicenseExpression,
	ColumnSupplier,
	ColumnID,
}

// ToTable renders components as BOM rows. Package type and namespace are
// taken from the PURL when it parses.
func ToTable(comps []Component) *table.Table {
	out := table.New(BOMHeaders...)
	for _, c := range comps {
		pkgType, namespace := c.Type, c.Namespace
		if c.PURL != "" {
			if p, err := packageurl.FromString(c.PURL); err == nil {
				pkgType = p.Type
				if p.Namespace != "" {
					namespace = p.Namespace
				}
			}
		}
		out.Append(table.NewRow(
			ColumnName, c.Name,
			ColumnVersion, c.Version,
			ColumnPackageType, pkgType,
			ColumnNamespace, namespace,
			ColumnPURL, c.PURL,
			ColumnLicenseExpression, LicenseExpression(c.Licenses),
			ColumnSupplier, c.Supplier,
			ColumnID, c.ID,
		))
	}
	return out
}

// LicenseExpression joins licenses with AND and simplifies the result.
// Compound entries are parenthesized first. When the joined expression
// does not simplify it is returned as is.
func LicenseExpression(licenses []string) string {
	parts := make([]string, 0, len(licenses))
	for _, lic := range licenses {
		if strings.Contains(lic, " "+expression.And+" ") || strings.Contains(lic, " "+expression.Or+" ") {
			lic = expression.LParen + lic + expression.RParen
		}
		parts = append(parts, lic)
	}
	joined := strings.Join(parts, " "+expression.And+" ")
	simplified, err := expression.Simplify(joined)
	if err != nil {
		return joined
	}
	return simplified
}
