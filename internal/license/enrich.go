package license

import (
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/sirupsen/logrus"

	"github.com/rezmoss/sctk/internal/expression"
)

const (
	commercialKey  = "commercial-license"
	proprietaryKey = "proprietary-license"

	// Marked is the value of the attribution and redistribution fields
	// when any license of the expression requires it.
	Marked = "x"
)

// Result holds the rendered enrichment fields of one expression.
type Result struct {
	Category       string `json:"category"`
	ShortName      string `json:"short_name"`
	Attribution    string `json:"attribution"`
	Redistribution string `json:"redistribution"`
	SPDX           string `json:"spdx"`
}

// Enricher renders license expressions against a catalog.
type Enricher struct {
	Data Catalog
	Log  logrus.FieldLogger
}

// NewEnricher returns an Enricher logging to log, or to the standard
// logrus logger when log is nil.
func NewEnricher(data Catalog, log logrus.FieldLogger) *Enricher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Enricher{Data: data, Log: log}
}

func (e *Enricher) logger() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

// Generate renders the category, short name, attribution, redistribution
// and SPDX identifier of expr. The returned expressions keep the shape of
// the deduplicated input. WITH exceptions replace their license in the
// category and attribution fields.
//
// Unparseable expressions and keys missing from the catalog produce an
// empty Result and a warning.
func (e *Enricher) Generate(expr, owner string) Result {
	if strings.TrimSpace(expr) == "" {
		return Result{}
	}
	log := e.logger().WithField("expression", expr)

	parsed, err := expression.Parse(expr)
	if err != nil {
		log.WithError(err).Warn("failed to parse license expression")
		return Result{}
	}
	tree := parsed.Dedup()

	for _, key := range tree.Keys() {
		if _, ok := e.Data[key]; !ok {
			log.WithField("key", key).Warn("license key not found in license data")
			return Result{}
		}
	}

	promoted := tree.PromoteExceptions()
	res := Result{
		Category: promoted.Render(func(k string) string { return e.Data[k].Category }),
		ShortName: tree.Render(func(k string) string {
			return shortName(k, e.Data[k], owner)
		}),
		SPDX: tree.Render(func(k string) string { return e.Data[k].SPDXKey }),
	}
	if e.anyRequired(promoted, func(d Data) bool { return d.AttributionRequired }) {
		res.Attribution = Marked
	}
	if e.anyRequired(tree, func(d Data) bool { return d.RedistributionRequired }) {
		res.Redistribution = Marked
	}

	e.checkSPDX(log, tree)
	return res
}

func shortName(key string, d Data, owner string) string {
	switch key {
	case commercialKey:
		return owner + " Commercial"
	case proprietaryKey:
		return owner + " Proprietary"
	}
	return d.ShortName
}

func (e *Enricher) anyRequired(tree *expression.Expr, required func(Data) bool) bool {
	for _, k := range tree.Keys() {
		if required(e.Data[k]) {
			return true
		}
	}
	return false
}

// checkSPDX warns when a rendered SPDX identifier is missing or not on
// the SPDX license list.
func (e *Enricher) checkSPDX(log logrus.FieldLogger, tree *expression.Expr) {
	var ids []string
	for _, k := range tree.Keys() {
		id := e.Data[k].SPDXKey
		if id == "" {
			log.WithField("key", k).Debug("license has no SPDX identifier")
			continue
		}
		if e.Data[k].IsException || strings.HasPrefix(id, "LicenseRef-") {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return
	}
	if valid, bad := spdxexp.ValidateLicenses(ids); !valid {
		log.WithField("identifiers", bad).Warn("unknown SPDX license identifiers")
	}
}
