package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/siteaudit/siteaudit/internal/model"
)

// schemaDetector recognizes one structured data encoding style.
// Detectors run in priority order; the first one that finds any
// declarations claims the page.
type schemaDetector interface {
	// Method is the encoding style name filed in the catalog.
	Method() string

	// Detect inspects the document and, when the page uses this style,
	// records per-page findings into sd and site-wide counters into the
	// analyzer's catalog. Reports whether the style was present.
	Detect(a *Analyzer, doc *goquery.Document, pageURL string, sd *model.StructuredData) bool
}

// AnalyzeStructuredData classifies the structured data on a page. A page
// is assumed to use a single encoding style; detection stops at the
// first style that matches. Coverage counters move exactly once per page.
func (a *Analyzer) AnalyzeStructuredData(doc *goquery.Document, pageURL string) *model.StructuredData {
	sd := &model.StructuredData{
		SchemaTypes:      []string{},
		ValidationStatus: model.ValidationValid,
	}

	for _, d := range a.detectors {
		if d.Detect(a, doc, pageURL, sd) {
			sd.ImplementationMethod = d.Method()
			break
		}
	}

	coverage := &a.report.Schema.PageCoverage
	coverage.TotalPages++
	if len(sd.SchemaTypes) > 0 {
		coverage.PagesWithSchema++
	} else {
		coverage.PagesWithoutSchema = append(coverage.PagesWithoutSchema, pageURL)
	}
	return sd
}

// recordFinding files one schema type under both the page record and the
// site-wide catalog.
func (a *Analyzer) recordFinding(sd *model.StructuredData, typeName, pageURL string) {
	a.report.Schema.RecordType(typeName, pageURL)
	sd.SchemaTypes = append(sd.SchemaTypes, typeName)
}

// jsonLDDetector parses <script type="application/ld+json"> blocks.
// A top-level array is classified per element.
type jsonLDDetector struct{}

func (jsonLDDetector) Method() string { return model.MethodJSONLD }

func (jsonLDDetector) Detect(a *Analyzer, doc *goquery.Document, pageURL string, sd *model.StructuredData) bool {
	scripts := doc.Find(`script[type="application/ld+json"]`)
	if scripts.Length() == 0 {
		return false
	}
	stats := a.report.Schema.ImplementationMethods[model.MethodJSONLD]
	stats.Count++

	scripts.Each(func(_ int, s *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			sd.ValidationStatus = model.ValidationInvalid
			sd.Errors = append(sd.Errors, fmt.Sprintf("Invalid JSON-LD: %v", err))
			stats.Invalid = append(stats.Invalid, pageURL)
			stats.Errors = append(stats.Errors, err.Error())
			return
		}

		switch v := payload.(type) {
		case []any:
			for _, item := range v {
				a.recordFinding(sd, schemaTypeOf(item), pageURL)
			}
		default:
			a.recordFinding(sd, schemaTypeOf(v), pageURL)
		}
		stats.Valid = append(stats.Valid, pageURL)
	})
	return true
}

// schemaTypeOf extracts the @type of a decoded JSON-LD value. Missing or
// non-string types yield the empty string, which lands in the "other"
// bucket.
func schemaTypeOf(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	t, _ := obj["@type"].(string)
	return t
}

// microdataDetector looks for elements carrying an itemtype attribute.
// The type name is the last path segment of the itemtype URL.
type microdataDetector struct{}

func (microdataDetector) Method() string { return model.MethodMicrodata }

func (microdataDetector) Detect(a *Analyzer, doc *goquery.Document, pageURL string, sd *model.StructuredData) bool {
	return detectAttrSchema(a, doc, pageURL, sd, "itemtype", model.MethodMicrodata)
}

// rdfaDetector looks for elements carrying a vocab attribute.
type rdfaDetector struct{}

func (rdfaDetector) Method() string { return model.MethodRDFa }

func (rdfaDetector) Detect(a *Analyzer, doc *goquery.Document, pageURL string, sd *model.StructuredData) bool {
	return detectAttrSchema(a, doc, pageURL, sd, "vocab", model.MethodRDFa)
}

// detectAttrSchema implements the shared attribute-based detection used
// by microdata and RDFa: every element carrying the attribute yields one
// type name, taken from the last slash-separated segment of its value.
func detectAttrSchema(a *Analyzer, doc *goquery.Document, pageURL string, sd *model.StructuredData, attr, method string) bool {
	items := doc.Find("[" + attr + "]")
	if items.Length() == 0 {
		return false
	}
	stats := a.report.Schema.ImplementationMethods[method]
	stats.Count++

	items.Each(func(_ int, s *goquery.Selection) {
		value := strings.TrimRight(s.AttrOr(attr, ""), "/")
		typeName := value
		if i := strings.LastIndex(value, "/"); i >= 0 {
			typeName = value[i+1:]
		}
		a.recordFinding(sd, typeName, pageURL)
		stats.Valid = append(stats.Valid, pageURL)
	})
	return true
}
