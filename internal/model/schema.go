package model

// KnownSchemaTypes are the schema.org type names the analyzer classifies
// individually. Any other type name is bucketed under SchemaTypeOther.
var KnownSchemaTypes = []string{
	"Organization",
	"LocalBusiness",
	"MedicalBusiness",
	"HealthAndBeautyBusiness",
	"Service",
	"Article",
	"BlogPosting",
	"WebPage",
	"FAQPage",
	"BreadcrumbList",
}

// SchemaTypeOther is the catch-all bucket for unrecognized schema types.
const SchemaTypeOther = "other"

// SchemaCatalog aggregates structured data findings across the whole crawl.
// One catalog exists per crawl session; analyzers update it as pages are
// processed.
type SchemaCatalog struct {
	// SchemaTypes maps each known schema type name (plus "other") to the
	// URLs exhibiting it. A URL appears once per schema declaration.
	SchemaTypes map[string][]string `json:"schema_types"`

	// ImplementationMethods tracks usage per encoding style
	// (json_ld, microdata, rdfa).
	ImplementationMethods map[string]*MethodStats `json:"implementation_methods"`

	// PageCoverage tracks how many crawled pages declare any schema at all.
	PageCoverage PageCoverage `json:"page_coverage"`
}

// MethodStats are the per-encoding-style counters of a SchemaCatalog.
type MethodStats struct {
	// Count is the number of pages using this style.
	Count int `json:"count"`

	// Valid lists URLs whose declarations in this style parsed cleanly.
	Valid []string `json:"valid"`

	// Invalid lists URLs with at least one malformed declaration.
	Invalid []string `json:"invalid"`

	// Errors lists the parser error strings collected for this style.
	Errors []string `json:"errors"`
}

// PageCoverage counts schema adoption across crawled pages.
// Counters increment exactly once per page regardless of how many schema
// declarations the page contains.
type PageCoverage struct {
	// TotalPages is the number of pages analyzed for structured data.
	TotalPages int `json:"total_pages"`

	// PagesWithSchema is the number of pages with at least one declaration.
	PagesWithSchema int `json:"pages_with_schema"`

	// PagesWithoutSchema lists the URLs of pages with no structured data.
	PagesWithoutSchema []string `json:"pages_without_schema"`
}

// NewSchemaCatalog returns a catalog with every known type and encoding style
// pre-registered, so report output always contains the full key set even for
// sites with no structured data.
func NewSchemaCatalog() *SchemaCatalog {
	types := make(map[string][]string, len(KnownSchemaTypes)+1)
	for _, t := range KnownSchemaTypes {
		types[t] = []string{}
	}
	types[SchemaTypeOther] = []string{}

	methods := make(map[string]*MethodStats, 3)
	for _, m := range []string{MethodJSONLD, MethodMicrodata, MethodRDFa} {
		methods[m] = &MethodStats{
			Valid:   []string{},
			Invalid: []string{},
			Errors:  []string{},
		}
	}

	return &SchemaCatalog{
		SchemaTypes:           types,
		ImplementationMethods: methods,
		PageCoverage: PageCoverage{
			PagesWithoutSchema: []string{},
		},
	}
}

// RecordType files url under the given schema type, falling back to the
// "other" bucket for unrecognized type names. Returns the bucket used.
func (c *SchemaCatalog) RecordType(typeName, url string) string {
	bucket := SchemaTypeOther
	if _, ok := c.SchemaTypes[typeName]; ok && typeName != SchemaTypeOther {
		bucket = typeName
	}
	c.SchemaTypes[bucket] = append(c.SchemaTypes[bucket], url)
	return bucket
}
