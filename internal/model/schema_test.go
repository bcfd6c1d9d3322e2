package model

import "testing"

// TestNewSchemaCatalog verifies the catalog starts with the full key set.
func TestNewSchemaCatalog(t *testing.T) {
	t.Parallel()

	c := NewSchemaCatalog()

	for _, typ := range KnownSchemaTypes {
		if _, ok := c.SchemaTypes[typ]; !ok {
			t.Errorf("expected schema type %q to be pre-registered", typ)
		}
	}
	if _, ok := c.SchemaTypes[SchemaTypeOther]; !ok {
		t.Error("expected 'other' bucket to be pre-registered")
	}

	for _, m := range []string{MethodJSONLD, MethodMicrodata, MethodRDFa} {
		stats, ok := c.ImplementationMethods[m]
		if !ok {
			t.Fatalf("expected implementation method %q to be pre-registered", m)
		}
		if stats.Count != 0 || len(stats.Valid) != 0 || len(stats.Invalid) != 0 {
			t.Errorf("expected zeroed stats for %q, got %+v", m, stats)
		}
	}
}

// TestSchemaCatalogRecordType verifies known types are filed under their own
// name and unknown types fall into the "other" bucket.
func TestSchemaCatalogRecordType(t *testing.T) {
	t.Parallel()

	t.Run("known type", func(t *testing.T) {
		t.Parallel()

		c := NewSchemaCatalog()
		bucket := c.RecordType("Organization", "http://a.test/")
		if bucket != "Organization" {
			t.Errorf("expected bucket Organization, got %q", bucket)
		}
		if got := c.SchemaTypes["Organization"]; len(got) != 1 || got[0] != "http://a.test/" {
			t.Errorf("unexpected Organization bucket contents: %v", got)
		}
	})

	t.Run("unknown type goes to other", func(t *testing.T) {
		t.Parallel()

		c := NewSchemaCatalog()
		bucket := c.RecordType("Recipe", "http://a.test/r")
		if bucket != SchemaTypeOther {
			t.Errorf("expected bucket other, got %q", bucket)
		}
		if got := c.SchemaTypes[SchemaTypeOther]; len(got) != 1 || got[0] != "http://a.test/r" {
			t.Errorf("unexpected other bucket contents: %v", got)
		}
	})

	t.Run("literal other stays in other", func(t *testing.T) {
		t.Parallel()

		c := NewSchemaCatalog()
		if bucket := c.RecordType("other", "http://a.test/o"); bucket != SchemaTypeOther {
			t.Errorf("expected bucket other, got %q", bucket)
		}
	})
}
