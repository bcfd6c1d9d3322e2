package linkgraph

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		base   string
		href   string
		want   string
		wantOK bool
	}{
		{name: "relative path", base: "https://example.com/a/", href: "b", want: "https://example.com/a/b", wantOK: true},
		{name: "root relative", base: "https://example.com/a", href: "/c", want: "https://example.com/c", wantOK: true},
		{name: "absolute", base: "https://example.com/", href: "https://other.com/x", want: "https://other.com/x", wantOK: true},
		{name: "mailto", base: "https://example.com/", href: "mailto:hi@example.com", wantOK: false},
		{name: "tel", base: "https://example.com/", href: "tel:+123", wantOK: false},
		{name: "javascript", base: "https://example.com/", href: "javascript:void(0)", wantOK: false},
		{name: "data", base: "https://example.com/", href: "data:text/plain,x", wantOK: false},
		{name: "fragment only", base: "https://example.com/a", href: "#top", want: "https://example.com/a#top", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Resolve(tt.base, tt.href)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q, %q) ok = %v, want %v", tt.base, tt.href, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
			}
		})
	}
}

func TestInScope(t *testing.T) {
	t.Parallel()

	g := New("https://example.com/")

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/page", true},
		{"https://www.example.com/page", true},
		{"https://other.com/page", false},
		{"https://sub.example.com/page", false},
	}
	for _, tt := range tests {
		if got := g.InScope(tt.url); got != tt.want {
			t.Errorf("InScope(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestDepthAssignment(t *testing.T) {
	t.Parallel()

	seed := "https://example.com/"
	g := New(seed)

	g.Record(seed, "https://example.com/a")
	g.Record(seed, "https://example.com/b")
	g.Record("https://example.com/a", "https://example.com/c")
	// A later, shorter path must not change c's depth.
	g.Record(seed, "https://example.com/c")

	if d := g.Depth(seed); d != 0 {
		t.Errorf("seed depth = %d, want 0", d)
	}
	if d := g.Depth("https://example.com/a"); d != 1 {
		t.Errorf("depth(a) = %d, want 1", d)
	}
	if d := g.Depth("https://example.com/c"); d != 2 {
		t.Errorf("depth(c) = %d, want 2 (first discovery wins)", d)
	}
	if d := g.Depth("https://example.com/unknown"); d != -1 {
		t.Errorf("depth(unknown) = %d, want -1", d)
	}
}

func TestMetricsAndOrphans(t *testing.T) {
	t.Parallel()

	seed := "https://example.com/"
	g := New(seed)

	g.Record(seed, "https://example.com/a")
	g.Record(seed, "https://example.com/b")
	g.Record("https://example.com/a", seed)
	g.Touch("https://example.com/b")
	// Duplicate links collapse.
	g.Record(seed, "https://example.com/a")

	m := g.Metrics(seed)
	if m.OutboundLinks != 2 || m.InboundLinks != 1 || m.Depth != 0 {
		t.Errorf("seed metrics = %+v", m)
	}
	m = g.Metrics("https://example.com/b")
	if m.OutboundLinks != 0 || m.InboundLinks != 1 || m.Depth != 1 {
		t.Errorf("b metrics = %+v", m)
	}

	// Only tracked pages can be orphans; a and b have inbound links,
	// and the seed gained one from a.
	if orphans := g.Orphans(); len(orphans) != 0 {
		t.Errorf("orphans = %v, want none", orphans)
	}

	g.Touch("https://example.com/island")
	if orphans := g.Orphans(); !reflect.DeepEqual(orphans, []string{"https://example.com/island"}) {
		t.Errorf("orphans = %v", orphans)
	}

	summary := g.Summary()
	if summary.TotalPages != 4 || summary.TotalInternalLinks != 3 || summary.OrphanPagesCount != 1 {
		t.Errorf("summary = %+v", summary)
	}

	dist := g.DepthDistribution()
	if dist[0] != 1 || dist[1] != 2 {
		t.Errorf("depth distribution = %v", dist)
	}
}
