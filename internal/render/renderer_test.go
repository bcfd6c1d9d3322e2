package render

import "testing"

func TestSplitCookie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantName  string
		wantValue string
	}{
		{name: "pair", raw: "session=abc123", wantName: "session", wantValue: "abc123"},
		{name: "value with equals", raw: "token=a=b", wantName: "token", wantValue: "a=b"},
		{name: "bare value", raw: "abc123", wantName: "cookie", wantValue: "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, value := splitCookie(tt.raw)
			if name != tt.wantName || value != tt.wantValue {
				t.Errorf("splitCookie(%q) = (%q, %q), want (%q, %q)",
					tt.raw, name, value, tt.wantName, tt.wantValue)
			}
		})
	}
}

// Ensure RodFetcher satisfies the crawl-facing interface.
var _ Fetcher = (*RodFetcher)(nil)
