package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"angle brackets", "a < b > c", "a &lt; b &gt; c"},
		{"quotes", `it's "fine"`, "it&#39;s &quot;fine&quot;"},
		{"script tag", "<script>alert('xss')</script>", "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;"},
		{"newline kept", "a\nb", "a\nb"},
		{"unicode", "héllo → 世界", "héllo → 世界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeHTML(tt.input); got != tt.expected {
				t.Errorf("escapeHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain url", "/resources/primefaces/theme.css", "/resources/primefaces/theme.css"},
		{"query string", "/r/theme.css?ln=primefaces&v=1", "/r/theme.css?ln=primefaces&amp;v=1"},
		{"breakout attempt", `x" onload="alert(1)`, "x&quot; onload=&quot;alert(1)"},
		{"whitespace", "a\nb\rc\td", "a&#10;b&#13;c&#9;d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeAttr(tt.input); got != tt.expected {
				t.Errorf("escapeAttr(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func BenchmarkEscapeAttr(b *testing.B) {
	s := "/resources/primefaces-saga-blue/theme.css?ln=primefaces&v=14.0.0"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = escapeAttr(s)
	}
}
