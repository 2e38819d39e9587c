package browser

import (
	"strings"
	"testing"
)

func TestFlattenHTML(t *testing.T) {
	raw := `<html><head><title>My Page</title><style>body { color: red }</style></head>
<body><h1>Heading</h1><script>var x = 1;</script><p>Some   body
text.</p></body></html>`

	title, text, err := FlattenHTML(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "My Page" {
		t.Errorf("expected title 'My Page', got %q", title)
	}
	if text != "Heading Some body text." {
		t.Errorf("unexpected text: %q", text)
	}
	if strings.Contains(text, "var x") || strings.Contains(text, "color") {
		t.Errorf("script/style content leaked into text: %q", text)
	}
}

func TestFlattenHTMLNoTitle(t *testing.T) {
	title, text, err := FlattenHTML("<p>just text</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "" {
		t.Errorf("expected empty title, got %q", title)
	}
	if text != "just text" {
		t.Errorf("unexpected text: %q", text)
	}
}
