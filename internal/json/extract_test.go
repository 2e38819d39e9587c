package json

import "testing"

type summaryPayload struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

func TestExtractPureJSON(t *testing.T) {
	input := `{"summary": "short", "keyPoints": ["a", "b"]}`
	result, err := ExtractJSONFromResponse[summaryPayload](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "short" || len(result.KeyPoints) != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExtractMarkdownFenced(t *testing.T) {
	input := "```json\n{\"summary\": \"fenced\", \"keyPoints\": []}\n```"
	result, err := ExtractJSONFromResponse[summaryPayload](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "fenced" {
		t.Errorf("expected 'fenced', got %q", result.Summary)
	}
}

func TestExtractEmbeddedObject(t *testing.T) {
	input := `Here is the result you asked for: {"summary": "embedded", "keyPoints": ["x"]} hope it helps`
	result, err := ExtractJSONFromResponse[summaryPayload](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "embedded" {
		t.Errorf("expected 'embedded', got %q", result.Summary)
	}
}

func TestExtractTopLevelArray(t *testing.T) {
	input := "```json\n[{\"term\": \"goroutine\"}, {\"term\": \"channel\"}]\n```"
	result, err := ExtractJSONFromResponse[[]map[string]string](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 || result[0]["term"] != "goroutine" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExtractEmbeddedArray(t *testing.T) {
	input := `The terms are: [{"term": "mutex"}] as requested.`
	result, err := ExtractJSONFromResponse[[]map[string]string](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0]["term"] != "mutex" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExtractObjectBeforeBrackets(t *testing.T) {
	input := `{"summary": "first", "keyPoints": []} see [1] for details`
	result, err := ExtractJSONFromResponse[summaryPayload](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "first" {
		t.Errorf("expected 'first', got %q", result.Summary)
	}
}

func TestExtractNoJSON(t *testing.T) {
	_, err := ExtractJSONFromResponse[summaryPayload]("sorry, I cannot help with that")
	if err == nil {
		t.Error("expected error for response without JSON")
	}
}

func TestExtractMismatchedType(t *testing.T) {
	_, err := ExtractJSONFromResponse[[]string](`{"not": "an array of strings"}`)
	if err == nil {
		t.Error("expected error for type mismatch")
	}
}
