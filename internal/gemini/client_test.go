package gemini

import (
	"reflect"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{}\n```", "{}"},
		{"  {\"b\":2} ", `{"b":2}`},
	}
	for _, tt := range tests {
		if got := cleanJSON(tt.in); got != tt.want {
			t.Errorf("cleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseExpansion(t *testing.T) {
	got, err := parseExpansion("```json\n" + `{
		"keywords": ["backend", " ", "api", "server", "services", "cloud", "extra"],
		"skills": ["go"],
		"job_titles": []
	}` + "\n```")
	if err != nil {
		t.Fatalf("parseExpansion error: %v", err)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"backend", "api", "server", "services", "cloud"}) {
		t.Errorf("Keywords = %v", got.Keywords)
	}
	if !reflect.DeepEqual(got.Skills, []string{"go"}) {
		t.Errorf("Skills = %v", got.Skills)
	}
	if len(got.JobTitles) != 0 {
		t.Errorf("JobTitles = %v, want empty", got.JobTitles)
	}
}

func TestParseExpansion_Invalid(t *testing.T) {
	if _, err := parseExpansion("not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestExtractText(t *testing.T) {
	parts := []genai.Part{genai.Text(`{"keywords":`), genai.Blob{MIMEType: "image/png"}, genai.Text(`[]}`)}
	if got := extractText(parts); got != `{"keywords":[]}` {
		t.Errorf("extractText = %q", got)
	}
}
