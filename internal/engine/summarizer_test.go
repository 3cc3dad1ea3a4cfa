package engine

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/harborcrm/recall/pkg/types"
)

func TestGenerateSummary_EmptyInputSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{response: "should never be returned"}
	summarizer := NewSummarizer(gen, 0, 0)

	summary, err := summarizer.GenerateSummary(context.Background(), nil, types.MemoryTypePreference, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "" {
		t.Errorf("expected empty summary for empty input, got %q", summary)
	}
	if gen.callCount() != 0 {
		t.Errorf("generator called %d times for empty input, want 0", gen.callCount())
	}
}

func TestGenerateSummary_BlankTextsSkipGenerator(t *testing.T) {
	gen := &fakeGenerator{response: "should never be returned"}
	summarizer := NewSummarizer(gen, 0, 0)

	summary, err := summarizer.GenerateSummary(context.Background(), []string{"", "   ", "\n"}, types.MemoryTypePreference, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "" {
		t.Errorf("expected empty summary for blank texts, got %q", summary)
	}
	if gen.callCount() != 0 {
		t.Errorf("generator called %d times for blank texts, want 0", gen.callCount())
	}
}

func TestGenerateSummary_Success(t *testing.T) {
	gen := &fakeGenerator{response: "  Customer prefers email follow-ups.  "}
	summarizer := NewSummarizer(gen, 0, 0)

	summary, err := summarizer.GenerateSummary(context.Background(), []string{"likes email", "dislikes calls"}, types.MemoryTypePreference, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "Customer prefers email follow-ups." {
		t.Errorf("expected trimmed summary, got %q", summary)
	}
	if gen.callCount() != 1 {
		t.Errorf("generator called %d times, want 1", gen.callCount())
	}

	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "likes email") || !strings.Contains(prompt, "dislikes calls") {
		t.Errorf("prompt missing source texts: %q", prompt)
	}
}

func TestGenerateSummary_DropsBlankTextsFromPrompt(t *testing.T) {
	gen := &fakeGenerator{response: "Summary."}
	summarizer := NewSummarizer(gen, 0, 0)

	_, err := summarizer.GenerateSummary(context.Background(), []string{"  real content  ", "", "   "}, types.MemoryTypePreference, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.callCount() != 1 {
		t.Fatalf("generator called %d times, want 1", gen.callCount())
	}

	prompt := gen.prompts[0]
	if !strings.Contains(prompt, "real content") {
		t.Errorf("prompt missing surviving text: %q", prompt)
	}
	if !strings.Contains(prompt, "1 CRM") {
		t.Errorf("prompt should count only non-blank texts: %q", prompt)
	}
	if strings.Contains(prompt, "2. ") {
		t.Errorf("blank texts should not be numbered into the prompt: %q", prompt)
	}
}

func TestGenerateSummary_GeneratorErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{err: errFakeLLM}
	summarizer := NewSummarizer(gen, 0, 0)

	summary, err := summarizer.GenerateSummary(context.Background(), []string{"some text"}, types.MemoryTypeFeedback, 500)
	if err == nil {
		t.Fatal("expected error from failing generator")
	}
	if summary != "" {
		t.Errorf("expected empty summary on error, got %q", summary)
	}
}

func TestGenerateSummary_EmptyResponseIsError(t *testing.T) {
	gen := &fakeGenerator{response: "   "}
	summarizer := NewSummarizer(gen, 0, 0)

	_, err := summarizer.GenerateSummary(context.Background(), []string{"some text"}, types.MemoryTypeFeedback, 500)
	if err == nil {
		t.Fatal("expected error for blank generator response")
	}
}

func TestGenerateSummary_TruncatesToMaxChars(t *testing.T) {
	gen := &fakeGenerator{response: strings.Repeat("x", 1000)}
	summarizer := NewSummarizer(gen, 0, 0)

	summary, err := summarizer.GenerateSummary(context.Background(), []string{"some text"}, types.MemoryTypeFeedback, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary) != 100 {
		t.Errorf("summary length = %d, want 100", len(summary))
	}
}

func TestGenerateSummary_TruncatesOnRuneBoundary(t *testing.T) {
	// 200 two-byte runes; a byte cut at 101 would land mid-rune.
	gen := &fakeGenerator{response: strings.Repeat("é", 200)}
	summarizer := NewSummarizer(gen, 0, 0)

	summary, err := summarizer.GenerateSummary(context.Background(), []string{"some text"}, types.MemoryTypeFeedback, 101)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(summary) {
		t.Fatalf("truncated summary is not valid UTF-8: %q", summary)
	}
	if len(summary) > 101 {
		t.Errorf("summary length = %d, want <= 101", len(summary))
	}
	if summary != strings.Repeat("é", 50) {
		t.Errorf("expected 50 intact runes, got %d runes", utf8.RuneCountInString(summary))
	}
}
