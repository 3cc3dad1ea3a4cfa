package engine

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/harborcrm/recall/internal/llm"
	"github.com/harborcrm/recall/pkg/types"
)

// Summarizer condenses a cluster of memory texts into a single paragraph
// via the generative text service. Calls are rate-limited so a large run
// does not flood the upstream provider; failures are returned to the caller,
// which treats them as "skip this cluster". There are no retries here —
// retry policy belongs to the caller or the job dispatcher.
type Summarizer struct {
	generator llm.TextGenerator
	limiter   *rate.Limiter
}

// NewSummarizer creates a summarizer over the given text generator.
// completionsPerSecond <= 0 disables rate limiting.
func NewSummarizer(generator llm.TextGenerator, completionsPerSecond float64, burst int) *Summarizer {
	var limiter *rate.Limiter
	if completionsPerSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(completionsPerSecond), burst)
	}
	return &Summarizer{generator: generator, limiter: limiter}
}

// GenerateSummary produces one condensed paragraph for the given texts,
// capped at maxOutputChars. Blank and whitespace-only texts are discarded;
// when nothing remains it returns ("", nil) immediately with no external
// call. A single attempt is made per cluster; any provider failure
// (timeout, open circuit, empty response) is returned as an error.
func (s *Summarizer) GenerateSummary(ctx context.Context, texts []string, targetType types.MemoryType, maxOutputChars int) (string, error) {
	cleaned := make([]string, 0, len(texts))
	for _, text := range texts {
		if t := strings.TrimSpace(text); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return "", nil
	}
	texts = cleaned

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	prompt := buildSummaryPrompt(texts, targetType, maxOutputChars)

	out, err := s.generator.Complete(ctx, prompt, maxOutputChars)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	summary := strings.TrimSpace(out)
	if summary == "" {
		return "", fmt.Errorf("completion returned empty summary")
	}
	if maxOutputChars > 0 && len(summary) > maxOutputChars {
		// Cut on a rune boundary so multibyte text is never split mid-rune.
		cut := maxOutputChars
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = strings.TrimSpace(summary[:cut])
	}

	return summary, nil
}

// buildSummaryPrompt concatenates the cluster texts into a single
// instruction asking for one condensed paragraph.
func buildSummaryPrompt(texts []string, targetType types.MemoryType, maxOutputChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following %d CRM %s records describe related information about the same customer base:\n\n", len(texts), targetType)
	for i, text := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, text)
	}
	fmt.Fprintf(&b, "\nWrite a single condensed paragraph, at most %d characters, that captures the shared meaning of these records. Respond with the paragraph only, no preamble.", maxOutputChars)
	return b.String()
}
