// Package llm provides clients for the generative text service behind a
// single TextGenerator interface. All providers are guarded by a request
// timeout and a circuit breaker so one slow or failing upstream cannot
// stall a whole summarization run.
package llm

import "context"

// TextGenerator is the interface for generative text completion.
// maxOutputChars caps the length of the returned text; providers translate
// it into their native token limits.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, maxOutputChars int) (string, error)
	GetModel() string
}

// maxTokensForChars converts an output character budget into a provider
// token limit. Uses the rough 4-chars-per-token heuristic with headroom so
// completions are cut off by the instruction, not mid-sentence by the API.
func maxTokensForChars(maxOutputChars int) int {
	if maxOutputChars <= 0 {
		return 1024
	}
	tokens := maxOutputChars/4 + 64
	if tokens < 128 {
		tokens = 128
	}
	return tokens
}
