// Package llm talks to the hosted text-generation model.
//
// Callers depend on the Model interface; GeminiClient is the production
// implementation and Instrument wraps any Model with metrics, spans and logs.
package llm

import "context"

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Model generates text for a single prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Func adapts a function to the Model interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Name returns "func".
func (f Func) Name() string { return "func" }
