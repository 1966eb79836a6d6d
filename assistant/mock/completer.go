// Package mock is a deterministic stand-in for a language model. It only
// restates the specialist headlines it finds in the prompt, which is enough to
// exercise the assistant flow offline.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Completer struct{}

func NewCompleter() *Completer {
	return &Completer{}
}

func (c *Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	slog.Info("LLM_CLIENT: Invoked", "system_len", len(system), "prompt_len", len(prompt))

	var headlines []string
	var warnings int
	for _, line := range strings.Split(prompt, "\n") {
		switch {
		case strings.HasPrefix(line, "["):
			_, headline, _ := strings.Cut(line, "] ")
			headlines = append(headlines, strings.TrimSpace(headline))
		case strings.HasPrefix(strings.TrimSpace(line), "warning:"):
			warnings++
		}
	}

	if len(headlines) == 0 {
		return "I could not find any recommendations to summarize.", nil
	}

	summary := fmt.Sprintf("I gathered %d recommendation(s): %s.", len(headlines), strings.Join(headlines, "; "))
	if warnings > 0 {
		summary += fmt.Sprintf(" Please review %d allergen warning(s) before ordering.", warnings)
	}
	return summary, nil
}
