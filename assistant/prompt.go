package assistant

import (
	"fmt"
	"strings"

	"foodagent/agents"
)

const systemPrompt = `You are a friendly assistant for institutional kitchens ordering food in bulk.
You receive a question and the recommendations of rule-based specialist agents.
Summarize them for the kitchen manager in at most three sentences.
Only mention products and meals that appear in the recommendations.
Always repeat allergen or cross-contamination warnings.
Answer in plain text without markdown.`

// buildPrompt lists the question, the organization and one line per response
// plus the recommended items. The mock completer relies on the "[agent]" line
// prefix.
func buildPrompt(question string, req agents.Request, responses []agents.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	if req.Profile != nil {
		fmt.Fprintf(&b, "Organization: %s (%s)\n", req.Profile.Name, req.Profile.Type)
	}
	b.WriteString("\nRecommendations:\n")
	for _, r := range responses {
		headline, _, _ := strings.Cut(r.Message, "\n")
		fmt.Fprintf(&b, "[%s] %s\n", r.Agent, strings.TrimSuffix(strings.TrimSpace(headline), ":"))
		if r.Data == nil {
			continue
		}
		for _, p := range r.Data.Products {
			fmt.Fprintf(&b, "  product: %s (€%.2f)\n", p.Name, p.EffectivePrice())
		}
		for _, m := range r.Data.Meals {
			fmt.Fprintf(&b, "  meal: %s\n", m.Name)
		}
		if r.Data.Dietary != nil {
			for _, w := range r.Data.Dietary.Warnings {
				fmt.Fprintf(&b, "  warning: %s\n", w)
			}
		}
	}
	return b.String()
}
