package answer

import (
	"strings"

	"urlresearch/internal/vector"
)

// RefusalSentence is the exact sentence the model must emit when the
// context cannot answer the question. Downstream consumers match on it.
const RefusalSentence = "The answer is not found in the provided sources."

const promptInstructions = `You are a concise, professional research assistant.
Use ONLY the information in the CONTEXT block to answer the QUESTION.
- Do NOT invent facts or speculate beyond the context.
- Do NOT make jokes, puns, or casual commentary.
- If the answer is not in the context, respond exactly with:
  "` + RefusalSentence + `"

Format your answer in clear Markdown with this structure:
1. **Short Answer** - 2-3 sentences directly answering the question.
2. **Key Points** - 3-6 bullet points summarizing the main arguments.
3. **Evidence from Sources** - bullets that briefly quote or paraphrase
   the most relevant parts of the context.
4. **Limitations** - 1-2 bullets if the context is incomplete or partial.

`

// BuildPrompt assembles the grounded generation prompt: retrieved chunk
// texts concatenated in retrieval order under CONTEXT, the verbatim
// question under QUESTION.
func BuildPrompt(question string, results []vector.Result) string {
	var b strings.Builder
	b.WriteString(promptInstructions)

	b.WriteString("CONTEXT:\n")
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(r.Content)
	}
	b.WriteString("\n\nQUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nNow write the answer following the structure above:")

	return b.String()
}

// Sources returns the unique source URLs across the ranked results, in
// first-seen order.
func Sources(results []vector.Result) []string {
	seen := make(map[string]bool, len(results))
	var urls []string
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		urls = append(urls, r.URL)
	}
	return urls
}
