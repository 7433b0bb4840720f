package analysis

import "strings"

// DefaultChunkBudget is the approximate token budget of one summary chunk.
// Tokens are counted as whitespace-delimited words.
const DefaultChunkBudget = 8000

const sentenceSep = ". "

// Chunk splits text into sentence-bounded chunks of at most budget words. A
// boundary is placed before any sentence that would push the running count
// over budget. A single sentence longer than budget becomes its own chunk.
func Chunk(text string, budget int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if budget < 1 {
		budget = DefaultChunkBudget
	}

	var (
		chunks  []string
		current []string
		count   int
	)
	for _, s := range strings.Split(text, sentenceSep) {
		n := len(strings.Fields(s))
		if count+n > budget && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sentenceSep))
			current, count = nil, 0
		}
		current = append(current, s)
		count += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, sentenceSep))
	}
	return chunks
}

// window returns at most n runes of s.
func window(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// truncate cuts s to n runes and appends an ellipsis when it was longer.
func truncate(s string, n int) string {
	if w := window(s, n); len(w) < len(s) {
		return w + "..."
	}
	return s
}
