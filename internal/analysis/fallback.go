package analysis

import (
	"context"
	"regexp"
	"strings"

	"github.com/danilodaat/automat/internal/core/domain"
)

// Fallback budgets used when no language backend is configured.
const (
	FallbackSummaryChars  = 400
	FallbackHeadlineChars = 60
	FallbackEntityCap     = 10
)

// Fallback entity buckets.
const (
	CategoryPeople        = "Personas"
	CategoryOrganizations = "Organizaciones"
)

// RE2 word boundaries are ASCII-only, so each pattern brackets its capture
// with explicit non-word neighbours to keep accented names whole.
var (
	personPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(\p{Lu}\p{Ll}+(?:\s\p{Lu}\p{Ll}+){0,2})(?:[^\p{L}\p{N}_]|$)`)
	orgPattern    = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])([\p{Lu}\p{N}]{2,})(?:[^\p{L}\p{N}_]|$)`)
)

// TruncatingSummarizer returns the leading part of the transcript.
type TruncatingSummarizer struct{}

func (TruncatingSummarizer) Summarize(_ context.Context, text string) string {
	return truncate(text, FallbackSummaryChars)
}

// TruncatingHeadlineWriter returns the first words of the transcript.
type TruncatingHeadlineWriter struct{}

func (TruncatingHeadlineWriter) Headline(_ context.Context, text string) string {
	return truncate(text, FallbackHeadlineChars)
}

// PatternEntityExtractor buckets capitalized word runs as people and all-caps
// tokens as organizations.
type PatternEntityExtractor struct{}

func (PatternEntityExtractor) Extract(_ context.Context, text string) domain.Entities {
	e := domain.NewEntities()
	if people := findWords(personPattern, text, FallbackEntityCap); len(people) > 0 {
		e.Set(CategoryPeople, people)
	}
	if orgs := uniqueCapped(findWords(orgPattern, text, -1), FallbackEntityCap); len(orgs) > 0 {
		e.Set(CategoryOrganizations, orgs)
	}
	return e
}

// findWords returns the first capture of re for up to limit matches. Scanning
// resumes at the end of each capture so the trailing neighbour can open the
// next match.
func findWords(re *regexp.Regexp, text string, limit int) []string {
	var out []string
	for pos := 0; pos < len(text) && (limit < 0 || len(out) < limit); {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		out = append(out, text[pos+loc[2]:pos+loc[3]])
		pos += loc[3]
	}
	return out
}

func uniqueCapped(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}

// topicRule assigns label when the transcript contains any (or, with all,
// every) of the given fragments.
type topicRule struct {
	label     string
	fragments []string
	all       bool
}

var topicRules = []topicRule{
	{label: "Política", fragments: []string{"gobierno", "presidente"}},
	{label: "Economía", fragments: []string{"econom", "inflación"}},
	{label: "Salud Pública", fragments: []string{"salud", "hospital"}},
	{label: "Tecnología", fragments: []string{"tecnolog", "app"}},
	{label: "Deportes", fragments: []string{"partido", "gol"}, all: true},
}

func (r topicRule) matches(lower string) bool {
	for _, f := range r.fragments {
		hit := strings.Contains(lower, f)
		if hit && !r.all {
			return true
		}
		if !hit && r.all {
			return false
		}
	}
	return r.all
}

// HeuristicTopicClassifier picks labels from keyword presence.
type HeuristicTopicClassifier struct{}

func (HeuristicTopicClassifier) Classify(_ context.Context, text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, r := range topicRules {
		if r.matches(lower) {
			found = append(found, r.label)
		}
	}
	if len(found) == 0 {
		return []string{SentinelTopic}
	}
	if len(found) > MaxTopics {
		found = found[:MaxTopics]
	}
	return found
}
