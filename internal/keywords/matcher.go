// Package keywords matches client keyword lists against an analyzed
// transcript.
package keywords

import (
	"regexp"
	"strings"

	"github.com/danilodaat/automat/internal/core/domain"
)

// wordPattern tokenizes transcripts. Letters include accented ones.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// IsSectorClient reports whether a client name designates a sector entry.
func IsSectorClient(name string) bool {
	return strings.Contains(strings.ToLower(name), "sector")
}

// Matcher finds client keyword hits. The zero value stops at the first hit
// per client.
type Matcher struct {
	// Exhaustive records every matching keyword of a client instead of the
	// first one only.
	Exhaustive bool
}

// Match checks every client of dir against the transcript, entities and
// topics. Sector clients match topic labels; the others match transcript
// words and entity names.
func (m Matcher) Match(transcript string, entities domain.Entities, topics []string, dir domain.KeywordDirectory) []domain.KeywordMatch {
	idx := newIndex(transcript, entities, topics)

	var matches []domain.KeywordMatch
	for _, client := range dir.Clients {
		seen := map[string]bool{}
		for _, kw := range client.Keywords {
			term := strings.ToLower(strings.TrimSpace(kw))
			if term == "" || seen[term] {
				continue
			}
			seen[term] = true

			kind := domain.MatchExactKeyword
			var hit bool
			if client.Sector {
				kind = domain.MatchTopicSector
				hit = idx.topics[term]
			} else {
				hit = idx.containsWords(term) || idx.inEntity(term)
			}
			if !hit {
				continue
			}
			matches = append(matches, domain.KeywordMatch{Client: client.Client, Term: strings.TrimSpace(kw), Kind: kind})
			if !m.Exhaustive {
				break
			}
		}
	}
	return matches
}

type index struct {
	words    map[string]bool
	tokens   []string
	entities []string
	topics   map[string]bool
}

func newIndex(transcript string, entities domain.Entities, topics []string) *index {
	idx := &index{
		words:  map[string]bool{},
		tokens: wordPattern.FindAllString(strings.ToLower(transcript), -1),
		topics: map[string]bool{},
	}
	for _, w := range idx.tokens {
		idx.words[w] = true
	}
	for _, e := range entities.All() {
		idx.entities = append(idx.entities, strings.ToLower(e))
	}
	for _, t := range topics {
		idx.topics[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return idx
}

// containsWords reports whether term appears as a whole word, or for a
// multi-word term as a contiguous run of words.
func (idx *index) containsWords(term string) bool {
	parts := wordPattern.FindAllString(term, -1)
	switch len(parts) {
	case 0:
		return false
	case 1:
		return idx.words[parts[0]]
	}
	for i := 0; i+len(parts) <= len(idx.tokens); i++ {
		if idx.tokens[i] != parts[0] {
			continue
		}
		match := true
		for j := 1; j < len(parts); j++ {
			if idx.tokens[i+j] != parts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (idx *index) inEntity(term string) bool {
	for _, e := range idx.entities {
		if strings.Contains(e, term) {
			return true
		}
	}
	return false
}
