package fuzzy

import (
	"context"
	"sort"
)

// cancelCheckInterval is how many choices are scored between context checks.
const cancelCheckInterval = 1024

// Match is one scored choice. Index is the choice's position in the original list.
type Match struct {
	Choice string
	Score  float64
	Index  int
}

// Choices is a list of candidate strings with their processed forms computed once.
// It is safe for concurrent use after construction.
type Choices struct {
	raw       []string
	processed []string
	processor func(string) string
}

// NewChoices preprocesses choices with processor. A nil processor leaves them unchanged.
func NewChoices(choices []string, processor func(string) string) *Choices {
	if processor == nil {
		processor = func(s string) string { return s }
	}
	c := &Choices{
		raw:       append([]string(nil), choices...),
		processed: make([]string, len(choices)),
		processor: processor,
	}
	for i, s := range choices {
		c.processed[i] = processor(s)
	}
	return c
}

// Len returns the number of choices.
func (c *Choices) Len() int {
	return len(c.raw)
}

// Process applies the choices' processor to s, so callers can key caches on the same form.
func (c *Choices) Process(s string) string {
	return c.processor(s)
}

// Extract scores query against every choice and returns up to limit matches, best first.
// Equal scores keep choice order. Choices that process to the empty string are skipped.
func Extract(ctx context.Context, query string, choices *Choices, scorer Scorer, limit int) ([]Match, error) {
	if limit <= 0 || choices == nil || choices.Len() == 0 {
		return nil, nil
	}
	if scorer == nil {
		scorer = WRatio
	}
	q := choices.processor(query)
	matches := make([]Match, 0, choices.Len())
	for i, p := range choices.processed {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if p == "" {
			continue
		}
		matches = append(matches, Match{Choice: choices.raw[i], Score: scorer(q, p), Index: i})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ExtractOne returns the best match, or false when there are no scorable choices.
func ExtractOne(ctx context.Context, query string, choices *Choices, scorer Scorer) (Match, bool, error) {
	matches, err := Extract(ctx, query, choices, scorer, 1)
	if err != nil || len(matches) == 0 {
		return Match{}, false, err
	}
	return matches[0], true, nil
}
