package hybrid

import (
	"context"
	"strings"

	"github.com/notevault/retrieval/internal/fulltext"
)

// Boost constants for the default reranker.
const (
	// exactMatchBoost is added when the full query appears verbatim in the content.
	exactMatchBoost = 0.2

	// coverageBoost scales with the fraction of query terms present in the content.
	coverageBoost = 0.1
)

// KeywordBoostRerank is the default rerank pass: a cheap lexical second look
// at the fused list. An exact full-query substring match earns a flat boost;
// fractional query-term coverage earns a smaller proportional one. The
// boosted value lands in RerankScore; the fused Score is left untouched.
func KeywordBoostRerank(_ context.Context, query string, results []*Result) []*Result {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	terms := fulltext.Tokenize(query)

	for _, r := range results {
		contentLower := strings.ToLower(r.Content)
		boosted := r.Score

		if queryLower != "" && strings.Contains(contentLower, queryLower) {
			boosted += exactMatchBoost
		}

		if len(terms) > 0 {
			covered := 0
			for _, term := range terms {
				if strings.Contains(contentLower, term) {
					covered++
				}
			}
			boosted += coverageBoost * float64(covered) / float64(len(terms))
		}

		score := boosted
		r.RerankScore = &score
	}
	return results
}
