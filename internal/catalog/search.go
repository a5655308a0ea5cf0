package catalog

import (
	"sort"
	"strings"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
)

// Relevance weights. Title matches dominate, SKU matches beat brand and
// category matches.
const (
	scoreTitleExact     = 100
	scoreTitlePrefix    = 60
	scoreSKU            = 50
	scoreTitleSubstring = 30
	scoreBrand          = 20
	scoreCategory       = 15
)

// ScoredProduct pairs a product with its search relevance.
type ScoredProduct struct {
	Product *models.Product
	Score   int
}

// ScoreProduct computes the relevance of one product for a query. A zero
// score means no match.
func ScoreProduct(p *models.Product, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	score := 0
	title := strings.ToLower(p.Title)
	switch {
	case title == q:
		score += scoreTitleExact
	case strings.HasPrefix(title, q):
		score += scoreTitlePrefix
	case strings.Contains(title, q):
		score += scoreTitleSubstring
	}

	for i := range p.Variants {
		if strings.Contains(strings.ToLower(p.Variants[i].SKU), q) {
			score += scoreSKU
			break
		}
	}

	if p.Brand != nil && strings.Contains(strings.ToLower(p.Brand.Name), q) {
		score += scoreBrand
	}
	if p.Category != nil && strings.Contains(strings.ToLower(p.Category.Name), q) {
		score += scoreCategory
	}

	return score
}

// RankProducts scores and orders candidates by descending relevance,
// dropping non-matches. Ties break on title for a stable order.
func RankProducts(candidates []models.Product, query string) []ScoredProduct {
	ranked := make([]ScoredProduct, 0, len(candidates))
	for i := range candidates {
		if score := ScoreProduct(&candidates[i], query); score > 0 {
			ranked = append(ranked, ScoredProduct{Product: &candidates[i], Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Product.Title < ranked[j].Product.Title
	})

	return ranked
}
