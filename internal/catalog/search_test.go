package catalog

import (
	"testing"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
)

func product(title, brand, category string, skus ...string) models.Product {
	p := models.Product{
		Title:    title,
		Brand:    &models.Brand{Name: brand},
		Category: &models.Category{Name: category},
	}
	for _, sku := range skus {
		p.Variants = append(p.Variants, models.ProductVariant{SKU: sku})
	}
	return p
}

func TestScoreProduct(t *testing.T) {
	t.Parallel()

	drill := product("Bosch GSB 550 Impact Drill", "Bosch", "Power Tools", "BOSCH-GSB550")

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"exact title", "bosch gsb 550 impact drill", scoreTitleExact},
		{"title prefix", "bosch gsb", scoreTitlePrefix},
		{"title substring", "impact", scoreTitleSubstring},
		{"sku", "gsb550", scoreSKU},
		{"brand only", "bosch", scoreTitlePrefix + scoreSKU + scoreBrand},
		{"category", "power tools", scoreCategory},
		{"no match", "welder", 0},
		{"blank query", "   ", 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ScoreProduct(&drill, tc.query); got != tc.want {
				t.Fatalf("ScoreProduct(%q) = %d, want %d", tc.query, got, tc.want)
			}
		})
	}
}

func TestRankProductsOrdersByScore(t *testing.T) {
	t.Parallel()

	candidates := []models.Product{
		product("Makita Angle Grinder", "Makita", "Power Tools", "MAK-GA9020"),
		product("Grinder Disc Set", "Generic", "Accessories", "ACC-DISC01"),
		product("Grinder", "Generic", "Power Tools", "GEN-GR100"),
		product("Welding Helmet", "Generic", "Safety", "GEN-WH200"),
	}

	ranked := RankProducts(candidates, "grinder")
	if len(ranked) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(ranked))
	}

	// Exact title beats prefix beats substring.
	if ranked[0].Product.Title != "Grinder" {
		t.Fatalf("expected exact match first, got %q", ranked[0].Product.Title)
	}
	if ranked[1].Product.Title != "Grinder Disc Set" {
		t.Fatalf("expected prefix match second, got %q", ranked[1].Product.Title)
	}
	if ranked[2].Product.Title != "Makita Angle Grinder" {
		t.Fatalf("expected substring match third, got %q", ranked[2].Product.Title)
	}
}

func TestRankProductsTieBreaksOnTitle(t *testing.T) {
	t.Parallel()

	candidates := []models.Product{
		product("Zeta Bearing Kit", "SKF", "Bearings", "SKF-Z1"),
		product("Alpha Bearing Kit", "SKF", "Bearings", "SKF-A1"),
	}

	ranked := RankProducts(candidates, "bearing kit")
	if len(ranked) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(ranked))
	}
	if ranked[0].Product.Title != "Alpha Bearing Kit" {
		t.Fatalf("expected alphabetical tie break, got %q first", ranked[0].Product.Title)
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Bosch GSB 550", "bosch-gsb-550"},
		{"  Máy khoan động lực  ", "may-khoan-dong-luc"},
		{"Thép ống đúc 100%", "thep-ong-duc-100"},
		{"--weird--input--", "weird-input"},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
