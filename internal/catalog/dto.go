package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
)

type CreateBrandRequest struct {
	Name    string `json:"name" validate:"required"`
	LogoURL string `json:"logo_url" validate:"omitempty,url"`
}

type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type CreateProductRequest struct {
	BrandID     uuid.UUID              `json:"brand_id" validate:"required"`
	CategoryID  uuid.UUID              `json:"category_id" validate:"required"`
	Title       string                 `json:"title" validate:"required"`
	Description string                 `json:"description"`
	Images      []string               `json:"images" validate:"dive,url"`
	Variants    []CreateVariantRequest `json:"variants" validate:"required,min=1,dive"`
}

type CreateVariantRequest struct {
	SKU         string `json:"sku" validate:"required"`
	Name        string `json:"name" validate:"required"`
	PriceVND    int64  `json:"price_vnd" validate:"required,gt=0"`
	StockOnHand int    `json:"stock_on_hand" validate:"gte=0"`
}

type UpdateBrandRequest struct {
	Name    *string `json:"name"`
	LogoURL *string `json:"logo_url" validate:"omitempty,url"`
}

type UpdateCategoryRequest struct {
	Name     *string    `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type UpdateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	IsActive    *bool    `json:"is_active"`
}

type UpdateVariantRequest struct {
	Name        *string `json:"name"`
	PriceVND    *int64  `json:"price_vnd" validate:"omitempty,gt=0"`
	StockOnHand *int    `json:"stock_on_hand" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

// ListFilter narrows the product listing.
type ListFilter struct {
	BrandSlug    string
	CategorySlug string
	MinPriceVND  int64
	MaxPriceVND  int64
	OnlyActive   bool
}

type BrandView struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	LogoURL string    `json:"logo_url,omitempty"`
}

type CategoryView struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type VariantView struct {
	ID          uuid.UUID `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	PriceVND    int64     `json:"price_vnd"`
	StockOnHand int       `json:"stock_on_hand"`
	IsActive    bool      `json:"is_active"`
}

type ProductView struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description,omitempty"`
	Images      []string      `json:"images"`
	IsActive    bool          `json:"is_active"`
	Brand       BrandView     `json:"brand"`
	Category    CategoryView  `json:"category"`
	Variants    []VariantView `json:"variants"`
	CreatedAt   time.Time     `json:"created_at"`
}

func toBrandView(b *models.Brand) BrandView {
	view := BrandView{ID: b.ID, Name: b.Name, Slug: b.Slug}
	if b.LogoURL != nil {
		view.LogoURL = *b.LogoURL
	}
	return view
}

func toCategoryView(c *models.Category) CategoryView {
	return CategoryView{ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID}
}

func toVariantView(v *models.ProductVariant) VariantView {
	return VariantView{
		ID:          v.ID,
		SKU:         v.SKU,
		Name:        v.Name,
		PriceVND:    v.PriceVND,
		StockOnHand: v.StockOnHand,
		IsActive:    v.IsActive,
	}
}

func toProductView(p *models.Product) ProductView {
	view := ProductView{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Images:    []string(p.Images),
		IsActive:  p.IsActive,
		Variants:  make([]VariantView, 0, len(p.Variants)),
		CreatedAt: p.CreatedAt,
	}
	if p.Description != nil {
		view.Description = *p.Description
	}
	if p.Brand != nil {
		view.Brand = toBrandView(p.Brand)
	}
	if p.Category != nil {
		view.Category = toCategoryView(p.Category)
	}
	for i := range p.Variants {
		view.Variants = append(view.Variants, toVariantView(&p.Variants[i]))
	}
	return view
}
