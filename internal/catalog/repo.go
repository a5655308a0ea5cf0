package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/pagination"
)

// Repo persists brands, categories, products and variants.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) (*Repo, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog repo requires a db")
	}
	return &Repo{db: db}, nil
}

// WithTx returns a copy of the repo bound to the given transaction.
func (r *Repo) WithTx(tx *gorm.DB) *Repo {
	return &Repo{db: tx}
}

func (r *Repo) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *Repo) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).Order("name asc").Find(&brands).Error
	return brands, err
}

func (r *Repo) GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *Repo) UpdateBrand(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Brand{}).Where("id = ?", id).Updates(updates).Error
}

func (r *Repo) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name asc").Find(&categories).Error
	return categories, err
}

func (r *Repo) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repo) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates).Error
}

func (r *Repo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *Repo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *Repo) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		Preload("Variants").
		First(&product, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts applies the filter and returns a page plus total count.
func (r *Repo) ListProducts(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.OnlyActive {
		query = query.Where("products.is_active = ?", true)
	}
	if filter.BrandSlug != "" {
		query = query.Joins("JOIN brands ON brands.id = products.brand_id").
			Where("brands.slug = ?", filter.BrandSlug)
	}
	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.MinPriceVND > 0 || filter.MaxPriceVND > 0 {
		sub := r.db.Model(&models.ProductVariant{}).
			Select("product_id").
			Where("is_active = ?", true)
		if filter.MinPriceVND > 0 {
			sub = sub.Where("price_vnd >= ?", filter.MinPriceVND)
		}
		if filter.MaxPriceVND > 0 {
			sub = sub.Where("price_vnd <= ?", filter.MaxPriceVND)
		}
		query = query.Where("products.id IN (?)", sub)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.
		Preload("Brand").
		Preload("Category").
		Preload("Variants").
		Order("products.created_at desc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// SearchCandidates loads active products whose text fields may match the
// query. Ranking happens in memory.
func (r *Repo) SearchCandidates(ctx context.Context, query string, limit int) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		Preload("Variants").
		Joins("LEFT JOIN brands ON brands.id = products.brand_id").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ?", true).
		Where(
			r.db.Where("lower(products.title) LIKE ?", pattern).
				Or("lower(brands.name) LIKE ?", pattern).
				Or("lower(categories.name) LIKE ?", pattern).
				Or("products.id IN (?)", r.db.Model(&models.ProductVariant{}).
					Select("product_id").
					Where("lower(sku) LIKE ?", pattern)),
		).
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *Repo) GetVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// VariantWithTitle pairs a variant with its product's display title.
type VariantWithTitle struct {
	models.ProductVariant
	ProductTitle string
}

// GetVariantsWithTitles loads variants plus their product titles, for
// order line snapshots.
func (r *Repo) GetVariantsWithTitles(ctx context.Context, ids []uuid.UUID) ([]VariantWithTitle, error) {
	var rows []VariantWithTitle
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Select("product_variants.*, products.title AS product_title").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.id IN ?", ids).
		Scan(&rows).Error
	return rows, err
}

func (r *Repo) GetVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&variants).Error
	return variants, err
}

func (r *Repo) UpdateVariant(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DecrementStock atomically reduces stock for one variant. It affects no
// rows when stock is insufficient, which the caller must treat as a
// conflict.
func (r *Repo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND stock_on_hand >= ?", id, quantity).
		Update("stock_on_hand", gorm.Expr("stock_on_hand - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
