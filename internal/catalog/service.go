package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/minhlong-dev/industro-backend/pkg/db"
	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	apperrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
	"github.com/minhlong-dev/industro-backend/pkg/pagination"
)

// searchCandidateLimit caps how many rows are ranked in memory.
const searchCandidateLimit = 200

// autocompleteLimit caps the typeahead suggestion list.
const autocompleteLimit = 8

// Service implements catalog browsing, search and back-office CRUD.
type Service struct {
	repo *Repo
	logg *logger.Logger
}

func NewService(repo *Repo, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog service requires a repo")
	}
	if logg == nil {
		return nil, fmt.Errorf("catalog service requires a logger")
	}
	return &Service{repo: repo, logg: logg}, nil
}

func (s *Service) CreateBrand(ctx context.Context, req CreateBrandRequest) (*BrandView, error) {
	brand := &models.Brand{
		Name: strings.TrimSpace(req.Name),
		Slug: Slugify(req.Name),
	}
	if logo := strings.TrimSpace(req.LogoURL); logo != "" {
		brand.LogoURL = &logo
	}
	if brand.Slug == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "brand name yields an empty slug")
	}

	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "brand already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating brand")
	}

	view := toBrandView(brand)
	return &view, nil
}

func (s *Service) ListBrands(ctx context.Context) ([]BrandView, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing brands")
	}
	views := make([]BrandView, 0, len(brands))
	for i := range brands {
		views = append(views, toBrandView(&brands[i]))
	}
	return views, nil
}

func (s *Service) UpdateBrand(ctx context.Context, id uuid.UUID, req UpdateBrandRequest) (*BrandView, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		slug := Slugify(name)
		if slug == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "brand name yields an empty slug")
		}
		updates["name"] = name
		updates["slug"] = slug
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}

	brand, err := s.repo.GetBrandByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "brand not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading brand")
	}
	if len(updates) == 0 {
		view := toBrandView(brand)
		return &view, nil
	}

	if err := s.repo.UpdateBrand(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "brand slug already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating brand")
	}

	brand, err = s.repo.GetBrandByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "reloading brand")
	}
	view := toBrandView(brand)
	return &view, nil
}

func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryView, error) {
	if req.ParentID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *req.ParentID); err != nil {
			if db.IsNotFound(err) {
				return nil, apperrors.New(apperrors.CodeValidation, "parent category does not exist")
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading parent category")
		}
	}

	category := &models.Category{
		Name:     strings.TrimSpace(req.Name),
		Slug:     Slugify(req.Name),
		ParentID: req.ParentID,
	}
	if category.Slug == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "category name yields an empty slug")
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "category already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating category")
	}

	view := toCategoryView(category)
	return &view, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryView, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		slug := Slugify(name)
		if slug == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "category name yields an empty slug")
		}
		updates["name"] = name
		updates["slug"] = slug
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, apperrors.New(apperrors.CodeValidation, "category cannot be its own parent")
		}
		if _, err := s.repo.GetCategoryByID(ctx, *req.ParentID); err != nil {
			if db.IsNotFound(err) {
				return nil, apperrors.New(apperrors.CodeValidation, "parent category does not exist")
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading parent category")
		}
		updates["parent_id"] = *req.ParentID
	}

	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "category not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading category")
	}
	if len(updates) == 0 {
		view := toCategoryView(category)
		return &view, nil
	}

	if err := s.repo.UpdateCategory(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "category slug already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating category")
	}

	category, err = s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "reloading category")
	}
	view := toCategoryView(category)
	return &view, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing categories")
	}
	views := make([]CategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, toCategoryView(&categories[i]))
	}
	return views, nil
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductView, error) {
	var description *string
	if desc := strings.TrimSpace(req.Description); desc != "" {
		description = &desc
	}

	product := &models.Product{
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
		Title:       strings.TrimSpace(req.Title),
		Slug:        Slugify(req.Title),
		Description: description,
		Images:      pq.StringArray(req.Images),
		IsActive:    true,
	}
	if product.Slug == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "product title yields an empty slug")
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			SKU:         strings.ToUpper(strings.TrimSpace(v.SKU)),
			Name:        strings.TrimSpace(v.Name),
			PriceVND:    v.PriceVND,
			StockOnHand: v.StockOnHand,
			IsActive:    true,
		})
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "product slug or variant sku already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating product")
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product created")
	return s.GetProductByID(ctx, product.ID)
}

func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductView, error) {
	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		slug := Slugify(title)
		if slug == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "product title yields an empty slug")
		}
		updates["title"] = title
		updates["slug"] = slug
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.GetProductByID(ctx, id)
	}

	if _, err := s.repo.GetProductByID(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
	}

	if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperrors.New(apperrors.CodeConflict, "product slug already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating product")
	}
	return s.GetProductByID(ctx, id)
}

func (s *Service) UpdateVariant(ctx context.Context, id uuid.UUID, req UpdateVariantRequest) (*VariantView, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.PriceVND != nil {
		updates["price_vnd"] = *req.PriceVND
	}
	if req.StockOnHand != nil {
		updates["stock_on_hand"] = *req.StockOnHand
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if _, err := s.repo.GetVariantByID(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "variant not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading variant")
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateVariant(ctx, id, updates); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating variant")
		}
	}

	variant, err := s.repo.GetVariantByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading variant")
	}
	view := toVariantView(variant)
	return &view, nil
}

func (s *Service) GetProductByID(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
	}
	view := toProductView(product)
	return &view, nil
}

func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*ProductView, error) {
	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
	}
	view := toProductView(product)
	return &view, nil
}

func (s *Service) ListProducts(ctx context.Context, filter ListFilter, page pagination.Params) ([]ProductView, pagination.Meta, error) {
	products, total, err := s.repo.ListProducts(ctx, filter, page)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "listing products")
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, toProductView(&products[i]))
	}
	return views, pagination.NewMeta(page, total), nil
}

// Search ranks active products against a free-text query.
func (s *Service) Search(ctx context.Context, query string, page pagination.Params) ([]ProductView, pagination.Meta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pagination.Meta{}, apperrors.New(apperrors.CodeValidation, "search query is required")
	}

	candidates, err := s.repo.SearchCandidates(ctx, query, searchCandidateLimit)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "searching products")
	}

	ranked := RankProducts(candidates, query)
	total := int64(len(ranked))

	start := page.Offset()
	if start > len(ranked) {
		start = len(ranked)
	}
	end := start + page.Limit()
	if end > len(ranked) {
		end = len(ranked)
	}

	views := make([]ProductView, 0, end-start)
	for _, sp := range ranked[start:end] {
		views = append(views, toProductView(sp.Product))
	}
	return views, pagination.NewMeta(page, total), nil
}

// Autocomplete returns up to autocompleteLimit product titles for the
// typeahead box, ranked with the same weights as Search.
func (s *Service) Autocomplete(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "search query is required")
	}

	candidates, err := s.repo.SearchCandidates(ctx, query, searchCandidateLimit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "searching products")
	}

	ranked := RankProducts(candidates, query)
	if len(ranked) > autocompleteLimit {
		ranked = ranked[:autocompleteLimit]
	}

	titles := make([]string, 0, len(ranked))
	for _, sp := range ranked {
		titles = append(titles, sp.Product.Title)
	}
	return titles, nil
}
