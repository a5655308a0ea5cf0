package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

// Repo persists carts and their lines.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) (*Repo, error) {
	if db == nil {
		return nil, fmt.Errorf("cart repo requires a db")
	}
	return &Repo{db: db}, nil
}

// WithTx returns a copy of the repo bound to the given transaction.
func (r *Repo) WithTx(tx *gorm.DB) *Repo {
	return &Repo{db: tx}
}

func (r *Repo) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *Repo) GetWithItems(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc") }).
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repo) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc") }).
		First(&cart, "user_id = ? AND status = ?", userID, enums.CartStatusActive).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repo) GetActiveByGuestToken(ctx context.Context, token string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at asc") }).
		First(&cart, "guest_token = ? AND status = ?", token, enums.CartStatusActive).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpsertItem adds a line or increases the quantity of an existing one
// in a single statement, so two concurrent adds for the same variant
// cannot produce duplicate lines.
func (r *Repo) UpsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":       gorm.Expr("quantity + ?", item.Quantity),
			"unit_price_vnd": item.UnitPriceVND,
			"line_total_vnd": gorm.Expr("(quantity + ?) * ?", item.Quantity, item.UnitPriceVND),
		}),
	}).Create(item).Error
}

// MergeItem folds one guest line into the target cart. New variants copy
// the guest snapshot verbatim; an existing line sums quantities but keeps
// its own unit price, so the total recomputes from the price already on
// the line.
func (r *Repo) MergeItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":       gorm.Expr("quantity + ?", item.Quantity),
			"line_total_vnd": gorm.Expr("(quantity + ?) * unit_price_vnd", item.Quantity),
		}),
	}).Create(item).Error
}

func (r *Repo) GetItem(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "cart_id = ? AND variant_id = ?", cartID, variantID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repo) UpdateItemQuantity(ctx context.Context, cartID, variantID uuid.UUID, quantity int, unitPrice int64) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Updates(map[string]any{
			"quantity":       quantity,
			"unit_price_vnd": unitPrice,
			"line_total_vnd": int64(quantity) * unitPrice,
		}).Error
}

// DeleteItem removes a line. Deleting an absent line is not an error.
func (r *Repo) DeleteItem(ctx context.Context, cartID, variantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Delete(&models.CartItem{}).Error
}

func (r *Repo) UpdateTotals(ctx context.Context, cartID uuid.UUID, subtotal, discount, tax, shipping, total int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"subtotal_vnd": subtotal,
			"discount_vnd": discount,
			"tax_vnd":      tax,
			"shipping_vnd": shipping,
			"total_vnd":    total,
		}).Error
}

// AdoptGuestCart assigns the guest cart to the user and clears its token.
func (r *Repo) AdoptGuestCart(ctx context.Context, cartID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Updates(map[string]any{
			"user_id":     userID,
			"guest_token": nil,
		}).Error
}

// MarkCheckedOut retires a cart. It only succeeds for an active cart, so
// two concurrent checkouts cannot both claim it.
func (r *Repo) MarkCheckedOut(ctx context.Context, cartID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND status = ?", cartID, enums.CartStatusActive).
		Update("status", enums.CartStatusCheckedOut)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
