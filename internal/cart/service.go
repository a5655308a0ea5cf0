package cart

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhlong-dev/industro-backend/pkg/db"
	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	apperrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
)

const guestTokenBytes = 24

// VariantStore is the slice of the catalog the cart service needs.
type VariantStore interface {
	GetVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

// TxRunner executes a function inside a DB transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns cart resolution, line mutation and guest cart merging.
type Service struct {
	repo     *Repo
	variants VariantStore
	tx       TxRunner
	logg     *logger.Logger
}

func NewService(repo *Repo, variants VariantStore, tx TxRunner, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart service requires a repo")
	}
	if variants == nil {
		return nil, fmt.Errorf("cart service requires a variant store")
	}
	if tx == nil {
		return nil, fmt.Errorf("cart service requires a tx runner")
	}
	if logg == nil {
		return nil, fmt.Errorf("cart service requires a logger")
	}
	return &Service{repo: repo, variants: variants, tx: tx, logg: logg}, nil
}

// Resolve finds or creates the caller's active cart. The returned token
// is non-empty only when a new guest cart was minted and the caller
// must set the cookie.
//
// Resolution order: a signed-in user gets their active cart, merging
// any guest cart named by the cookie into it first. A plain guest gets
// the cart behind their token, or a brand new one.
func (s *Service) Resolve(ctx context.Context, id Identity) (*View, string, error) {
	if id.UserID != nil {
		cart, err := s.resolveUserCart(ctx, *id.UserID, id.GuestToken)
		if err != nil {
			return nil, "", err
		}
		return toView(cart), "", nil
	}

	if id.GuestToken != "" {
		cart, err := s.repo.GetActiveByGuestToken(ctx, id.GuestToken)
		if err == nil {
			return toView(cart), "", nil
		}
		if !db.IsNotFound(err) {
			return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "loading guest cart")
		}
		// Stale cookie. Fall through and mint a fresh cart.
	}

	cart, token, err := s.createGuestCart(ctx)
	if err != nil {
		return nil, "", err
	}
	return toView(cart), token, nil
}

func (s *Service) resolveUserCart(ctx context.Context, userID uuid.UUID, guestToken string) (*models.Cart, error) {
	userCart, err := s.repo.GetActiveByUser(ctx, userID)
	switch {
	case err == nil:
	case db.IsNotFound(err):
		userCart = nil
	default:
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading user cart")
	}

	if guestToken == "" {
		if userCart != nil {
			return userCart, nil
		}
		return s.createUserCart(ctx, userID)
	}

	guestCart, err := s.repo.GetActiveByGuestToken(ctx, guestToken)
	switch {
	case db.IsNotFound(err):
		// Already merged or never existed. Merge is a no-op.
		if userCart != nil {
			return userCart, nil
		}
		return s.createUserCart(ctx, userID)
	case err != nil:
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading guest cart")
	}

	if userCart == nil {
		// No user cart yet: the guest cart simply changes owner.
		if err := s.repo.AdoptGuestCart(ctx, guestCart.ID, userID); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "adopting guest cart")
		}
		return s.reload(ctx, guestCart.ID)
	}

	if guestCart.ID == userCart.ID {
		return userCart, nil
	}

	if err := s.mergeCarts(ctx, guestCart, userCart); err != nil {
		return nil, err
	}
	return s.reload(ctx, userCart.ID)
}

// mergeCarts folds guest lines into the user cart, summing quantities
// for shared variants, then retires the guest cart.
func (s *Service) mergeCarts(ctx context.Context, guest, user *models.Cart) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Claim the guest cart before touching any lines so a lost race
		// leaves the user cart untouched.
		retired, err := repo.MarkCheckedOut(ctx, guest.ID)
		if err != nil {
			return fmt.Errorf("retiring guest cart: %w", err)
		}
		if !retired {
			// Lost the race against another merge of the same cookie.
			return nil
		}

		for i := range guest.Items {
			item := &guest.Items[i]
			if err := repo.MergeItem(ctx, &models.CartItem{
				CartID:       user.ID,
				VariantID:    item.VariantID,
				SKU:          item.SKU,
				Quantity:     item.Quantity,
				UnitPriceVND: item.UnitPriceVND,
				LineTotalVND: item.LineTotalVND,
			}); err != nil {
				return fmt.Errorf("merging line %s: %w", item.SKU, err)
			}
		}

		return s.recomputeTotals(ctx, repo, user.ID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "merging guest cart")
	}

	ctx = s.logg.WithCartID(ctx, user.ID.String())
	s.logg.Info(ctx, "guest cart merged")
	return nil
}

// AddItem adds quantity of a variant, snapshotting the current price.
func (s *Service) AddItem(ctx context.Context, id Identity, req AddItemRequest) (*View, string, error) {
	variant, err := s.variants.GetVariantByID(ctx, req.VariantID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, "", apperrors.New(apperrors.CodeNotFound, "variant not found")
		}
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "loading variant")
	}
	if !variant.IsActive {
		return nil, "", apperrors.New(apperrors.CodeValidation, "variant is not available")
	}

	view, token, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, "", err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpsertItem(ctx, &models.CartItem{
			CartID:       view.ID,
			VariantID:    variant.ID,
			SKU:          variant.SKU,
			Quantity:     req.Quantity,
			UnitPriceVND: variant.PriceVND,
			LineTotalVND: int64(req.Quantity) * variant.PriceVND,
		}); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, view.ID)
	})
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "adding cart item")
	}

	cart, err := s.reload(ctx, view.ID)
	if err != nil {
		return nil, "", err
	}
	return toView(cart), token, nil
}

// SetQuantity replaces a line's quantity. Zero removes the line.
func (s *Service) SetQuantity(ctx context.Context, id Identity, variantID uuid.UUID, quantity int) (*View, string, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, id, variantID)
	}

	view, token, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, "", err
	}

	item, err := s.repo.GetItem(ctx, view.ID, variantID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, "", apperrors.New(apperrors.CodeNotFound, "item is not in the cart")
		}
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "loading cart item")
	}

	// Quantity changes refresh the price snapshot.
	variant, err := s.variants.GetVariantByID(ctx, variantID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, "", apperrors.New(apperrors.CodeNotFound, "variant not found")
		}
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "loading variant")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateItemQuantity(ctx, view.ID, item.VariantID, quantity, variant.PriceVND); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, view.ID)
	})
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "updating cart item")
	}

	cart, err := s.reload(ctx, view.ID)
	if err != nil {
		return nil, "", err
	}
	return toView(cart), token, nil
}

// RemoveItem deletes a line. Removing an absent line succeeds.
func (s *Service) RemoveItem(ctx context.Context, id Identity, variantID uuid.UUID) (*View, string, error) {
	view, token, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, "", err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteItem(ctx, view.ID, variantID); err != nil {
			return err
		}
		return s.recomputeTotals(ctx, repo, view.ID)
	})
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "removing cart item")
	}

	cart, err := s.reload(ctx, view.ID)
	if err != nil {
		return nil, "", err
	}
	return toView(cart), token, nil
}

// recomputeTotals rebuilds the cart subtotal from its lines. Discount,
// tax and shipping are checkout concerns and stay zero here.
func (s *Service) recomputeTotals(ctx context.Context, repo *Repo, cartID uuid.UUID) error {
	cart, err := repo.GetWithItems(ctx, cartID)
	if err != nil {
		return fmt.Errorf("reloading cart: %w", err)
	}

	var subtotal int64
	for i := range cart.Items {
		subtotal += cart.Items[i].LineTotalVND
	}
	return repo.UpdateTotals(ctx, cartID, subtotal, 0, 0, 0, subtotal)
}

func (s *Service) createUserCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{UserID: &userID}
	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating user cart")
	}
	return cart, nil
}

func (s *Service) createGuestCart(ctx context.Context) (*models.Cart, string, error) {
	token, err := newGuestToken()
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "generating guest token")
	}

	cart := &models.Cart{GuestToken: &token}
	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, err, "creating guest cart")
	}
	return cart, token, nil
}

func (s *Service) reload(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.GetWithItems(ctx, cartID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "reloading cart")
	}
	return cart, nil
}

func newGuestToken() (string, error) {
	buf := make([]byte, guestTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
