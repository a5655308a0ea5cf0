package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/internal/catalog"
	"github.com/minhlong-dev/industro-backend/pkg/config"
	"github.com/minhlong-dev/industro-backend/pkg/db"
	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
	apperrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
)

type testEnv struct {
	svc    *Service
	client *db.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		Driver: "sqlite",
	}, nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	repo, err := NewRepo(client.DB())
	if err != nil {
		t.Fatalf("NewRepo: %v", err)
	}
	variants, err := catalog.NewRepo(client.DB())
	if err != nil {
		t.Fatalf("catalog.NewRepo: %v", err)
	}

	svc, err := NewService(repo, variants, client, logger.New(logger.Options{ServiceName: "cart-test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return &testEnv{svc: svc, client: client}
}

func (e *testEnv) mustCreateVariant(t *testing.T, sku string, price int64, stock int) *models.ProductVariant {
	t.Helper()

	variant := &models.ProductVariant{
		ProductID:   uuid.New(),
		SKU:         sku,
		Name:        "Standard",
		PriceVND:    price,
		StockOnHand: stock,
		IsActive:    true,
	}
	if err := e.client.DB().Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}

func guest(token string) Identity {
	return Identity{GuestToken: token}
}

func user(id uuid.UUID, token string) Identity {
	return Identity{UserID: &id, GuestToken: token}
}

func TestResolveCreatesAndReusesGuestCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, token, err := env.svc.Resolve(ctx, guest(""))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if token == "" {
		t.Fatal("expected a fresh guest token")
	}
	if len(view.Items) != 0 {
		t.Fatal("expected an empty cart")
	}

	again, newToken, err := env.svc.Resolve(ctx, guest(token))
	if err != nil {
		t.Fatalf("Resolve with token: %v", err)
	}
	if newToken != "" {
		t.Fatal("expected no new token for a known cart")
	}
	if again.ID != view.ID {
		t.Fatal("expected the same cart for the same token")
	}
}

func TestResolveRecoversFromStaleToken(t *testing.T) {
	env := newTestEnv(t)

	view, token, err := env.svc.Resolve(context.Background(), guest("stale-cookie-value"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if token == "" || token == "stale-cookie-value" {
		t.Fatalf("expected a replacement token, got %q", token)
	}
	if view.ID == uuid.Nil {
		t.Fatal("expected a new cart")
	}
}

func TestAddItemMergesDuplicateLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	variant := env.mustCreateVariant(t, "PUMP-01", 1000000, 50)

	view, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: variant.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	view, _, err = env.svc.AddItem(ctx, guest(token), AddItemRequest{VariantID: variant.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("second AddItem: %v", err)
	}

	if len(view.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(view.Items))
	}
	item := view.Items[0]
	if item.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", item.Quantity)
	}
	if item.LineTotalVND != 5000000 {
		t.Fatalf("expected line total 5000000, got %d", item.LineTotalVND)
	}
	if view.SubtotalVND != 5000000 {
		t.Fatalf("expected subtotal 5000000, got %d", view.SubtotalVND)
	}
}

func TestAddItemRejectsInactiveVariant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	variant := env.mustCreateVariant(t, "OLD-01", 500000, 10)
	if err := env.client.DB().Model(variant).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, _, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: variant.ID, Quantity: 1})
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	_, _, err = env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: uuid.New(), Quantity: 1})
	appErr = apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestLinePriceSnapshotSurvivesCatalogChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	variant := env.mustCreateVariant(t, "SNAP-01", 1000000, 50)

	view, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: variant.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if err := env.client.DB().Model(variant).Update("price_vnd", 1200000).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}

	// Untouched line keeps the snapshot.
	view, _, err = env.svc.Resolve(ctx, guest(token))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if view.Items[0].UnitPriceVND != 1000000 {
		t.Fatalf("expected snapshot price, got %d", view.Items[0].UnitPriceVND)
	}

	// Changing the quantity refreshes it.
	view, _, err = env.svc.SetQuantity(ctx, guest(token), variant.ID, 3)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if view.Items[0].UnitPriceVND != 1200000 {
		t.Fatalf("expected refreshed price, got %d", view.Items[0].UnitPriceVND)
	}
	if view.Items[0].LineTotalVND != 3600000 {
		t.Fatalf("expected line total 3600000, got %d", view.Items[0].LineTotalVND)
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	variant := env.mustCreateVariant(t, "ZERO-01", 800000, 20)

	_, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: variant.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	view, _, err := env.svc.SetQuantity(ctx, guest(token), variant.ID, 0)
	if err != nil {
		t.Fatalf("SetQuantity(0): %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Items))
	}
	if view.SubtotalVND != 0 {
		t.Fatalf("expected zero subtotal, got %d", view.SubtotalVND)
	}
}

func TestSetQuantityUnknownLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	variant := env.mustCreateVariant(t, "MISS-01", 800000, 20)

	_, token, err := env.svc.Resolve(ctx, guest(""))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	_, _, err = env.svc.SetQuantity(ctx, guest(token), variant.ID, 2)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	variant := env.mustCreateVariant(t, "RM-01", 700000, 20)

	_, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: variant.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	view, _, err := env.svc.RemoveItem(ctx, guest(token), variant.ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatal("expected the line to be gone")
	}

	// Removing again is a no-op, not an error.
	if _, _, err := env.svc.RemoveItem(ctx, guest(token), variant.ID); err != nil {
		t.Fatalf("second RemoveItem: %v", err)
	}
}

func TestSignInAdoptsGuestCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	variant := env.mustCreateVariant(t, "ADOPT-01", 1500000, 10)
	userID := uuid.New()

	guestView, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: variant.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// User had no cart of their own: the guest cart changes owner.
	merged, _, err := env.svc.Resolve(ctx, user(userID, token))
	if err != nil {
		t.Fatalf("Resolve as user: %v", err)
	}
	if merged.ID != guestView.ID {
		t.Fatal("expected the guest cart to be adopted, not copied")
	}

	// The cookie token is dead after adoption.
	afterwards, _, err := env.svc.Resolve(ctx, user(userID, ""))
	if err != nil {
		t.Fatalf("Resolve without cookie: %v", err)
	}
	if afterwards.ID != merged.ID {
		t.Fatal("expected the adopted cart to stick to the user")
	}
}

func TestSignInMergesGuestIntoUserCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	shared := env.mustCreateVariant(t, "SHARED-01", 1000000, 50)
	only := env.mustCreateVariant(t, "ONLY-01", 300000, 50)
	userID := uuid.New()

	// User already has a cart with 2 of the shared variant.
	if _, _, err := env.svc.AddItem(ctx, user(userID, ""), AddItemRequest{VariantID: shared.ID, Quantity: 2}); err != nil {
		t.Fatalf("user AddItem: %v", err)
	}

	// Guest cart holds 3 shared and 1 guest-only.
	_, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: shared.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("guest AddItem: %v", err)
	}
	if _, _, err := env.svc.AddItem(ctx, guest(token), AddItemRequest{VariantID: only.ID, Quantity: 1}); err != nil {
		t.Fatalf("guest AddItem 2: %v", err)
	}

	merged, _, err := env.svc.Resolve(ctx, user(userID, token))
	if err != nil {
		t.Fatalf("merge Resolve: %v", err)
	}

	if len(merged.Items) != 2 {
		t.Fatalf("expected 2 lines after merge, got %d", len(merged.Items))
	}
	byVariant := map[uuid.UUID]ItemView{}
	for _, item := range merged.Items {
		byVariant[item.VariantID] = item
	}
	if byVariant[shared.ID].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", byVariant[shared.ID].Quantity)
	}
	if byVariant[only.ID].Quantity != 1 {
		t.Fatalf("expected guest-only quantity 1, got %d", byVariant[only.ID].Quantity)
	}
	if merged.SubtotalVND != 5300000 {
		t.Fatalf("expected subtotal 5300000, got %d", merged.SubtotalVND)
	}

	// Replaying the merge with the dead cookie must change nothing.
	replay, _, err := env.svc.Resolve(ctx, user(userID, token))
	if err != nil {
		t.Fatalf("replay Resolve: %v", err)
	}
	if replay.SubtotalVND != merged.SubtotalVND || len(replay.Items) != 2 {
		t.Fatal("expected merge to be idempotent")
	}
}

func TestMergeKeepsUserLinePriceAfterRepricing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	shared := env.mustCreateVariant(t, "REPRICE-01", 1000000, 50)
	only := env.mustCreateVariant(t, "REPRICE-02", 300000, 50)
	userID := uuid.New()

	if _, _, err := env.svc.AddItem(ctx, user(userID, ""), AddItemRequest{VariantID: shared.ID, Quantity: 2}); err != nil {
		t.Fatalf("user AddItem: %v", err)
	}

	// The catalog reprices between the two shopping sessions, so the
	// guest cart snapshots a higher price for the same variant.
	if err := env.client.DB().Model(&models.ProductVariant{}).
		Where("id = ?", shared.ID).
		Update("price_vnd", 1200000).Error; err != nil {
		t.Fatalf("repricing variant: %v", err)
	}

	_, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: shared.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("guest AddItem: %v", err)
	}
	if _, _, err := env.svc.AddItem(ctx, guest(token), AddItemRequest{VariantID: only.ID, Quantity: 1}); err != nil {
		t.Fatalf("guest AddItem 2: %v", err)
	}

	merged, _, err := env.svc.Resolve(ctx, user(userID, token))
	if err != nil {
		t.Fatalf("merge Resolve: %v", err)
	}

	byVariant := map[uuid.UUID]ItemView{}
	for _, item := range merged.Items {
		byVariant[item.VariantID] = item
	}

	// The user's existing line keeps its own snapshot; only the quantity
	// grows.
	sharedLine := byVariant[shared.ID]
	if sharedLine.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", sharedLine.Quantity)
	}
	if sharedLine.UnitPriceVND != 1000000 {
		t.Fatalf("expected user snapshot 1000000 to survive, got %d", sharedLine.UnitPriceVND)
	}
	if sharedLine.LineTotalVND != 5000000 {
		t.Fatalf("expected line total 5000000, got %d", sharedLine.LineTotalVND)
	}

	// The guest-only line copies over with its guest snapshot untouched.
	if byVariant[only.ID].UnitPriceVND != 300000 {
		t.Fatalf("expected guest snapshot 300000, got %d", byVariant[only.ID].UnitPriceVND)
	}
	if merged.SubtotalVND != 5300000 {
		t.Fatalf("expected subtotal 5300000, got %d", merged.SubtotalVND)
	}
}

func TestMergeSkipsAlreadyRetiredGuestCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	variant := env.mustCreateVariant(t, "RACE-01", 1000000, 50)
	userID := uuid.New()

	if _, _, err := env.svc.AddItem(ctx, user(userID, ""), AddItemRequest{VariantID: variant.ID, Quantity: 2}); err != nil {
		t.Fatalf("user AddItem: %v", err)
	}
	_, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: variant.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("guest AddItem: %v", err)
	}

	// A concurrent merge already claimed the guest cart.
	if err := env.client.DB().Model(&models.Cart{}).
		Where("guest_token = ?", token).
		Update("status", enums.CartStatusCheckedOut).Error; err != nil {
		t.Fatalf("retiring guest cart: %v", err)
	}

	var guestCart models.Cart
	if err := env.client.DB().Preload("Items").
		First(&guestCart, "guest_token = ?", token).Error; err != nil {
		t.Fatalf("loading guest cart: %v", err)
	}
	var userCart models.Cart
	if err := env.client.DB().Preload("Items").
		First(&userCart, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("loading user cart: %v", err)
	}

	if err := env.svc.mergeCarts(ctx, &guestCart, &userCart); err != nil {
		t.Fatalf("mergeCarts: %v", err)
	}

	// Losing the claim must leave the user cart exactly as it was.
	view, _, err := env.svc.Resolve(ctx, user(userID, ""))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 2 {
		t.Fatalf("expected untouched user cart with quantity 2, got %+v", view.Items)
	}
	if view.SubtotalVND != 2000000 {
		t.Fatalf("expected subtotal 2000000, got %d", view.SubtotalVND)
	}
}

func TestSetQuantityNegativeRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	variant := env.mustCreateVariant(t, "NEG-01", 800000, 20)

	_, token, err := env.svc.AddItem(ctx, guest(""), AddItemRequest{VariantID: variant.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	view, _, err := env.svc.SetQuantity(ctx, guest(token), variant.ID, -3)
	if err != nil {
		t.Fatalf("SetQuantity(-3): %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Items))
	}
	if view.SubtotalVND != 0 {
		t.Fatalf("expected zero subtotal, got %d", view.SubtotalVND)
	}
}
