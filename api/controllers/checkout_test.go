package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/minhlong-dev/industro-backend/internal/cart"
	"github.com/minhlong-dev/industro-backend/internal/catalog"
	"github.com/minhlong-dev/industro-backend/internal/checkout"
	"github.com/minhlong-dev/industro-backend/internal/orders"
	"github.com/minhlong-dev/industro-backend/pkg/config"
	"github.com/minhlong-dev/industro-backend/pkg/db"
	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
	"github.com/minhlong-dev/industro-backend/pkg/promo"
	"github.com/minhlong-dev/industro-backend/pkg/types"
)

type checkoutTestEnv struct {
	router http.Handler
	client *db.Client
}

func newCheckoutTestEnv(t *testing.T) *checkoutTestEnv {
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
		&models.Brand{},
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "checkout-handler-test"})

	cartRepo, err := cart.NewRepo(client.DB())
	if err != nil {
		t.Fatalf("cart.NewRepo: %v", err)
	}
	catalogRepo, err := catalog.NewRepo(client.DB())
	if err != nil {
		t.Fatalf("catalog.NewRepo: %v", err)
	}
	orderRepo, err := orders.NewRepo(client.DB())
	if err != nil {
		t.Fatalf("orders.NewRepo: %v", err)
	}

	cartSvc, err := cart.NewService(cartRepo, catalogRepo, client, logg)
	if err != nil {
		t.Fatalf("cart.NewService: %v", err)
	}
	checkoutSvc, err := checkout.NewService(
		cartRepo,
		catalogRepo,
		orderRepo,
		promo.DefaultTable(),
		client,
		config.CheckoutConfig{VATPercent: 10, ShippingFeeVND: 30000},
		logg,
	)
	if err != nil {
		t.Fatalf("checkout.NewService: %v", err)
	}

	r := chi.NewRouter()
	r.Post("/cart/items", CartAddItem(cartSvc, testCartCfg, nil))
	r.Post("/checkout/preview", CheckoutPreview(checkoutSvc, testCartCfg, nil))
	r.Post("/checkout", CheckoutPlaceOrder(checkoutSvc, testCartCfg, nil))

	return &checkoutTestEnv{router: r, client: client}
}

func (e *checkoutTestEnv) mustCreateVariant(t *testing.T, title, sku string, price int64, stock int) *models.ProductVariant {
	t.Helper()

	brand := &models.Brand{Name: "Testco " + sku, Slug: "testco-" + sku}
	if err := e.client.DB().Create(brand).Error; err != nil {
		t.Fatalf("create brand: %v", err)
	}
	category := &models.Category{Name: "General " + sku, Slug: "general-" + sku}
	if err := e.client.DB().Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	product := &models.Product{
		BrandID:    brand.ID,
		CategoryID: category.ID,
		Title:      title,
		Slug:       catalog.Slugify(title + " " + sku),
		IsActive:   true,
	}
	if err := e.client.DB().Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	variant := &models.ProductVariant{
		ProductID:   product.ID,
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

func (e *checkoutTestEnv) seedCart(t *testing.T, variant *models.ProductVariant, qty int) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]any{"variant_id": variant.ID, "quantity": qty})
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed cart: %d %s", rec.Code, rec.Body.String())
	}
	return guestCookie(t, rec)
}

func validContact() map[string]any {
	return map[string]any{
		"full_name":      "Nguyen Van A",
		"email":          "a.nguyen@example.com",
		"phone":          "+84912345678",
		"address_line":   "12 Nguyen Trai, Ha Noi",
		"payment_method": "cod",
	}
}

func TestCheckoutPlaceOrderWithPromo(t *testing.T) {
	t.Parallel()

	env := newCheckoutTestEnv(t)
	variant := env.mustCreateVariant(t, "May khoan Bosch GSB 550", "BOSCH-GSB-550", 500_000, 10)
	cookie := env.seedCart(t, variant, 2)

	payload := validContact()
	payload["promo_code"] = "giam10"
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data checkout.OrderView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode order view: %v", err)
	}

	order := envelope.Data
	if order.Quote.SubtotalVND != 1_000_000 {
		t.Fatalf("expected subtotal 1,000,000, got %d", order.Quote.SubtotalVND)
	}
	if order.Quote.DiscountVND != 100_000 {
		t.Fatalf("expected discount 100,000, got %d", order.Quote.DiscountVND)
	}
	if order.Quote.TaxVND != 90_000 {
		t.Fatalf("expected VAT 90,000, got %d", order.Quote.TaxVND)
	}
	if order.Quote.TotalVND != 1_020_000 {
		t.Fatalf("expected total 1,020,000, got %d", order.Quote.TotalVND)
	}
	if order.Code == "" {
		t.Fatal("expected an order code")
	}

	// The guest cookie is retired on success.
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCartCfg.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected the guest cookie to be cleared")
	}
}

func TestCheckoutPreviewLeavesCartOpen(t *testing.T) {
	t.Parallel()

	env := newCheckoutTestEnv(t)
	variant := env.mustCreateVariant(t, "May cat Makita", "MKT-CUT-01", 1_000_000, 4)
	cookie := env.seedCart(t, variant, 1)

	body, _ := json.Marshal(map[string]any{"promo_code": "FREESHIP"})
	req := httptest.NewRequest(http.MethodPost, "/checkout/preview", bytes.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data checkout.Quote `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if envelope.Data.ShippingVND != 0 {
		t.Fatalf("expected free shipping, got %d", envelope.Data.ShippingVND)
	}

	// Preview must not consume the cart; a second preview still works.
	req = httptest.NewRequest(http.MethodPost, "/checkout/preview", bytes.NewReader(body))
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat preview, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	t.Parallel()

	env := newCheckoutTestEnv(t)

	body, _ := json.Marshal(validContact())
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "CART_EMPTY" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestCheckoutInsufficientStockDetails(t *testing.T) {
	t.Parallel()

	env := newCheckoutTestEnv(t)
	variant := env.mustCreateVariant(t, "May han Hong Ky", "HK-WELD-200", 2_000_000, 1)
	cookie := env.seedCart(t, variant, 3)

	body, _ := json.Marshal(validContact())
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
	if envelope.Error.Details == nil {
		t.Fatal("expected stock details in payload")
	}
}
