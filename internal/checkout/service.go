package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhlong-dev/industro-backend/internal/cart"
	"github.com/minhlong-dev/industro-backend/internal/catalog"
	"github.com/minhlong-dev/industro-backend/internal/orders"
	pkgcheckout "github.com/minhlong-dev/industro-backend/pkg/checkout"
	"github.com/minhlong-dev/industro-backend/pkg/config"
	"github.com/minhlong-dev/industro-backend/pkg/db"
	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
	apperrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
	"github.com/minhlong-dev/industro-backend/pkg/promo"
)

// TxRunner executes a function inside a DB transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service prices carts and converts them into orders.
type Service struct {
	carts   *cart.Repo
	catalog *catalog.Repo
	orders  *orders.Repo
	promos  promo.Table
	tx      TxRunner
	cfg     config.CheckoutConfig
	logg    *logger.Logger
}

func NewService(
	carts *cart.Repo,
	catalogRepo *catalog.Repo,
	orderRepo *orders.Repo,
	promos promo.Table,
	tx TxRunner,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (*Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("checkout service requires a cart repo")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("checkout service requires a catalog repo")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("checkout service requires an order repo")
	}
	if promos == nil {
		return nil, fmt.Errorf("checkout service requires a promo table")
	}
	if tx == nil {
		return nil, fmt.Errorf("checkout service requires a tx runner")
	}
	if logg == nil {
		return nil, fmt.Errorf("checkout service requires a logger")
	}

	return &Service{
		carts:   carts,
		catalog: catalogRepo,
		orders:  orderRepo,
		promos:  promos,
		tx:      tx,
		cfg:     cfg,
		logg:    logg,
	}, nil
}

// Preview prices the caller's active cart without placing an order.
func (s *Service) Preview(ctx context.Context, id cart.Identity, promoCode string) (*Quote, error) {
	activeCart, err := s.loadActiveCart(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(activeCart.Items) == 0 {
		return nil, apperrors.New(apperrors.CodeCartEmpty, "cart has no items")
	}

	rule, err := s.resolvePromo(promoCode)
	if err != nil {
		return nil, err
	}

	quote := ComputeQuote(activeCart.SubtotalVND, rule, s.cfg)
	return &quote, nil
}

// PlaceOrder validates the cart, contact, promo and stock, then writes
// the order, decrements stock and retires the cart in one transaction.
func (s *Service) PlaceOrder(ctx context.Context, id cart.Identity, req PlaceOrderRequest) (*OrderView, error) {
	activeCart, err := s.loadActiveCart(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(activeCart.Items) == 0 {
		return nil, apperrors.New(apperrors.CodeCartEmpty, "cart has no items")
	}

	contact := pkgcheckout.Contact{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		TaxCode:     req.TaxCode,
		AddressLine: req.AddressLine,
	}
	if err := pkgcheckout.ValidateContact(contact); err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "contact information is invalid").
			WithDetails(pkgcheckout.FieldErrors(err))
	}

	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "unsupported payment method")
	}

	rule, err := s.resolvePromo(req.PromoCode)
	if err != nil {
		return nil, err
	}

	lines, err := s.loadOrderLines(ctx, activeCart)
	if err != nil {
		return nil, err
	}
	if issues := findStockIssues(activeCart, lines); len(issues) > 0 {
		return nil, apperrors.New(apperrors.CodeInsufficientStock, "some items exceed available stock").
			WithDetails(pkgcheckout.StockIssueDetails(issues))
	}

	quote := ComputeQuote(activeCart.SubtotalVND, rule, s.cfg)

	code, err := newOrderCode()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "generating order code")
	}

	order := buildOrder(activeCart, lines, contact, method, rule, quote, code, req.Note)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		// Claiming the cart first makes double-submits lose cleanly.
		claimed, err := cartRepo.MarkCheckedOut(ctx, activeCart.ID)
		if err != nil {
			return fmt.Errorf("claiming cart: %w", err)
		}
		if !claimed {
			return apperrors.New(apperrors.CodeStateConflict, "cart was already checked out")
		}

		for i := range activeCart.Items {
			item := &activeCart.Items[i]
			ok, err := catalogRepo.DecrementStock(ctx, item.VariantID, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrementing stock for %s: %w", item.SKU, err)
			}
			if !ok {
				return apperrors.New(apperrors.CodeInsufficientStock, "some items exceed available stock").
					WithDetails(pkgcheckout.StockIssueDetails([]pkgcheckout.StockIssue{{
						VariantID: item.VariantID,
						SKU:       item.SKU,
						Requested: item.Quantity,
					}}))
			}
		}

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		return cartRepo.UpdateTotals(ctx, activeCart.ID,
			quote.SubtotalVND, quote.DiscountVND, quote.TaxVND, quote.ShippingVND, quote.TotalVND)
	})
	if err != nil {
		if appErr := apperrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "placing order")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_code": order.Code,
		"total_vnd":  order.TotalVND,
	})
	s.logg.Info(ctx, "order placed")

	return toOrderView(order), nil
}

func (s *Service) loadActiveCart(ctx context.Context, id cart.Identity) (*models.Cart, error) {
	var (
		activeCart *models.Cart
		err        error
	)
	switch {
	case id.UserID != nil:
		activeCart, err = s.carts.GetActiveByUser(ctx, *id.UserID)
	case id.GuestToken != "":
		activeCart, err = s.carts.GetActiveByGuestToken(ctx, id.GuestToken)
	default:
		return nil, apperrors.New(apperrors.CodeCartEmpty, "cart has no items")
	}

	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeCartEmpty, "cart has no items")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading cart")
	}
	return activeCart, nil
}

func (s *Service) resolvePromo(code string) (*promo.Rule, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	rule, ok := s.promos.Lookup(code)
	if !ok {
		return nil, apperrors.New(apperrors.CodeValidation, "promo code is not valid")
	}
	return &rule, nil
}

func (s *Service) loadOrderLines(ctx context.Context, activeCart *models.Cart) (map[uuid.UUID]catalog.VariantWithTitle, error) {
	ids := make([]uuid.UUID, 0, len(activeCart.Items))
	for i := range activeCart.Items {
		ids = append(ids, activeCart.Items[i].VariantID)
	}

	variants, err := s.catalog.GetVariantsWithTitles(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading variants")
	}

	byID := make(map[uuid.UUID]catalog.VariantWithTitle, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}
	return byID, nil
}

// findStockIssues reports cart lines that exceed current stock or
// reference variants that have since disappeared or been disabled.
func findStockIssues(activeCart *models.Cart, lines map[uuid.UUID]catalog.VariantWithTitle) []pkgcheckout.StockIssue {
	var issues []pkgcheckout.StockIssue
	for i := range activeCart.Items {
		item := &activeCart.Items[i]
		variant, ok := lines[item.VariantID]
		if !ok || !variant.IsActive {
			issues = append(issues, pkgcheckout.StockIssue{
				VariantID: item.VariantID,
				SKU:       item.SKU,
				Requested: item.Quantity,
				Available: 0,
			})
			continue
		}
		if item.Quantity > variant.StockOnHand {
			issues = append(issues, pkgcheckout.StockIssue{
				VariantID: item.VariantID,
				SKU:       item.SKU,
				Requested: item.Quantity,
				Available: variant.StockOnHand,
			})
		}
	}
	return issues
}

func buildOrder(
	activeCart *models.Cart,
	lines map[uuid.UUID]catalog.VariantWithTitle,
	contact pkgcheckout.Contact,
	method enums.PaymentMethod,
	rule *promo.Rule,
	quote Quote,
	code string,
	note string,
) *models.Order {
	order := &models.Order{
		Code:          code,
		UserID:        activeCart.UserID,
		CartID:        &activeCart.ID,
		CustomerName:  strings.TrimSpace(contact.FullName),
		Email:         strings.ToLower(strings.TrimSpace(contact.Email)),
		Phone:         strings.TrimSpace(contact.Phone),
		AddressLine:   strings.TrimSpace(contact.AddressLine),
		PaymentMethod: method,
		SubtotalVND:   quote.SubtotalVND,
		DiscountVND:   quote.DiscountVND,
		TaxVND:        quote.TaxVND,
		ShippingVND:   quote.ShippingVND,
		TotalVND:      quote.TotalVND,
		Status:        enums.OrderStatusPending,
	}
	if taxCode := strings.TrimSpace(contact.TaxCode); taxCode != "" {
		order.TaxCode = &taxCode
	}
	if note = strings.TrimSpace(note); note != "" {
		order.Note = &note
	}
	if rule != nil {
		order.PromoCode = &rule.Code
	}

	for i := range activeCart.Items {
		item := &activeCart.Items[i]
		variantID := item.VariantID
		title := item.SKU
		if variant, ok := lines[variantID]; ok {
			title = variant.ProductTitle
			if variant.Name != "" {
				title = fmt.Sprintf("%s (%s)", variant.ProductTitle, variant.Name)
			}
		}
		order.Items = append(order.Items, models.OrderItem{
			VariantID:    &variantID,
			SKU:          item.SKU,
			Title:        title,
			Quantity:     item.Quantity,
			UnitPriceVND: item.UnitPriceVND,
			LineTotalVND: item.LineTotalVND,
		})
	}
	return order
}

// newOrderCode mints a human-readable unique order code.
func newOrderCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("DH-%s-%s",
		time.Now().UTC().Format("20060102"),
		strings.ToUpper(hex.EncodeToString(buf))), nil
}
