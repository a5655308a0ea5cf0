package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeCartEmpty, status: http.StatusBadRequest, publicMsg: "cart is empty", detailsOK: true},
		{code: CodeInsufficientStock, status: http.StatusBadRequest, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing quantity")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing quantity" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "quantity"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDescribeUnwrapsDriverFault(t *testing.T) {
	root := &pq.Error{
		Code:       "23505",
		Constraint: "product_variants_sku_key",
		Table:      "product_variants",
		Column:     "sku",
		Detail:     "Key (sku)=(PUMP-01) already exists.",
		Message:    "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, root, "creating variant")

	report := Describe(err)
	if report.Code != CodeConflict {
		t.Fatalf("expected code %s, got %s", CodeConflict, report.Code)
	}
	if report.Summary == "" {
		t.Fatal("expected a summary")
	}
	if len(report.Causes) < 2 {
		t.Fatalf("expected the full cause chain, got %v", report.Causes)
	}
	if report.DB == nil {
		t.Fatal("expected driver detail to surface")
	}
	if report.DB.SQLState != "23505" || report.DB.Constraint != "product_variants_sku_key" {
		t.Fatalf("unexpected driver fault: %+v", report.DB)
	}
}

func TestDescribeNilError(t *testing.T) {
	report := Describe(nil)
	if report.Summary != "" || report.Code != "" || report.DB != nil {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestDescribePlainError(t *testing.T) {
	report := Describe(stdErrors.New("boom"))
	if report.Summary != "boom" {
		t.Fatalf("expected summary %q, got %q", "boom", report.Summary)
	}
	if report.Code != "" {
		t.Fatalf("expected no code, got %s", report.Code)
	}
	if report.DB != nil {
		t.Fatalf("expected no driver fault, got %+v", report.DB)
	}
}
