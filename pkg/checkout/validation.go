package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{9,12}$`)
	taxCodePattern = regexp.MustCompile(`^[0-9]{10}([0-9]{3})?$`)
)

// Contact is the buyer information collected at checkout.
type Contact struct {
	FullName    string
	Email       string
	Phone       string
	TaxCode     string
	AddressLine string
}

// FieldError names a single invalid contact field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Reason)
}

// ValidateContact checks completeness and format of the contact block.
// All field problems are reported at once.
func ValidateContact(c Contact) error {
	var err error

	if strings.TrimSpace(c.FullName) == "" {
		err = multierr.Append(err, FieldError{Field: "full_name", Reason: "is required"})
	}

	switch email := strings.TrimSpace(c.Email); {
	case email == "":
		err = multierr.Append(err, FieldError{Field: "email", Reason: "is required"})
	case !emailPattern.MatchString(email):
		err = multierr.Append(err, FieldError{Field: "email", Reason: "is not a valid email address"})
	}

	switch phone := normalizePhone(c.Phone); {
	case phone == "":
		err = multierr.Append(err, FieldError{Field: "phone", Reason: "is required"})
	case !phonePattern.MatchString(phone):
		err = multierr.Append(err, FieldError{Field: "phone", Reason: "is not a valid phone number"})
	}

	// Tax code is optional for retail buyers.
	if taxCode := strings.TrimSpace(c.TaxCode); taxCode != "" && !taxCodePattern.MatchString(taxCode) {
		err = multierr.Append(err, FieldError{Field: "tax_code", Reason: "must be 10 or 13 digits"})
	}

	if strings.TrimSpace(c.AddressLine) == "" {
		err = multierr.Append(err, FieldError{Field: "address_line", Reason: "is required"})
	}

	return err
}

// FieldErrors unpacks the aggregate from ValidateContact into details
// suitable for an API error payload.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var fields []FieldError
	for _, sub := range multierr.Errors(err) {
		if fe, ok := sub.(FieldError); ok {
			fields = append(fields, fe)
		}
	}
	return fields
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	return phone
}

// StockIssue describes a cart line that exceeds available stock.
type StockIssue struct {
	VariantID uuid.UUID `json:"variant_id"`
	SKU       string    `json:"sku"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// StockIssueDetails shapes stock shortages for an error payload.
func StockIssueDetails(issues []StockIssue) map[string]any {
	return map[string]any{"items": issues}
}
