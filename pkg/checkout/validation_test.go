package checkout

import "testing"

func validContact() Contact {
	return Contact{
		FullName:    "Nguyen Van A",
		Email:       "a.nguyen@example.com",
		Phone:       "+84901234567",
		TaxCode:     "0312345678",
		AddressLine: "12 Le Loi, District 1, HCMC",
	}
}

func TestValidateContactAccepts(t *testing.T) {
	t.Parallel()

	if err := ValidateContact(validContact()); err != nil {
		t.Fatalf("expected valid contact, got %v", err)
	}

	// Tax code is optional.
	c := validContact()
	c.TaxCode = ""
	if err := ValidateContact(c); err != nil {
		t.Fatalf("expected contact without tax code to be valid, got %v", err)
	}

	// 13-digit branch tax codes are allowed.
	c = validContact()
	c.TaxCode = "0312345678001"
	if err := ValidateContact(c); err != nil {
		t.Fatalf("expected 13-digit tax code to be valid, got %v", err)
	}
}

func TestValidateContactAggregatesAllProblems(t *testing.T) {
	t.Parallel()

	err := ValidateContact(Contact{})
	if err == nil {
		t.Fatal("expected errors for empty contact")
	}

	fields := FieldErrors(err)
	want := map[string]bool{
		"full_name":    false,
		"email":        false,
		"phone":        false,
		"address_line": false,
	}
	for _, fe := range fields {
		if _, ok := want[fe.Field]; !ok {
			t.Fatalf("unexpected field %q", fe.Field)
		}
		want[fe.Field] = true
	}
	for field, seen := range want {
		if !seen {
			t.Fatalf("expected an error for %q", field)
		}
	}
}

func TestValidateContactFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Contact)
		field  string
	}{
		{"bad email", func(c *Contact) { c.Email = "not-an-email" }, "email"},
		{"short phone", func(c *Contact) { c.Phone = "+8490" }, "phone"},
		{"letters in phone", func(c *Contact) { c.Phone = "09012345ab" }, "phone"},
		{"bad tax code length", func(c *Contact) { c.TaxCode = "12345" }, "tax_code"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := validContact()
			tc.mutate(&c)

			fields := FieldErrors(ValidateContact(c))
			if len(fields) != 1 || fields[0].Field != tc.field {
				t.Fatalf("expected a single %q error, got %+v", tc.field, fields)
			}
		})
	}
}

func TestValidateContactNormalizesPhone(t *testing.T) {
	t.Parallel()

	c := validContact()
	c.Phone = "+84 90-123-4567"
	if err := ValidateContact(c); err != nil {
		t.Fatalf("expected spaced phone to normalize, got %v", err)
	}
}
