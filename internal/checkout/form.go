// Package checkout validates customer shipping details and builds the
// Instagram hand-off message for submitted orders.
package checkout

import (
	"regexp"
	"strings"
)

var (
	// phonePattern matches Algerian mobile numbers: leading 0, then 5/6/7,
	// then 8 digits. Internal whitespace is stripped before matching.
	phonePattern = regexp.MustCompile(`^0[567]\d{8}$`)
	// instagramPattern matches handles of 1-30 letters, digits, dots or
	// underscores, after any leading @ has been stripped.
	instagramPattern = regexp.MustCompile(`^[a-zA-Z0-9._]{1,30}$`)
)

// Form holds the customer-supplied checkout fields, all required.
type Form struct {
	FirstName string
	LastName  string
	Phone     string
	Wilaya    string
	Commune   string
	Instagram string
}

// Errors maps field names to i18n message keys. Empty means the form is valid.
type Errors map[string]string

// Normalized returns the form with whitespace trimmed, the phone compacted,
// and the Instagram handle stripped of its leading @.
func (f Form) Normalized() Form {
	return Form{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Phone:     compactPhone(f.Phone),
		Wilaya:    strings.TrimSpace(f.Wilaya),
		Commune:   strings.TrimSpace(f.Commune),
		Instagram: NormalizeHandle(f.Instagram),
	}
}

// Validate checks every field and returns the field errors, keyed by field
// name with i18n message keys as values.
func (f Form) Validate() Errors {
	e := Errors{}
	if strings.TrimSpace(f.FirstName) == "" {
		e["firstName"] = "form.errors.firstName"
	}
	if strings.TrimSpace(f.LastName) == "" {
		e["lastName"] = "form.errors.lastName"
	}
	phone := compactPhone(f.Phone)
	if phone == "" {
		e["phone"] = "form.errors.phone"
	} else if !phonePattern.MatchString(phone) {
		e["phone"] = "form.errors.phoneInvalid"
	}
	wilaya := strings.TrimSpace(f.Wilaya)
	if wilaya == "" || !IsWilaya(wilaya) {
		e["wilaya"] = "form.errors.wilaya"
	}
	if strings.TrimSpace(f.Commune) == "" {
		e["commune"] = "form.errors.commune"
	}
	handle := NormalizeHandle(f.Instagram)
	if handle == "" {
		e["instagram"] = "form.errors.instagram"
	} else if !IsValidHandle(handle) {
		e["instagram"] = "form.errors.instagramInvalid"
	}
	return e
}

// Valid reports whether the form passes all validation rules.
func (f Form) Valid() bool {
	return len(f.Validate()) == 0
}

// NormalizeHandle trims whitespace and strips a single leading @.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// IsValidHandle reports whether the (already normalized) handle is a legal
// Instagram username.
func IsValidHandle(handle string) bool {
	return instagramPattern.MatchString(NormalizeHandle(handle))
}

// IsValidPhone reports whether the phone number is a valid Algerian mobile
// number once internal whitespace is removed.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(compactPhone(phone))
}

func compactPhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}
