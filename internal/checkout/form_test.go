package checkout

import (
	"strings"
	"testing"
)

func validForm() Form {
	return Form{
		FirstName: "Amina",
		LastName:  "Benali",
		Phone:     "0551234567",
		Wilaya:    "Alger",
		Commune:   "Bab El Oued",
		Instagram: "jane_doe.21",
	}
}

func TestValidateAcceptsCompleteForm(t *testing.T) {
	if errs := validForm().Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestPhoneValidation(t *testing.T) {
	accept := []string{"0551234567", "0661234567", "0771234567", "05 51 23 45 67"}
	for _, p := range accept {
		if !IsValidPhone(p) {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	reject := []string{"0441234567", "551234567", "05512345678", "055123456", "06512a4567", ""}
	for _, p := range reject {
		if IsValidPhone(p) {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}

func TestInstagramHandleValidation(t *testing.T) {
	if !IsValidHandle("jane_doe.21") {
		t.Fatalf("expected jane_doe.21 to be valid")
	}
	if !IsValidHandle("@jane_doe.21") {
		t.Fatalf("expected leading @ to be stripped before validation")
	}
	if IsValidHandle("jane doe!") {
		t.Fatalf("expected handle with space and punctuation to be invalid")
	}
	if IsValidHandle(strings.Repeat("a", 31)) {
		t.Fatalf("expected 31-character handle to be invalid")
	}
	if !IsValidHandle(strings.Repeat("a", 30)) {
		t.Fatalf("expected 30-character handle to be valid")
	}
	if IsValidHandle("") {
		t.Fatalf("expected empty handle to be invalid")
	}
}

func TestValidateFlagsEachMissingField(t *testing.T) {
	errs := Form{}.Validate()
	for _, field := range []string{"firstName", "lastName", "phone", "wilaya", "commune", "instagram"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
}

func TestValidateRejectsUnknownWilaya(t *testing.T) {
	f := validForm()
	f.Wilaya = "Atlantis"
	errs := f.Validate()
	if errs["wilaya"] == "" {
		t.Fatalf("expected wilaya error, got %v", errs)
	}
}

func TestValidateRejectsBadPhoneWithMessageKey(t *testing.T) {
	f := validForm()
	f.Phone = "0441234567"
	errs := f.Validate()
	if errs["phone"] != "form.errors.phoneInvalid" {
		t.Fatalf("unexpected phone error %q", errs["phone"])
	}
}

func TestNormalizedStripsNoiseFromFields(t *testing.T) {
	f := Form{
		FirstName: "  Amina ",
		LastName:  " Benali",
		Phone:     "05 51 23 45 67",
		Wilaya:    " Alger ",
		Commune:   " Bab El Oued ",
		Instagram: "@jane_doe.21",
	}
	n := f.Normalized()
	if n.FirstName != "Amina" || n.LastName != "Benali" {
		t.Fatalf("unexpected names %q %q", n.FirstName, n.LastName)
	}
	if n.Phone != "0551234567" {
		t.Fatalf("unexpected phone %q", n.Phone)
	}
	if n.Instagram != "jane_doe.21" {
		t.Fatalf("unexpected handle %q", n.Instagram)
	}
}

func TestDMMessageListsOrderDetails(t *testing.T) {
	msg := DMMessage(OrderSummary{
		Customer:    validForm(),
		ProductName: "Bouquet Rose",
		Quantity:    2,
		Supplements: []string{"Ruban doré"},
		Total:       5600,
	})
	for _, want := range []string{
		"Nouvelle commande",
		"Amina Benali",
		"0551234567",
		"Alger",
		"Bab El Oued",
		"@jane_doe.21",
		"Bouquet Rose",
		"Quantité : 2",
		"Ruban doré",
		"5 600 DA",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q:\n%s", want, msg)
		}
	}
}

func TestWilayaListHas58Entries(t *testing.T) {
	if len(Wilayas) != 58 {
		t.Fatalf("expected 58 wilayas, got %d", len(Wilayas))
	}
	if !IsWilaya("Oran") || IsWilaya("oran") {
		t.Fatalf("expected exact-name matching")
	}
}
