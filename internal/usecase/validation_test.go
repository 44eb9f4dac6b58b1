package usecase

import (
	"errors"
	"strings"
	"testing"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

func validSubmission() *model.OrderSubmission {
	return &model.OrderSubmission{
		ProductID:        1,
		BuyerName:        "  Sam  ",
		Email:            "sam@example.com",
		Phone:            "0555000000",
		TelegramUsername: "@sam_tg",
		PaymentMethod:    "CCP",
		Proof:            &model.Upload{Filename: "proof.png", Content: strings.NewReader("png")},
	}
}

func TestValidateSubmissionNormalises(t *testing.T) {
	sub := validSubmission()
	if err := ValidateSubmission(sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.BuyerName != "Sam" {
		t.Fatalf("expected trimmed name, got %q", sub.BuyerName)
	}
	if sub.TelegramUsername != "sam_tg" {
		t.Fatalf("expected handle without @, got %q", sub.TelegramUsername)
	}
	if sub.PaymentMethod != model.PaymentCCP {
		t.Fatalf("expected lower-cased payment method, got %q", sub.PaymentMethod)
	}
}

func TestValidateSubmissionReportsFields(t *testing.T) {
	sub := &model.OrderSubmission{Email: "not-an-email", PaymentMethod: "cash"}
	err := ValidateSubmission(sub)
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *domainErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	want := map[string]string{
		"product_id":     "is required",
		"buyer_name":     "is required",
		"email":          "must be a valid email",
		"phone":          "is required",
		"payment_method": "must be one of baridimob, ccp",
		"payment_proof":  "is required",
	}
	for field, msg := range want {
		if got := verr.Fields[field]; got != msg {
			t.Errorf("field %s: expected %q, got %q", field, msg, got)
		}
	}
}

func TestValidateSubmissionRejectsEmptyProof(t *testing.T) {
	sub := validSubmission()
	sub.Proof = &model.Upload{Filename: " "}
	var verr *domainErrors.ValidationError
	if err := ValidateSubmission(sub); !errors.As(err, &verr) || verr.Fields["payment_proof"] != "is required" {
		t.Fatalf("expected proof error, got %v", err)
	}
}

func TestValidateSubmissionLimits(t *testing.T) {
	sub := validSubmission()
	sub.BuyerName = strings.Repeat("a", 121)
	var verr *domainErrors.ValidationError
	if err := ValidateSubmission(sub); !errors.As(err, &verr) || verr.Fields["buyer_name"] != "must be at most 120" {
		t.Fatalf("expected max length error, got %v", err)
	}

	if err := ValidateSubmission(nil); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for nil submission, got %v", err)
	}
}
