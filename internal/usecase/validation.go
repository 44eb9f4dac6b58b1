package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// ValidateSubmission normalises the checkout form and reports every invalid field.
func ValidateSubmission(sub *model.OrderSubmission) error {
	if sub == nil {
		return domainErrors.NewValidationError("order", "is required")
	}
	sub.BuyerName = strings.TrimSpace(sub.BuyerName)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.TelegramUsername = strings.TrimPrefix(strings.TrimSpace(sub.TelegramUsername), "@")
	sub.TransactionID = strings.TrimSpace(sub.TransactionID)
	sub.PaymentMethod = model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(sub.PaymentMethod))))

	err := validate.Struct(sub)
	if sub.Proof != nil && (sub.Proof.Content == nil || strings.TrimSpace(sub.Proof.Filename) == "") {
		fields := map[string]string{"payment_proof": "is required"}
		mergeValidation(fields, err)
		return &domainErrors.ValidationError{Fields: fields}
	}
	if err == nil {
		return nil
	}
	fields := map[string]string{}
	mergeValidation(fields, err)
	return &domainErrors.ValidationError{Fields: fields}
}

func mergeValidation(fields map[string]string, err error) {
	if err == nil {
		return
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		fields["order"] = "is invalid"
		return
	}
	for _, fe := range errs {
		fields[fe.Field()] = validationMessage(fe)
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gt":
		return fmt.Sprintf("must be at least %s", minParam(fe))
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}

func minParam(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		var n int
		if _, err := fmt.Sscanf(fe.Param(), "%d", &n); err == nil {
			return fmt.Sprint(n + 1)
		}
	}
	return fe.Param()
}
