package services

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/nyaruka/phonenumbers"
)

var validate = validator.New()

// ContactNormalizer canonicalizes phone numbers and e-mail addresses so that
// lookups and OTP records agree on one spelling.
type ContactNormalizer struct {
	region string
}

// NewContactNormalizer creates a normalizer; numbers without a country code
// are read as belonging to region (ISO 3166-1 alpha-2).
func NewContactNormalizer(region string) *ContactNormalizer {
	return &ContactNormalizer{region: strings.ToUpper(region)}
}

// Phone returns raw in E.164 form. Numbers whose length cannot occur in
// their country's numbering plan are rejected.
func (n *ContactNormalizer) Phone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrPhoneInvalid
	}
	num, err := phonenumbers.Parse(raw, n.region)
	if err != nil {
		return "", domain.NewError(domain.CodeValidation, domain.ErrPhoneInvalid.Message, err)
	}
	if !phonenumbers.IsPossibleNumber(num) {
		return "", domain.ErrPhoneInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Email lower-cases and trims an address. An empty input stays empty.
func (n *ContactNormalizer) Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", nil
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", domain.NewError(domain.CodeValidation, domain.ErrEmailInvalid.Message, err)
	}
	return email, nil
}
