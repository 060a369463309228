package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCountry is the only country the shop ships to.
const DefaultCountry = "Sri Lanka"

// ShippingMethod is one of the fixed delivery options.
type ShippingMethod struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Fee   decimal.Decimal `json:"fee"`
}

var shippingMethods = []ShippingMethod{
	{ID: "reserve", Label: "Reserve - pay and reserve for collection", Fee: decimal.Zero},
	{ID: "courier", Label: "Courier Service - island wide [2-7 working days]", Fee: decimal.RequireFromString("350.00")},
	{ID: "gift", Label: "Gift - gift parcel service (gift wrap included)", Fee: decimal.RequireFromString("150.00")},
	{ID: "post", Label: "Standard post [2-7 working days]", Fee: decimal.RequireFromString("250.00")},
}

// ShippingMethods returns a copy of the fixed set, in display order.
func ShippingMethods() []ShippingMethod {
	out := make([]ShippingMethod, len(shippingMethods))
	copy(out, shippingMethods)
	return out
}

// LookupShippingMethod finds a method by id.
func LookupShippingMethod(id string) (ShippingMethod, bool) {
	for _, m := range shippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

// ShippingDetails is the shipping form.
type ShippingDetails struct {
	Email          string `json:"email" validate:"required,email"`
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Company        string `json:"company,omitempty"`
	Address        string `json:"address" validate:"required"`
	City           string `json:"city" validate:"required"`
	State          string `json:"state" validate:"required"`
	Zip            string `json:"zip" validate:"required"`
	Country        string `json:"country" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	ShippingMethod string `json:"shippingMethod" validate:"required,shipping_method"`
}

// Normalize trims every field and fills the fixed country.
func (s ShippingDetails) Normalize() ShippingDetails {
	s.Email = strings.TrimSpace(s.Email)
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.Company = strings.TrimSpace(s.Company)
	s.Address = strings.TrimSpace(s.Address)
	s.City = strings.TrimSpace(s.City)
	s.State = strings.TrimSpace(s.State)
	s.Zip = strings.TrimSpace(s.Zip)
	s.Country = strings.TrimSpace(s.Country)
	if s.Country == "" {
		s.Country = DefaultCountry
	}
	s.Phone = strings.TrimSpace(s.Phone)
	s.ShippingMethod = strings.TrimSpace(s.ShippingMethod)
	return s
}

// CardData is captured by the payment form. Only presence is checked.
type CardData struct {
	Name   string `json:"name" validate:"required"`
	Number string `json:"number" validate:"required"`
	Expiry string `json:"expiry" validate:"required"`
	CVC    string `json:"cvc" validate:"required"`
}

// MaskedCard is the part of CardData that may be kept after submission.
type MaskedCard struct {
	Name   string `json:"name"`
	Last4  string `json:"last4"`
	Expiry string `json:"expiry"`
}

// Mask drops the CVC and all but the last four digits.
func (c CardData) Mask() MaskedCard {
	digits := make([]rune, 0, len(c.Number))
	for _, r := range c.Number {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	last4 := string(digits)
	if len(digits) > 4 {
		last4 = string(digits[len(digits)-4:])
	}
	return MaskedCard{Name: c.Name, Last4: last4, Expiry: c.Expiry}
}
