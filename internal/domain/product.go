package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is the backend marker for an optional product attribute that has no value.
const NotAvailable = "N/A"

type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Weight           string          `json:"weight,omitempty"`
	AvailabilityDays string          `json:"availability_days,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	DetailURL        string          `json:"detail_url,omitempty"`
	CategoryKey      string          `json:"category_key"`
}

type Category struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// DisplayWeight returns the weight, or "" when the backend sent nothing or N/A.
func (p Product) DisplayWeight() string {
	return optional(p.Weight)
}

func (p Product) DisplayAvailability() string {
	return optional(p.AvailabilityDays)
}

func optional(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, NotAvailable) {
		return ""
	}
	return v
}
