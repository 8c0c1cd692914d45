package checkout

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fjod/go_storefront/internal/domain"
)

// DeliveryDatePlaceholder is the value of the date selector before a date is chosen.
const DeliveryDatePlaceholder = "select-date"

var (
	nameRegex  = regexp.MustCompile(`^\p{L}[\p{L}\s-]*$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9\s()-]+$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func ValidName(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && nameRegex.MatchString(v)
}

// ValidPhone accepts an optional leading '+' followed by 7 to 20 digits,
// separated by spaces, dashes or parentheses.
func ValidPhone(v string) bool {
	v = strings.TrimSpace(v)
	if !phoneRegex.MatchString(v) {
		return false
	}
	digits := 0
	for _, r := range v {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 7 && digits <= 20
}

func ValidEmail(v string) bool {
	return emailRegex.MatchString(strings.TrimSpace(v))
}

func ValidDeliveryDate(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != DeliveryDatePlaceholder
}

func ValidDeliveryMethod(m domain.DeliveryMethod) bool {
	return m.IsValid()
}

func NotBlank(v string) bool {
	return strings.TrimSpace(v) != ""
}
