package checkout

import (
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

// Form field names, as posted by the checkout screen.
const (
	FieldLastName       = "last_name"
	FieldFirstName      = "first_name"
	FieldMiddleName     = "middle_name"
	FieldPhone          = "phone"
	FieldEmail          = "email"
	FieldDeliveryDate   = "delivery_date"
	FieldDeliveryMethod = "delivery_method"
	FieldCity           = "city"
	FieldAddressLine    = "address_line"
	FieldCourierComment = "courier_comment"
	FieldPickupAddress  = "pickup_address"
	FieldPickupComment  = "pickup_comment"
	FieldPaymentMethod  = "payment_method"
)

const (
	MsgLastName       = "Please enter a valid last name (letters, spaces and hyphens only)"
	MsgFirstName      = "Please enter a valid first name (letters, spaces and hyphens only)"
	MsgMiddleName     = "Please enter a valid middle name (letters, spaces and hyphens only)"
	MsgPhone          = "Please enter a valid phone number, for example +1 (555) 123-4567"
	MsgEmail          = "Please enter a valid email address"
	MsgDeliveryDate   = "Please select a delivery date"
	MsgDeliveryMethod = "Please select a delivery method"
	MsgCity           = "Please enter the delivery city"
	MsgAddressLine    = "Please enter the delivery address"
	MsgPickupAddress  = "Please select a pickup point"
	MsgPaymentMethod  = "Please select a payment method"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	IsValid bool         `json:"is_valid"`
	Errors  []FieldError `json:"errors"`
}

// Messages returns the error messages in field order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

type rule struct {
	field   string
	message string
	applies func(d domain.OrderDetails) bool
	valid   func(d domain.OrderDetails) bool
}

func always(domain.OrderDetails) bool { return true }

func courierOnly(d domain.OrderDetails) bool { return d.DeliveryMethod == domain.DeliveryCourier }

func pickupOnly(d domain.OrderDetails) bool { return d.DeliveryMethod == domain.DeliveryPickup }

// rules are evaluated in field-declaration order.
var rules = []rule{
	{FieldLastName, MsgLastName, always, func(d domain.OrderDetails) bool { return ValidName(d.LastName) }},
	{FieldFirstName, MsgFirstName, always, func(d domain.OrderDetails) bool { return ValidName(d.FirstName) }},
	{FieldMiddleName, MsgMiddleName, always, func(d domain.OrderDetails) bool { return ValidName(d.MiddleName) }},
	{FieldPhone, MsgPhone, always, func(d domain.OrderDetails) bool { return ValidPhone(d.Phone) }},
	{FieldEmail, MsgEmail, always, func(d domain.OrderDetails) bool { return ValidEmail(d.Email) }},
	{FieldDeliveryDate, MsgDeliveryDate, always, func(d domain.OrderDetails) bool { return ValidDeliveryDate(d.DeliveryDate) }},
	{FieldDeliveryMethod, MsgDeliveryMethod, always, func(d domain.OrderDetails) bool { return ValidDeliveryMethod(d.DeliveryMethod) }},
	{FieldCity, MsgCity, courierOnly, func(d domain.OrderDetails) bool { return NotBlank(d.City) }},
	{FieldAddressLine, MsgAddressLine, courierOnly, func(d domain.OrderDetails) bool { return NotBlank(d.AddressLine) }},
	{FieldPickupAddress, MsgPickupAddress, pickupOnly, func(d domain.OrderDetails) bool { return NotBlank(d.PickupAddress) }},
	{FieldPaymentMethod, MsgPaymentMethod, always, func(d domain.OrderDetails) bool { return NotBlank(d.PaymentMethod) }},
}

// ValidateOrderForm runs every field rule and collects one message per failing rule.
func ValidateOrderForm(details domain.OrderDetails) Result {
	result := Result{IsValid: true, Errors: []FieldError{}}
	for _, r := range rules {
		if !r.applies(details) || r.valid(details) {
			continue
		}
		result.IsValid = false
		result.Errors = append(result.Errors, FieldError{Field: r.field, Message: r.message})
	}
	return result
}

// RequiredFields lists the fields that must be filled for the given delivery method.
func RequiredFields(method domain.DeliveryMethod) []string {
	probe := domain.OrderDetails{DeliveryMethod: method}
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.applies(probe) {
			out = append(out, r.field)
		}
	}
	return out
}

// ExtractOrderDetails builds the typed form from raw field values. Only the
// address variant of the selected delivery method is kept.
func ExtractOrderDetails(raw map[string]string) domain.OrderDetails {
	get := func(field string) string { return strings.TrimSpace(raw[field]) }

	details := domain.OrderDetails{
		LastName:       get(FieldLastName),
		FirstName:      get(FieldFirstName),
		MiddleName:     get(FieldMiddleName),
		Phone:          get(FieldPhone),
		Email:          get(FieldEmail),
		DeliveryDate:   get(FieldDeliveryDate),
		DeliveryMethod: domain.DeliveryMethod(get(FieldDeliveryMethod)),
		City:           get(FieldCity),
		AddressLine:    get(FieldAddressLine),
		CourierComment: get(FieldCourierComment),
		PickupAddress:  get(FieldPickupAddress),
		PickupComment:  get(FieldPickupComment),
		PaymentMethod:  get(FieldPaymentMethod),
	}
	return SwitchDeliveryMethod(details, details.DeliveryMethod)
}

// SwitchDeliveryMethod selects a delivery method and clears the fields of the other variant.
func SwitchDeliveryMethod(details domain.OrderDetails, method domain.DeliveryMethod) domain.OrderDetails {
	details.DeliveryMethod = method
	if method != domain.DeliveryCourier {
		details.City = ""
		details.AddressLine = ""
		details.CourierComment = ""
	}
	if method != domain.DeliveryPickup {
		details.PickupAddress = ""
		details.PickupComment = ""
	}
	return details
}

// SetField updates a single form field. Fields of the unselected address
// variant stay empty. It reports false for unknown fields.
func SetField(details domain.OrderDetails, field, value string) (domain.OrderDetails, bool) {
	switch field {
	case FieldLastName:
		details.LastName = value
	case FieldFirstName:
		details.FirstName = value
	case FieldMiddleName:
		details.MiddleName = value
	case FieldPhone:
		details.Phone = value
	case FieldEmail:
		details.Email = value
	case FieldDeliveryDate:
		details.DeliveryDate = value
	case FieldDeliveryMethod:
		details.DeliveryMethod = domain.DeliveryMethod(value)
	case FieldCity:
		details.City = value
	case FieldAddressLine:
		details.AddressLine = value
	case FieldCourierComment:
		details.CourierComment = value
	case FieldPickupAddress:
		details.PickupAddress = value
	case FieldPickupComment:
		details.PickupComment = value
	case FieldPaymentMethod:
		details.PaymentMethod = value
	default:
		return details, false
	}
	return SwitchDeliveryMethod(details, details.DeliveryMethod), true
}
