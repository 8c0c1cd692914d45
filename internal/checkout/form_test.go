package checkout

import (
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCourierForm() map[string]string {
	return map[string]string{
		FieldLastName:       "Smith-Jones",
		FieldFirstName:      "Anna",
		FieldMiddleName:     "Marie",
		FieldPhone:          "+1 (555) 123-4567",
		FieldEmail:          "anna@example.com",
		FieldDeliveryDate:   "2026-10-20",
		FieldDeliveryMethod: "courier",
		FieldCity:           "Springfield",
		FieldAddressLine:    "12 Baker Street",
		FieldPaymentMethod:  "card",
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) bool
		value string
		want  bool
	}{
		{"name with letters", ValidName, "Anna", true},
		{"name with unicode letters", ValidName, "Zoë Ørsted", true},
		{"name with hyphen", ValidName, "Smith-Jones", true},
		{"name with digit", ValidName, "Anna2", false},
		{"blank name", ValidName, "   ", false},
		{"name of a single hyphen", ValidName, "-", false},
		{"name of hyphens and spaces", ValidName, "- -", false},
		{"name starting with hyphen", ValidName, "-Anna", false},
		{"name padded with spaces", ValidName, "  Anna Maria  ", true},
		{"phone international", ValidPhone, "+44 20 7946 0958", true},
		{"phone with parentheses", ValidPhone, "(555) 123-4567", true},
		{"phone too short", ValidPhone, "123-45", false},
		{"phone too long", ValidPhone, "+123456789012345678901", false},
		{"phone with letters", ValidPhone, "555-CALL-NOW", false},
		{"phone plus in the middle", ValidPhone, "555+1234567", false},
		{"email", ValidEmail, "a.b+c@shop.example.org", true},
		{"email without tld", ValidEmail, "a@shop", false},
		{"email without at", ValidEmail, "shop.example.org", false},
		{"date", ValidDeliveryDate, "2026-10-20", true},
		{"date placeholder", ValidDeliveryDate, DeliveryDatePlaceholder, false},
		{"date empty", ValidDeliveryDate, "", false},
		{"not blank", NotBlank, " x ", true},
		{"blank", NotBlank, " \t", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.value))
		})
	}
}

func TestValidateOrderForm_Valid(t *testing.T) {
	result := ValidateOrderForm(ExtractOrderDetails(validCourierForm()))
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateOrderForm_AllEmpty(t *testing.T) {
	first := ValidateOrderForm(ExtractOrderDetails(map[string]string{}))
	second := ValidateOrderForm(ExtractOrderDetails(map[string]string{}))

	assert.False(t, first.IsValid)
	assert.Equal(t, []string{
		MsgLastName, MsgFirstName, MsgMiddleName, MsgPhone, MsgEmail,
		MsgDeliveryDate, MsgDeliveryMethod, MsgPaymentMethod,
	}, first.Messages())
	assert.Equal(t, first, second)
}

func TestValidateOrderForm_DeliveryConditionalFields(t *testing.T) {
	courier := validCourierForm()
	delete(courier, FieldCity)
	delete(courier, FieldAddressLine)

	result := ValidateOrderForm(ExtractOrderDetails(courier))
	require.False(t, result.IsValid)
	assert.Equal(t, []string{MsgCity, MsgAddressLine}, result.Messages())

	pickup := validCourierForm()
	pickup[FieldDeliveryMethod] = "pickup"
	pickup[FieldPickupAddress] = "   "

	result = ValidateOrderForm(ExtractOrderDetails(pickup))
	require.False(t, result.IsValid)
	assert.Equal(t, []FieldError{{Field: FieldPickupAddress, Message: MsgPickupAddress}}, result.Errors)
}

func TestValidateOrderForm_UnknownDeliveryMethod(t *testing.T) {
	form := validCourierForm()
	form[FieldDeliveryMethod] = "drone"

	result := ValidateOrderForm(ExtractOrderDetails(form))
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{MsgDeliveryMethod}, result.Messages())
}

func TestExtractOrderDetails_KeepsOnlySelectedVariant(t *testing.T) {
	form := validCourierForm()
	form[FieldPickupAddress] = "Main square kiosk"
	form[FieldPickupComment] = "after 5pm"

	details := ExtractOrderDetails(form)
	assert.Equal(t, "Springfield", details.City)
	assert.Empty(t, details.PickupAddress)
	assert.Empty(t, details.PickupComment)
}

func TestSwitchDeliveryMethod(t *testing.T) {
	courier := ExtractOrderDetails(validCourierForm())
	courier.CourierComment = "ring twice"

	pickup := SwitchDeliveryMethod(courier, domain.DeliveryPickup)
	assert.Empty(t, pickup.City)
	assert.Empty(t, pickup.AddressLine)
	assert.Empty(t, pickup.CourierComment)
	assert.Contains(t, RequiredFields(domain.DeliveryPickup), FieldPickupAddress)
	assert.NotContains(t, RequiredFields(domain.DeliveryPickup), FieldCity)

	pickup.PickupAddress = "Main square kiosk"
	back := SwitchDeliveryMethod(pickup, domain.DeliveryCourier)
	assert.Empty(t, back.PickupAddress)
	assert.Contains(t, RequiredFields(domain.DeliveryCourier), FieldCity)
	assert.Contains(t, RequiredFields(domain.DeliveryCourier), FieldAddressLine)
	assert.NotContains(t, RequiredFields(domain.DeliveryCourier), FieldPickupAddress)

	// identity fields survive the switch
	assert.Equal(t, courier.Email, back.Email)
}

func TestSetField(t *testing.T) {
	details := domain.OrderDetails{DeliveryMethod: domain.DeliveryPickup}

	details, ok := SetField(details, FieldPickupAddress, "Main square kiosk")
	require.True(t, ok)
	assert.Equal(t, "Main square kiosk", details.PickupAddress)

	details, ok = SetField(details, FieldCity, "Springfield")
	require.True(t, ok)
	assert.Empty(t, details.City)

	details, ok = SetField(details, FieldDeliveryMethod, "courier")
	require.True(t, ok)
	assert.Empty(t, details.PickupAddress)

	_, ok = SetField(details, "favourite_colour", "blue")
	assert.False(t, ok)
}
