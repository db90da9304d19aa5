package utils

import (
	"testing"

	"github.com/Govind-619/PaySphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhoneNumber(t *testing.T) {
	cases := map[string]string{
		"9876543210":      "9876543210",
		"+91 98765 43210": "9876543210",
		"09876543210":     "9876543210",
		"91-9876-543-210": "9876543210",
	}
	for in, want := range cases {
		got, err := FormatPhoneNumber(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := FormatPhoneNumber("5876543210")
	assert.Error(t, err)
	_, err = FormatPhoneNumber("98765")
	assert.Error(t, err)
}

func TestValidateGSTIN(t *testing.T) {
	ok, _ := ValidateGSTIN("")
	assert.True(t, ok, "GSTIN is optional")

	ok, _ = ValidateGSTIN("27AAPFU0939F1ZV")
	assert.True(t, ok)
	ok, _ = ValidateGSTIN("27aapfu0939f1zv")
	assert.True(t, ok, "case is normalised")

	ok, msg := ValidateGSTIN("27AAPFU0939F1XV")
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestValidateUPIID(t *testing.T) {
	ok, _ := ValidateUPIID("asha.rao@okaxis")
	assert.True(t, ok)
	ok, _ = ValidateUPIID("asha.rao")
	assert.False(t, ok)
	ok, _ = ValidateUPIID("a@1")
	assert.False(t, ok)
}

func validAddress() models.Address {
	return models.Address{
		Line1:      "Flat 4B, Sea View",
		City:       "Mumbai",
		State:      "Maharashtra",
		PostalCode: "400001",
	}
}

func TestValidateAddress(t *testing.T) {
	assert.Empty(t, ValidateAddress("billing_address", validAddress()))

	a := validAddress()
	a.Country = "India"
	a.Phone = "+919876543210"
	assert.Empty(t, ValidateAddress("billing_address", a))

	a = validAddress()
	a.State = "  "
	a.PostalCode = "012345"
	a.City = "Mumbai 1"
	errs := ValidateAddress("delivery_address", a)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"delivery_address.state", "delivery_address.postal_code", "delivery_address.city"}, fields)

	a = validAddress()
	a.Country = "Nepal"
	errs = ValidateAddress("billing_address", a)
	require.Len(t, errs, 1)
	assert.Equal(t, "billing_address.country", errs[0].Field)
}

func TestFieldValidationErrors(t *testing.T) {
	errs := FieldValidationErrors{
		{Field: "amount", Message: "Amount must be greater than 0"},
		{Field: "billing_address.state", Message: "State is required"},
	}
	assert.Equal(t, "amount: Amount must be greater than 0; billing_address.state: State is required", errs.Error())
}
