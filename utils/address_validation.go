package utils

import (
	"regexp"
	"strings"

	"github.com/Govind-619/PaySphere/models"
)

var (
	addressLineRegex     = regexp.MustCompile(`^[a-zA-Z0-9\s,.'#\-/]+$`)
	addressLine2Regex    = regexp.MustCompile(`^[a-zA-Z0-9\s,.'#\-/]*$`)
	cityRegex            = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	postalCodeIndiaRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// ValidateAddress checks an address snapshot. prefix names the field group in errors,
// such as "billing_address".
func ValidateAddress(prefix string, a models.Address) []FieldValidationError {
	errs := []FieldValidationError{}
	field := func(name string) string { return prefix + "." + name }

	line1 := strings.TrimSpace(a.Line1)
	if line1 == "" {
		errs = append(errs, FieldValidationError{field("line1"), "Address Line 1 is required"})
	} else {
		if len(line1) > 150 {
			errs = append(errs, FieldValidationError{field("line1"), "Address Line 1 must not exceed 150 characters"})
		}
		if !addressLineRegex.MatchString(line1) {
			errs = append(errs, FieldValidationError{field("line1"), "Address Line 1 contains invalid characters"})
		}
	}

	line2 := strings.TrimSpace(a.Line2)
	if len(line2) > 100 {
		errs = append(errs, FieldValidationError{field("line2"), "Address Line 2 must not exceed 100 characters"})
	}
	if !addressLine2Regex.MatchString(line2) {
		errs = append(errs, FieldValidationError{field("line2"), "Address Line 2 contains invalid characters"})
	}

	city := strings.TrimSpace(a.City)
	if city == "" {
		errs = append(errs, FieldValidationError{field("city"), "City is required"})
	} else if len(city) > 100 || !cityRegex.MatchString(city) {
		errs = append(errs, FieldValidationError{field("city"), "City must only contain letters and spaces"})
	}

	// the state drives the GST jurisdiction, so it is always required
	state := strings.TrimSpace(a.State)
	if state == "" {
		errs = append(errs, FieldValidationError{field("state"), "State is required"})
	} else if len(state) > 100 {
		errs = append(errs, FieldValidationError{field("state"), "State must not exceed 100 characters"})
	}

	country := strings.TrimSpace(a.Country)
	if country != "" && !strings.EqualFold(country, "india") {
		errs = append(errs, FieldValidationError{field("country"), "Only addresses in India are supported"})
	}

	postalCode := strings.TrimSpace(a.PostalCode)
	if postalCode == "" {
		errs = append(errs, FieldValidationError{field("postal_code"), "Postal code is required"})
	} else if !postalCodeIndiaRegex.MatchString(postalCode) {
		errs = append(errs, FieldValidationError{field("postal_code"), "Postal code must be a valid 6-digit Indian PIN (e.g., 600028)"})
	}

	if ok, msg := ValidatePhone(a.Phone); !ok {
		errs = append(errs, FieldValidationError{field("phone"), msg})
	}

	return errs
}
