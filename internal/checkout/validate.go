package checkout

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	pinPattern   = regexp.MustCompile(`^[0-9]{6}$`)
)

// validateCustomer checks the delivery details. Phone and PIN follow the
// Indian formats the store ships to.
func validateCustomer(c Customer) *ValidationError {
	fields := map[string]string{}

	if strings.TrimSpace(c.Name) == "" {
		fields["name"] = "name is required"
	}
	if !emailPattern.MatchString(strings.TrimSpace(c.Email)) {
		fields["email"] = "valid email is required"
	}
	if !phonePattern.MatchString(strings.TrimSpace(c.Phone)) {
		fields["phone"] = "10 digit phone number is required"
	}
	if strings.TrimSpace(c.Address) == "" {
		fields["address"] = "shipping address is required"
	}
	if !pinPattern.MatchString(strings.TrimSpace(c.PinCode)) {
		fields["pinCode"] = "6 digit PIN code is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
