package district

import "github.com/go-playground/validator/v10"

// Validate cleans and validates a NewDistrict.
func (nd *NewDistrict) Validate(validate *validator.Validate) error {
	nd.Clean()
	return validate.Struct(nd)
}

// Validate cleans and validates an UpdateDistrict.
func (ud *UpdateDistrict) Validate(validate *validator.Validate) error {
	ud.Clean()
	return validate.Struct(ud)
}
