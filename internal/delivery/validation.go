package delivery

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator aware of the "unit" tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		return Unit(fl.Field().String()).IsValid()
	})
	return v
}

var validate = NewValidator()

// Validate checks a delivery before it is sent to the API.
func Validate(d Delivery) error {
	if err := validate.Struct(d); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" "+fe.Tag())
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
	}
	if _, ok := d.RequestedAt.Parse(nil); !ok {
		return fmt.Errorf("%w: RequestedAt %q is not a timestamp", ErrInvalid, d.RequestedAt)
	}
	return nil
}
