package web

import (
	"testing"

	"quill/web/controller"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestPhoneValidation(t *testing.T) {
	registerValidators()

	base := controller.ContactForm{
		Name:    "Pat",
		Email:   "pat@example.com",
		Message: "hello",
	}

	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"empty is allowed", "", true},
		{"too short", "12345", false},
		{"ten digits", "2025551234", true},
		{"plus and digits", "+12025551234", true},
		{"fifteen digits", "123456789012345", true},
		{"sixteen digits", "1234567890123456", false},
		{"letters", "+1202call-now", false},
		{"plus only", "+", false},
		{"internal spaces", "+1 202 555 1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := base
			form.Phone = tt.phone
			err := binding.Validator.ValidateStruct(form)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestContactFormRequiredFields(t *testing.T) {
	registerValidators()

	// A bad phone never reaches delivery because binding fails first; the
	// rest of the form is validated the same way.
	err := binding.Validator.ValidateStruct(controller.ContactForm{
		Name:  "Pat",
		Email: "not-an-email",
	})
	assert.Error(t, err)

	err = binding.Validator.ValidateStruct(controller.ContactForm{
		Name:    "Pat",
		Email:   "pat@example.com",
		Message: "hello",
	})
	assert.NoError(t, err)
}
