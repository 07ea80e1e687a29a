package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `validate:"notblank"`
	Code string `validate:"activationcode"`
}

func TestRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{"valid", sample{Name: "Mia", Code: "APPLE-X7K2QD"}, true},
		{"lowercase code", sample{Name: "Mia", Code: "apple-x7k2qd"}, true},
		{"blank name", sample{Name: "   ", Code: "APPLE-X7K2QD"}, false},
		{"missing dash", sample{Name: "Mia", Code: "APPLEX7K2QD"}, false},
		{"empty suffix", sample{Name: "Mia", Code: "APPLE-"}, false},
		{"symbols", sample{Name: "Mia", Code: "APPLE-X7K2Q!"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
