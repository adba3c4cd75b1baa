package validation_test

import (
	"errors"
	"testing"

	"kqs-apply/pkg/validation"

	"github.com/stretchr/testify/assert"
)

type contactInput struct {
	Name    string `json:"name" validate:"trimmed_required,trimmed_min=2"`
	Email   string `json:"email" validate:"trimmed_required,loose_email"`
	Subject string `json:"subject" validate:"trimmed_required"`
	Note    string `json:"note" validate:"trimmed_min=3"`
}

func TestIsLooseEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last@uni.ac.uk", "x+tag@d.io"}
	invalid := []string{"", "bad", "a@b", "@b.com", "a@.com", "a@b.", "a b@c.com", " a@b.com", "a@b.com ", "a@@b.com", "a@b@c.com", "a@b .com"}

	for _, s := range valid {
		assert.True(t, validation.IsLooseEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, validation.IsLooseEmail(s), s)
	}
}

func TestTrimFormSpace(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" \t\n Jo \r\n", "Jo"},
		{"\u00a0\u3000Jo\u2028", "Jo"},
		{"\ufeffA", "A"},
		{"\u0085", "\u0085"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validation.TrimFormSpace(tt.in), "%q", tt.in)
	}
}

func TestFormLength(t *testing.T) {
	assert.Equal(t, 0, validation.FormLength(""))
	assert.Equal(t, 2, validation.FormLength("Al"))
	assert.Equal(t, 1, validation.FormLength("é"))
	assert.Equal(t, 2, validation.FormLength("😀"))
}

func TestFieldErrors(t *testing.T) {
	v := validation.New()

	t.Run("Should report the first failing rule per field", func(t *testing.T) {
		err := v.Struct(contactInput{Name: " ", Email: "nope", Subject: "", Note: "abc"})

		got := validation.FieldErrors(err)
		assert.Equal(t, map[string]string{
			"name":    "Name is required",
			"email":   "Please enter a valid email address",
			"subject": "Subject is required",
		}, got)
	})

	t.Run("Should count trimmed characters", func(t *testing.T) {
		err := v.Struct(contactInput{Name: "  é ", Email: "a@b.co", Subject: "s", Note: "ñññ"})

		got := validation.FieldErrors(err)
		assert.Equal(t, map[string]string{"name": "Name must be at least 2 characters long"}, got)
	})

	t.Run("Should fall back to a capitalised field name", func(t *testing.T) {
		err := v.Struct(contactInput{Name: "Al", Email: "a@b.co", Subject: "s", Note: "x"})

		got := validation.FieldErrors(err)
		assert.Equal(t, "Note must be at least 3 characters long", got["note"])
	})

	t.Run("Should return an empty map for nil", func(t *testing.T) {
		assert.Empty(t, validation.FieldErrors(nil))
	})

	t.Run("Should keep non-validation errors under the empty key", func(t *testing.T) {
		got := validation.FieldErrors(errors.New("boom"))
		assert.Equal(t, "boom", got[""])
	})
}
