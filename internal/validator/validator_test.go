package validator

import (
	"strings"
	"testing"

	"github.com/mabego/authify/internal/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "Valid email", value: "alice@example.com", want: true},
		{name: "Email without domain", value: "alice@", want: false},
		{name: "Email with spaces", value: "alice @example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Matches(tt.value, EmailRX), tt.want)
		})
	}
}

func TestValidator(t *testing.T) {
	var v Validator

	assert.Equal(t, v.Valid(), true)

	v.CheckField(NotBlank("   "), "name", "This field cannot be blank")
	v.CheckField(MinChars("pa$$", 8), "name", "second message is ignored")

	assert.Equal(t, v.Valid(), false)
	assert.Equal(t, v.FieldErrors["name"], "This field cannot be blank")

	v = Validator{}
	v.AddNonFieldError("Email or password is incorrect")
	assert.Equal(t, v.Valid(), false)
	assert.Equal(t, len(v.NonFieldErrors), 1)
}

func TestCharCounts(t *testing.T) {
	assert.Equal(t, MaxChars("héllo", 5), true)
	assert.Equal(t, MaxChars("héllo!", 5), false)
	assert.Equal(t, MinChars("pa$$word", 8), true)
	assert.Equal(t, MaxBytes(strings.Repeat("p", 72), 72), true)
	assert.Equal(t, MaxBytes(strings.Repeat("é", 37), 72), false)
}
