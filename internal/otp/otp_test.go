package otp

import (
	"testing"

	"github.com/mabego/authify/internal/assert"
)

func TestGenerate(t *testing.T) {
	for range 50 {
		code, err := Generate()
		assert.NilError(t, err)
		assert.Equal(t, Valid(code), true)
		assert.Equal(t, code[0] != '0', true)
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name  string
		boxes []string
		want  string
	}{
		{name: "Six boxes", boxes: []string{"1", "2", "3", "4", "5", "6"}, want: "123456"},
		{name: "Non digits dropped", boxes: []string{"1", "a", "2", " ", "3", "4"}, want: "1234"},
		{name: "Whole code in one box", boxes: []string{"654321", "", "", "", "", ""}, want: "654321"},
		{name: "Too many digits", boxes: []string{"12", "34", "56", "78"}, want: "123456"},
		{name: "Empty", boxes: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Join(tt.boxes), tt.want)
		})
	}
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name      string
		paste     string
		wantBoxes [Length]string
		wantFocus int
	}{
		{
			name:      "Full code",
			paste:     "123456",
			wantBoxes: [Length]string{"1", "2", "3", "4", "5", "6"},
			wantFocus: 5,
		},
		{
			name:      "Partial code",
			paste:     "12 3",
			wantBoxes: [Length]string{"1", "2", "3", "", "", ""},
			wantFocus: 3,
		},
		{
			name:      "Longer than six",
			paste:     "98765432",
			wantBoxes: [Length]string{"9", "8", "7", "6", "5", "4"},
			wantFocus: 5,
		},
		{
			name:      "Nothing usable",
			paste:     "abc",
			wantBoxes: [Length]string{},
			wantFocus: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boxes, focus := Distribute(tt.paste)
			assert.Equal(t, boxes, tt.wantBoxes)
			assert.Equal(t, focus, tt.wantFocus)
		})
	}
}

func TestValid(t *testing.T) {
	assert.Equal(t, Valid("123456"), true)
	assert.Equal(t, Valid("12345"), false)
	assert.Equal(t, Valid("1234567"), false)
	assert.Equal(t, Valid("12345a"), false)
}
