package main

import (
	"testing"
	"time"

	"github.com/mabego/authify/internal/assert"
)

func TestHumanDate(t *testing.T) {
	// A slice of anonymous structs containing the test data.
	tests := []struct {
		name string
		tm   time.Time
		want string
	}{
		{
			name: "UTC",
			tm:   time.Date(2023, 7, 19, 10, 15, 0, 0, time.UTC),
			want: "Jul 19 2023 at 10:15",
		},
		{
			name: "CET",
			tm:   time.Date(2023, 7, 19, 10, 15, 0, 0, time.FixedZone("CET", 1*60*60)),
			want: "Jul 19 2023 at 09:15",
		},
		{
			name: "Empty",
			tm:   time.Time{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hd := humanDate(tt.tm)
			assert.Equal(t, hd, tt.want)
		})
	}
}

func TestOTPBoxLabels(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	ts.login(t, "alice@example.com", "pa$$word")

	_, _, body := ts.get(t, "/account/verify")

	assert.StringContains(t, body, "aria-label='Digit 1'")
	assert.StringContains(t, body, "aria-label='Digit 6'")
	assert.StringNotContains(t, body, "aria-label='Digit 0'")
}
