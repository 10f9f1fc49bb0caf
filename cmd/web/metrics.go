package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	eventSignup        = "signup"
	eventLogin         = "login"
	eventVerifyEmail   = "verify_email"
	eventPasswordReset = "password_reset"
	eventOTPSent       = "otp_sent"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var authEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "authify",
	Name:      "auth_events_total",
	Help:      "Authentication events by type and outcome.",
}, []string{"event", "outcome"})

func recordAuthEvent(event, outcome string) {
	authEvents.WithLabelValues(event, outcome).Inc()
}
