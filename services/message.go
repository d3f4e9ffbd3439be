package services

import (
	"fmt"
	"strings"
	"time"

	"cradi/model"
)

const (
	verificationTitle       = "Verify Report"
	verificationRequestType = "verification_request"
	alertDescriptionLimit   = 100
)

func VerificationMessage(r model.Report) string {
	return fmt.Sprintf("🔍 Action Required: New %s report in %s needs your verification.", r.HazardType, r.Ward)
}

func AlertMessage(r model.Report) string {
	return fmt.Sprintf("🚨 CRADI ALERT: %s %s reported in %s, %s. Safety: %s",
		strings.ToUpper(r.Severity), r.HazardType, r.Ward, r.LGA, truncate(r.Description, alertDescriptionLimit))
}

// EscalationReason names the timeout that expired, e.g. "Peer verification timeout (30m)".
func EscalationReason(timeout time.Duration) string {
	return fmt.Sprintf("Peer verification timeout (%s)", shortDuration(timeout))
}

func shortDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return d.String()
	}
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
