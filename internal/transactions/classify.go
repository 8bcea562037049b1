// Package transactions derives view-layer annotations (status, error
// category) and aggregate stats for payment transactions. Everything here
// is a pure function of the source record; nothing is ever written back.
package transactions

import (
	"strings"

	"github.com/jmoellers/insightdeck/internal/models"
)

// Transaction statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// Error categories, in classification priority order.
var Categories = []string{
	"network", "validation", "authentication", "database",
	"timeout", "payment", "checkout", "unknown",
}

// categoryRules maps lowercase substrings to a category. Rules are
// checked in order, first match wins, so "network timeout occurred"
// classifies as network, not timeout.
var categoryRules = []struct {
	substrings []string
	category   string
}{
	{[]string{"network", "connection"}, "network"},
	{[]string{"validation", "invalid"}, "validation"},
	{[]string{"auth", "permission"}, "authentication"},
	{[]string{"database", "db"}, "database"},
	{[]string{"timeout", "expired"}, "timeout"},
	{[]string{"payment", "card"}, "payment"},
	{[]string{"checkout", "session"}, "checkout"},
}

// Status derives the transaction status. Any failure or abort text means
// failed. Otherwise the event type decides; unrecognized event types
// report success, matching the upstream feed's behavior.
func Status(eventType, failureMessage, abortReason string) string {
	if failureMessage != "" || abortReason != "" {
		return StatusFailed
	}
	et := strings.ToLower(eventType)
	if strings.Contains(et, "success") || strings.Contains(et, "succeeded") || strings.Contains(et, "completed") {
		return StatusSuccess
	}
	if strings.Contains(et, "started") || strings.Contains(et, "initiated") {
		return StatusPending
	}
	return StatusSuccess
}

// Category derives the error category from the failure text. Returns ""
// when there is nothing to classify and "unknown" when no rule matches.
func Category(failureMessage, abortReason string) string {
	if failureMessage == "" && abortReason == "" {
		return ""
	}

	message := failureMessage
	if message == "" {
		message = abortReason
	}
	message = strings.ToLower(message)

	for _, rule := range categoryRules {
		for _, sub := range rule.substrings {
			if strings.Contains(message, sub) {
				return rule.category
			}
		}
	}
	return "unknown"
}

// Annotate fills the derived Status and ErrorCategory fields in place.
func Annotate(tx *models.Transaction) {
	tx.Status = Status(tx.EventType, tx.EventFailureMessage, tx.CheckoutSessionAbortReason)
	tx.ErrorCategory = Category(tx.EventFailureMessage, tx.CheckoutSessionAbortReason)
}
