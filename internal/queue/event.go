// Package queue defines message payloads exchanged over the message broker.
package queue

// MailQueueName is the durable queue carrying outbound mail events.
const MailQueueName = "mail.outbound"

// PasswordResetRequested is published when a user asks for a password
// reset. It carries everything the mail consumer needs to compose and
// deliver the message without querying the primary database. The raw reset
// token appears only inside ResetURL; the database stores just its hash.
type PasswordResetRequested struct {
	EventID     string `json:"event_id"`
	To          string `json:"to"`
	Name        string `json:"name"`
	From        string `json:"from"`
	Subject     string `json:"subject"`
	ResetURL    string `json:"reset_url"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
