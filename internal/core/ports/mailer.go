package ports

// Email is an outbound message with an HTML body.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// MailDispatcher accepts messages for asynchronous, best-effort delivery.
// Enqueue never blocks the request path on the mail transport; delivery
// failures are logged by the dispatcher, not propagated.
type MailDispatcher interface {
	Enqueue(msg Email)
}
