// Package notify composes and delivers outbound summaries: per-entity
// HTML report emails with attachments, and short ops notices. Delivery
// mechanics live behind the Notifier interface; the pipeline only hands
// over a recipient, a rendered body, and an attachment path.
package notify

// Message is one outbound summary notification.
type Message struct {
	To       []string
	CC       []string
	Subject  string
	HTMLBody string

	// Attachment is an optional path to the consolidated extract file.
	Attachment string
}

// Notifier delivers one message.
type Notifier interface {
	Send(msg Message) error
}
