package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// LogFields are the record values copied into the variant's log table.
// Which columns they land in depends on the variant.
type LogFields struct {
	AccountName string
	Reference   string
	Detail      string
	ClientType  string
	Amount      *decimal.Decimal
	Date        *time.Time
}

// Message is a rendered notification ready for the gateway.
type Message struct {
	Variant Variant
	Channel Channel
	// Sender overrides the gateway's configured from-address for email.
	Sender string
	// Recipient may hold several comma-separated addresses for email.
	Recipient   string
	Cc          []string
	Subject     string
	Body        string
	Attachments []Attachment
	Log         LogFields
}

// WithRecipient returns a copy addressed to recipient alone.
func (m Message) WithRecipient(recipient string) *Message {
	m.Recipient = recipient
	m.Cc = nil
	return &m
}
