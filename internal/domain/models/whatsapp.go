package models

// WebhookPayload is the body Meta posts to the webhook for WhatsApp events.
// Only the parts the pantry bot reads are modelled.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// MessageCount returns the number of inbound messages across all entries.
// Delivery and read status callbacks carry none.
func (p WebhookPayload) MessageCount() int {
	n := 0
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			n += len(change.Value.Messages)
		}
	}
	return n
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Value WebhookValue `json:"value"`
	Field string       `json:"field"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages"`
}

// InboundMessage is one message sent by a user. Text and button replies are
// the only shapes that can carry a command.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

type InteractiveContent struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CommandText returns the text a command can be parsed from, or "" when the
// message carries none.
func (m InboundMessage) CommandText() string {
	if m.Text != nil {
		return m.Text.Body
	}
	if m.Interactive != nil && m.Interactive.ButtonReply != nil {
		return m.Interactive.ButtonReply.ID
	}
	return ""
}
