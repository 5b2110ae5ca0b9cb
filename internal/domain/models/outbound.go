package models

// OutboundMessageRequest represents a chat message pushed to a recipient.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// ItemRequest is the body of the "add new item" call.
type ItemRequest struct {
	Name string `json:"name"`
}

// ItemsResponse carries a snapshot over the HTTP API.
type ItemsResponse struct {
	Items Snapshot `json:"items"`
	Error string   `json:"error,omitempty"`
}
