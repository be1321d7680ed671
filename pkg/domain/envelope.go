package domain

// Envelope is the response to one submitted answer.
// Every field is always serialized; absent values are null.
type Envelope struct {
	Done    bool      `json:"done"`
	Message string    `json:"message"`
	Data    *Document `json:"data"`
	Skipped *string   `json:"skipped"`
}
