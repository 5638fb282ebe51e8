// Package trades normalizes the vendor's trade requests into viewer-oriented
// records and drives the trade lifecycle.
package trades

// Status is the lifecycle state of a trade request.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
	StatusInProgress Status = "in_progress"
	StatusDraft      Status = "draft"
)

// TradeCard is one card line of a trade.
type TradeCard struct {
	Reference string `json:"reference"`
	ImagePath string `json:"imagePath"`
	Quantity  int    `json:"quantity"`
}

// Trade is a normalized exchange record. Sending and Receiving are oriented
// relative to the authenticated user, unlike the raw API, which labels card
// lists by sender/receiver role.
type Trade struct {
	ID            string      `json:"id"`
	TradeWith     string      `json:"tradeWith"`
	Status        Status      `json:"status"`
	InitiatedByMe bool        `json:"initiatedByMe"`
	MyTurn        bool        `json:"myTurn"`
	Sending       []TradeCard `json:"sending"`
	Receiving     []TradeCard `json:"receiving"`
}
