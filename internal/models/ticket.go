package models

import (
	"github.com/shopspring/decimal"
)

// Bet ticket types. A pivot horse appears in every combination of a ticket.
const (
	TicketTrioPivot2Nagashi   = "pivot_2_nagashi"
	TicketTrifectaPivot2Multi = "pivot_2_multi"
)

// BetTicket is one wagering ticket built around fixed pivot horses.
type BetTicket struct {
	Type            string          `json:"type"`
	Pivots          []int           `json:"pivots"`
	Others          []int           `json:"others"`
	Combinations    int             `json:"combinations"`
	AmountPerTicket decimal.Decimal `json:"amount_per_ticket"`
}

// Cost returns the total price of the ticket across all combinations.
func (t *BetTicket) Cost() decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	return t.AmountPerTicket.Mul(decimal.NewFromInt(int64(t.Combinations)))
}

// BetTicketSet is the recommended wager for a race: a trio ticket keyed to
// two pivots plus a trifecta multi covering every ordering of the same pivots.
type BetTicketSet struct {
	Trio            *BetTicket      `json:"trio,omitempty"`
	TrifectaMulti   *BetTicket      `json:"trifecta_multi,omitempty"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
	Note            string          `json:"note,omitempty"`
}
