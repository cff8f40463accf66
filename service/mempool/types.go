package mempool

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies what a transaction does to the market. The four enumerated
// kinds drive all derived computation; any other non-empty kind is accepted
// as a generic transfer with optional from/to addresses.
type Kind string

const (
	KindBuy             Kind = "buy"
	KindSell            Kind = "sell"
	KindAddLiquidity    Kind = "add_liquidity"
	KindRemoveLiquidity Kind = "remove_liquidity"
)

// Status is the settlement state of a transaction. Transitions are monotonic:
// pending becomes executed exactly once and never reverts.
type Status string

const (
	StatusPending  Status = "pending"
	StatusExecuted Status = "executed"
)

// Transaction is a pending or executed ledger entry. The id is assigned by
// the pool on insert; client-supplied ids are discarded. Which address field
// is required depends on the kind: buyer for buy, seller for sell, provider
// for the liquidity kinds, and optional from/to for anything else.
type Transaction struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"type"`
	Buyer    string `json:"buyer,omitempty"`
	Seller   string `json:"seller,omitempty"`
	Provider string `json:"provider,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`

	Amount decimal.Decimal `json:"amount"`

	// Boost is the submitter's priority flag ("mev_boost" on the wire).
	// Boosted transactions are executed on arrival and never touch the
	// settlement timer.
	Boost bool `json:"mev_boost"`

	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// PartyAddress returns the role-appropriate address for the transaction's
// kind, or empty if the kind carries no required role address.
func (t *Transaction) PartyAddress() string {
	switch t.Kind {
	case KindBuy:
		return t.Buyer
	case KindSell:
		return t.Seller
	case KindAddLiquidity, KindRemoveLiquidity:
		return t.Provider
	}
	return ""
}

// Ethereum-style address: "0x" followed by exactly 40 hex digits.
var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether s is a well-formed hex address.
func ValidAddress(s string) bool {
	return addressRegex.MatchString(s)
}

// validate checks a submission before it is accepted into the pool.
// It returns a *ValidationError describing the first offending field.
func validate(t *Transaction) error {
	if t.Kind == "" {
		return &ValidationError{Field: "type", Reason: "transaction type is required"}
	}
	if t.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "amount must be non-negative"}
	}

	switch t.Kind {
	case KindBuy:
		if !ValidAddress(t.Buyer) {
			return &ValidationError{Field: "buyer", Reason: "invalid buyer address"}
		}
	case KindSell:
		if !ValidAddress(t.Seller) {
			return &ValidationError{Field: "seller", Reason: "invalid seller address"}
		}
	case KindAddLiquidity, KindRemoveLiquidity:
		if !ValidAddress(t.Provider) {
			return &ValidationError{Field: "provider", Reason: "invalid provider address"}
		}
	default:
		// Generic kinds only validate from/to when they are present.
		if t.From != "" && !ValidAddress(t.From) {
			return &ValidationError{Field: "from", Reason: "invalid from address"}
		}
		if t.To != "" && !ValidAddress(t.To) {
			return &ValidationError{Field: "to", Reason: "invalid to address"}
		}
	}
	return nil
}
