package events

import "time"

// SettlementEvent is published whenever a transaction reaches the executed
// state, either through the settlement timer or immediately on a boosted
// submission. Published to "dexsim.settled.{kind}".
type SettlementEvent struct {
	TxID    string `json:"tx_id"`
	Kind    string `json:"kind"`
	Amount  string `json:"amount"`
	Boosted bool   `json:"boosted"`

	SettledAt   time.Time `json:"settled_at"`
	PublishedAt time.Time `json:"published_at"`
}

// ReorderEvent is published after both legs of a reordering run have landed.
// Published to "dexsim.reorder.{strategy}".
type ReorderEvent struct {
	Strategy   string `json:"strategy"`
	VictimTxID string `json:"victim_tx_id"`
	Amount     string `json:"amount"`
	FrontLegID string `json:"front_leg_id"`
	BackLegID  string `json:"back_leg_id"`

	ExecutedAt  time.Time `json:"executed_at"`
	PublishedAt time.Time `json:"published_at"`
}
