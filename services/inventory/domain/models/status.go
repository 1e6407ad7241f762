package models

import "fmt"

// Status is an item's lifecycle state.
//
// in-closet, listed, for-sale and otw are active states; moving between them
// is pure relabeling. sold, traded, scammed and refunded are terminal and
// mutually exclusive. archive-hold is a non-terminal side track for items
// parked out of the active rotation.
type Status string

const (
	StatusInCloset    Status = "in-closet"
	StatusListed      Status = "listed"
	StatusForSale     Status = "for-sale"
	StatusOTW         Status = "otw"
	StatusSold        Status = "sold"
	StatusTraded      Status = "traded"
	StatusScammed     Status = "scammed"
	StatusRefunded    Status = "refunded"
	StatusArchiveHold Status = "archive-hold"
)

var allStatuses = map[Status]struct{}{
	StatusInCloset:    {},
	StatusListed:      {},
	StatusForSale:     {},
	StatusOTW:         {},
	StatusSold:        {},
	StatusTraded:      {},
	StatusScammed:     {},
	StatusRefunded:    {},
	StatusArchiveHold: {},
}

// ParseStatus validates s and returns it as a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := allStatuses[st]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// IsTerminal reports whether the status is one of the four mutually-exclusive
// terminal outcomes.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSold, StatusTraded, StatusScammed, StatusRefunded:
		return true
	}
	return false
}

// IsActive reports whether the item still counts toward active inventory.
// archive-hold is excluded: parked items are neither terminal nor for sale.
func (s Status) IsActive() bool {
	return !s.IsTerminal() && s != StatusArchiveHold
}

func (s Status) String() string {
	return string(s)
}

// PaidBy identifies who funded an item's acquisition. Only shared purchases
// touch the business's cash-on-hand balance.
type PaidBy string

const (
	PaidByPartnerA PaidBy = "partner-a"
	PaidByPartnerB PaidBy = "partner-b"
	PaidByShared   PaidBy = "shared"
)

// ParsePaidBy validates s and returns it as a PaidBy.
func ParsePaidBy(s string) (PaidBy, error) {
	switch p := PaidBy(s); p {
	case PaidByPartnerA, PaidByPartnerB, PaidByShared:
		return p, nil
	}
	return "", fmt.Errorf("unknown paid-by %q", s)
}

func (p PaidBy) String() string {
	return string(p)
}
