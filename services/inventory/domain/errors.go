package domain

import "errors"

// Sentinel errors for the inventory domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItemState indicates a lifecycle transition was requested with
	// missing or negative financial fields. Rejected before any write.
	ErrInvalidItemState = errors.New("invalid item state")

	// ErrInvalidTransition indicates the requested status change is not allowed
	// from the item's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrItemAlreadySold indicates a sale was requested for an item that is
	// already sold. Callers use this to deduplicate resubmitted sale requests.
	ErrItemAlreadySold = errors.New("item already sold")

	// ErrLedgerWriteFailed indicates the item write succeeded but the cash
	// balance adjustment did not. This is a detected inconsistency: it must be
	// surfaced for reconciliation, never retried blindly.
	ErrLedgerWriteFailed = errors.New("ledger write failed")

	// ErrConcurrentUpdateConflict indicates the capital account's conditional
	// update lost a race with another writer. Retry with a fresh read.
	ErrConcurrentUpdateConflict = errors.New("concurrent capital account update")

	// ErrCapitalAccountNotFound indicates no capital account row exists for the org.
	ErrCapitalAccountNotFound = errors.New("capital account not found")

	// ErrStoreUnavailable indicates a transient backend failure before anything
	// was persisted; the whole operation is safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
