package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/closetline/services/inventory/domain"
)

func validParams() NewItemParams {
	return NewItemParams{
		Name:            "Vintage band tee",
		Brand:           "Unknown",
		Category:        "tops",
		AcquisitionCost: decimal.NewFromInt(40),
		PaidBy:          PaidByShared,
	}
}

func TestNewItem(t *testing.T) {
	t.Run("valid params", func(t *testing.T) {
		orgID := uuid.New()
		item, err := NewItem(orgID, validParams())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID == uuid.Nil {
			t.Error("expected generated ID")
		}
		if item.OrgID != orgID {
			t.Errorf("expected orgID %s, got %s", orgID, item.OrgID)
		}
		if item.Status != StatusInCloset {
			t.Errorf("expected default status %q, got %q", StatusInCloset, item.Status)
		}
		if item.DateAdded.IsZero() {
			t.Error("expected DateAdded to default to now")
		}
		if item.InConvention || item.EverInConvention {
			t.Error("new items must not carry convention flags")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		p := validParams()
		p.Name = ""
		if _, err := NewItem(uuid.New(), p); !errors.Is(err, domain.ErrInvalidItemState) {
			t.Errorf("expected ErrInvalidItemState, got %v", err)
		}
	})

	t.Run("missing org", func(t *testing.T) {
		if _, err := NewItem(uuid.Nil, validParams()); !errors.Is(err, domain.ErrInvalidItemState) {
			t.Errorf("expected ErrInvalidItemState, got %v", err)
		}
	})

	t.Run("cannot be born terminal", func(t *testing.T) {
		for _, status := range []Status{StatusSold, StatusTraded, StatusScammed, StatusRefunded} {
			p := validParams()
			p.Status = status
			if _, err := NewItem(uuid.New(), p); !errors.Is(err, domain.ErrInvalidItemState) {
				t.Errorf("status %q: expected ErrInvalidItemState, got %v", status, err)
			}
		}
	})

	t.Run("negative cost rejected", func(t *testing.T) {
		p := validParams()
		p.AcquisitionCost = decimal.NewFromInt(-1)
		if _, err := NewItem(uuid.New(), p); !errors.Is(err, domain.ErrInvalidItemState) {
			t.Errorf("expected ErrInvalidItemState, got %v", err)
		}
	})

	t.Run("unknown paid_by rejected", func(t *testing.T) {
		p := validParams()
		p.PaidBy = "someone-else"
		if _, err := NewItem(uuid.New(), p); !errors.Is(err, domain.ErrInvalidItemState) {
			t.Errorf("expected ErrInvalidItemState, got %v", err)
		}
	})
}

func TestItemMarkSold(t *testing.T) {
	t.Run("sets price, date and status", func(t *testing.T) {
		item, _ := NewItem(uuid.New(), validParams())
		soldAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		if err := item.MarkSold(decimal.NewFromInt(90), soldAt); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Status != StatusSold {
			t.Errorf("expected status sold, got %q", item.Status)
		}
		if !item.SalePrice.Equal(decimal.NewFromInt(90)) {
			t.Errorf("expected sale price 90, got %s", item.SalePrice)
		}
		if item.DateSold == nil || !item.DateSold.Equal(soldAt) {
			t.Errorf("expected DateSold %v, got %v", soldAt, item.DateSold)
		}
	})

	t.Run("second sale is rejected and changes nothing", func(t *testing.T) {
		item, _ := NewItem(uuid.New(), validParams())
		if err := item.MarkSold(decimal.NewFromInt(90), time.Time{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err := item.MarkSold(decimal.NewFromInt(50), time.Time{})
		if !errors.Is(err, domain.ErrItemAlreadySold) {
			t.Fatalf("expected ErrItemAlreadySold, got %v", err)
		}
		if !item.SalePrice.Equal(decimal.NewFromInt(90)) {
			t.Errorf("resubmit must not overwrite the sale price, got %s", item.SalePrice)
		}
	})

	t.Run("cannot sell from another terminal state", func(t *testing.T) {
		item, _ := NewItem(uuid.New(), validParams())
		_ = item.ChangeStatus(StatusScammed)

		if err := item.MarkSold(decimal.NewFromInt(90), time.Time{}); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("negative price rejected", func(t *testing.T) {
		item, _ := NewItem(uuid.New(), validParams())
		if err := item.MarkSold(decimal.NewFromInt(-5), time.Time{}); !errors.Is(err, domain.ErrInvalidItemState) {
			t.Errorf("expected ErrInvalidItemState, got %v", err)
		}
	})
}

func TestItemMarkTraded(t *testing.T) {
	t.Run("records counterpart and signed difference", func(t *testing.T) {
		item, _ := NewItem(uuid.New(), validParams())
		other := uuid.New()

		if err := item.MarkTraded(other, decimal.NewFromInt(-20)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Status != StatusTraded {
			t.Errorf("expected status traded, got %q", item.Status)
		}
		if !item.TradedForItemID.Valid || item.TradedForItemID.UUID != other {
			t.Errorf("expected traded-for item %s, got %+v", other, item.TradedForItemID)
		}
		if !item.TradeCashDifference.Equal(decimal.NewFromInt(-20)) {
			t.Errorf("expected cash difference -20, got %s", item.TradeCashDifference)
		}
	})

	t.Run("counterpart item is optional", func(t *testing.T) {
		item, _ := NewItem(uuid.New(), validParams())
		if err := item.MarkTraded(uuid.Nil, decimal.Zero); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.TradedForItemID.Valid {
			t.Error("expected null traded-for reference")
		}
	})

	t.Run("cannot trade from terminal state", func(t *testing.T) {
		item, _ := NewItem(uuid.New(), validParams())
		_ = item.MarkSold(decimal.NewFromInt(90), time.Time{})

		if err := item.MarkTraded(uuid.New(), decimal.Zero); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestConventionLatch(t *testing.T) {
	item, _ := NewItem(uuid.New(), validParams())

	item.TagConvention()
	if !item.InConvention || !item.EverInConvention {
		t.Fatal("tagging must set both flags")
	}

	item.UntagConvention()
	if item.InConvention {
		t.Error("untagging must clear the active flag")
	}
	if !item.EverInConvention {
		t.Error("untagging must never clear the historical latch")
	}

	// Repeat cycles leave the latch set.
	item.TagConvention()
	item.UntagConvention()
	item.UntagConvention()
	if !item.EverInConvention {
		t.Error("latch must survive repeated untag calls")
	}
}

func TestChangeStatusRejectsUnknown(t *testing.T) {
	item, _ := NewItem(uuid.New(), validParams())
	if err := item.ChangeStatus("misplaced"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}
