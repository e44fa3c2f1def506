// Package lifecycle encodes the legal status chains of the warranty domain.
// Validation is a pure function: nothing here touches storage or the clock.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
)

// ErrInvalidTransition is returned for any status change that is not the
// single next step of the kind's chain.
var ErrInvalidTransition = errors.New("invalid status transition")

// Kind names one finite-state axis. Batch carries two independent axes:
// its open/closed status and its payment status.
type Kind string

const (
	KindContract     Kind = "contract"
	KindBatch        Kind = "batch"
	KindBatchPayment Kind = "batch_payment"
	KindRemittance   Kind = "remittance"
)

// chains lists, per kind, the ordered statuses. A status may only move to
// the element immediately after it; the last element is terminal.
var chains = map[Kind][]string{
	KindContract: {
		models.ContractStatusDraft,
		models.ContractStatusSold,
		models.ContractStatusRemitted,
		models.ContractStatusPaid,
	},
	KindBatch: {
		models.BatchStatusOpen,
		models.BatchStatusClosed,
	},
	KindBatchPayment: {
		models.BatchPaymentUnpaid,
		models.BatchPaymentPaid,
	},
	KindRemittance: {
		models.RemittanceStatusDue,
		models.RemittanceStatusPaid,
	},
}

// Initial returns the first status of the kind's chain. Create always starts
// records here regardless of caller input.
func Initial(kind Kind) string {
	chain := chains[kind]
	if len(chain) == 0 {
		return ""
	}
	return chain[0]
}

// IsTerminal reports whether the status has no successor in the kind's chain.
func IsTerminal(kind Kind, status string) bool {
	chain := chains[kind]
	return len(chain) > 0 && chain[len(chain)-1] == status
}

// Known reports whether status belongs to the kind's chain at all.
func Known(kind Kind, status string) bool {
	for _, s := range chains[kind] {
		if s == status {
			return true
		}
	}
	return false
}

// Validate reports whether current may become requested for the given kind.
// Requesting the current status is a legal no-op. Any other request must be
// the single successor of current; skipping ahead, moving backward, or moving
// out of a terminal state all fail with ErrInvalidTransition.
func Validate(kind Kind, current, requested string) error {
	if requested == current {
		return nil
	}
	chain, ok := chains[kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTransition, kind)
	}
	for i, s := range chain {
		if s != current {
			continue
		}
		if i+1 < len(chain) && chain[i+1] == requested {
			return nil
		}
		return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, kind, current, requested)
	}
	return fmt.Errorf("%w: %s has no status %q", ErrInvalidTransition, kind, current)
}
