package lifecycle

import (
	"errors"
	"testing"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/models"
)

func TestInitial(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindContract, models.ContractStatusDraft},
		{KindBatch, models.BatchStatusOpen},
		{KindBatchPayment, models.BatchPaymentUnpaid},
		{KindRemittance, models.RemittanceStatusDue},
	}
	for _, tt := range tests {
		if got := Initial(tt.kind); got != tt.want {
			t.Errorf("Initial(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// TestValidate_FullCrossProduct exercises every (kind, current, requested)
// pair: only same-status no-ops and single forward steps are legal.
func TestValidate_FullCrossProduct(t *testing.T) {
	kinds := map[Kind][]string{
		KindContract:     {models.ContractStatusDraft, models.ContractStatusSold, models.ContractStatusRemitted, models.ContractStatusPaid},
		KindBatch:        {models.BatchStatusOpen, models.BatchStatusClosed},
		KindBatchPayment: {models.BatchPaymentUnpaid, models.BatchPaymentPaid},
		KindRemittance:   {models.RemittanceStatusDue, models.RemittanceStatusPaid},
	}

	for kind, chain := range kinds {
		for i, current := range chain {
			for j, requested := range chain {
				err := Validate(kind, current, requested)
				legal := i == j || j == i+1
				if legal && err != nil {
					t.Errorf("Validate(%s, %s, %s) = %v, want nil", kind, current, requested, err)
				}
				if !legal && !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Validate(%s, %s, %s) = %v, want ErrInvalidTransition", kind, current, requested, err)
				}
			}
		}
	}
}

func TestValidate_SkipAndRegress(t *testing.T) {
	if err := Validate(KindContract, models.ContractStatusDraft, models.ContractStatusPaid); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("DRAFT->PAID: expected ErrInvalidTransition, got %v", err)
	}
	if err := Validate(KindContract, models.ContractStatusRemitted, models.ContractStatusSold); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("REMITTED->SOLD: expected ErrInvalidTransition, got %v", err)
	}
}

func TestValidate_TerminalHasNoSuccessor(t *testing.T) {
	if err := Validate(KindContract, models.ContractStatusPaid, models.ContractStatusDraft); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected terminal PAID to reject any change, got %v", err)
	}
	if err := Validate(KindRemittance, models.RemittanceStatusPaid, models.RemittanceStatusDue); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected terminal PAID to reject any change, got %v", err)
	}
	// No-op on a terminal state stays legal.
	if err := Validate(KindContract, models.ContractStatusPaid, models.ContractStatusPaid); err != nil {
		t.Errorf("expected no-op on terminal state to be legal, got %v", err)
	}
}

func TestValidate_UnknownInputs(t *testing.T) {
	if err := Validate(Kind("mystery"), "A", "B"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown kind: expected ErrInvalidTransition, got %v", err)
	}
	if err := Validate(KindContract, "BOGUS", models.ContractStatusSold); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown current: expected ErrInvalidTransition, got %v", err)
	}
	if err := Validate(KindContract, models.ContractStatusDraft, "BOGUS"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown requested: expected ErrInvalidTransition, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(KindContract, models.ContractStatusPaid) {
		t.Error("PAID should be terminal for contracts")
	}
	if IsTerminal(KindContract, models.ContractStatusDraft) {
		t.Error("DRAFT should not be terminal")
	}
	if !IsTerminal(KindBatch, models.BatchStatusClosed) {
		t.Error("CLOSED should be terminal for the batch status axis")
	}
}
