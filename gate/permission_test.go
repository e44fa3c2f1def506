package gate_test

import (
	"testing"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/gate"
)

func TestPermission_Parse(t *testing.T) {
	res, act := gate.Permission("contract:update").Parse()
	if res != "contract" || act != gate.ActionUpdate {
		t.Errorf("Parse() = (%q, %q), want (contract, update)", res, act)
	}

	res, act = gate.Permission("malformed").Parse()
	if res != "" || act != "" {
		t.Errorf("Parse() on malformed = (%q, %q), want empty", res, act)
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		name      string
		held      gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"exact match", "contract:view", "contract:view", true},
		{"superadmin matches all", gate.PermissionSuperAdmin, "batch:delete", true},
		{"resource wildcard", "contract:*", "contract:create", true},
		{"resource wildcard wrong resource", "contract:*", "batch:create", false},
		{"action wildcard", "*:view", "remittance:view", true},
		{"action wildcard wrong action", "*:view", "remittance:update", false},
		{"no match", "contract:view", "contract:update", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.held.Matches(tt.requested); got != tt.want {
				t.Errorf("%q.Matches(%q) = %v, want %v", tt.held, tt.requested, got, tt.want)
			}
		})
	}
}

func TestStaticProfile_HasPermission(t *testing.T) {
	p := gate.NewStaticProfile("dealer_admin", "contract:*", "batch:view")

	if !p.HasPermission("contract:delete") {
		t.Error("expected wildcard contract permission to match")
	}
	if !p.HasPermission("batch:view") {
		t.Error("expected exact batch permission to match")
	}
	if p.HasPermission("batch:update") {
		t.Error("expected missing permission to not match")
	}
}
