package authz

import "testing"

func TestEmbeddedPolicy(t *testing.T) {
	e, err := NewEnforcer("", "")
	if err != nil {
		t.Fatalf("NewEnforcer returned error: %v", err)
	}

	cases := []struct {
		role, resource, action string
		want                   bool
	}{
		{"admin", ResourceProducts, ActionWrite, true},
		{"admin", ResourceOrders, ActionManage, true},
		{"admin", ResourceOrders, ActionCreate, true},
		{"user", ResourceProducts, ActionWrite, false},
		{"user", ResourceOrders, ActionManage, false},
		{"user", ResourceOrders, ActionCreate, true},
		{"", ResourceOrders, ActionReadOwn, true},
		{"guest", ResourceProfile, ActionRead, false},
	}
	for _, tc := range cases {
		got, err := e.Allowed(tc.role, tc.resource, tc.action)
		if err != nil {
			t.Fatalf("Allowed(%q,%q,%q) error: %v", tc.role, tc.resource, tc.action, err)
		}
		if got != tc.want {
			t.Fatalf("Allowed(%q,%q,%q) = %v, want %v", tc.role, tc.resource, tc.action, got, tc.want)
		}
	}
}

func TestMissingPathsFallBackToEmbedded(t *testing.T) {
	e, err := NewEnforcer("/nonexistent/model.conf", "/nonexistent/policy.csv")
	if err != nil {
		t.Fatalf("NewEnforcer returned error: %v", err)
	}
	ok, err := e.Allowed("admin", ResourceProducts, ActionWrite)
	if err != nil || !ok {
		t.Fatalf("expected admin product write to be allowed, got %v (%v)", ok, err)
	}
}
