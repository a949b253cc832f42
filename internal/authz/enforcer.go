// Package authz decides role capabilities with a Casbin RBAC model. The model
// and policy are embedded; file paths in config replace them when present.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

const (
	ResourceProducts = "products"
	ResourceOrders   = "orders"
	ResourceProfile  = "profile"

	ActionWrite   = "write"
	ActionCreate  = "create"
	ActionReadOwn = "read_own"
	ActionRead    = "read"
	ActionManage  = "manage"
)

type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(modelPath, policyPath string) (*Enforcer, error) {
	var (
		m   model.Model
		err error
	)
	if modelPath != "" && fileExists(modelPath) {
		m, err = model.NewModelFromFile(modelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if policyPath != "" && fileExists(policyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch rule := parts[1:]; parts[0] {
		case "p":
			if len(rule) >= 3 {
				if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", rule, err)
				}
			}
		case "g":
			if len(rule) >= 2 {
				if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
				}
			}
		}
	}
	return nil
}

// Allowed reports whether role may perform action on resource. An empty role
// is treated as a plain user.
func (e *Enforcer) Allowed(role, resource, action string) (bool, error) {
	if role == "" {
		role = "user"
	}
	ok, err := e.enforcer.Enforce(role, resource, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return ok, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
