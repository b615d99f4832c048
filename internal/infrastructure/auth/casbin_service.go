package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// accountPolicies grant the user role the authenticated account routes
var accountPolicies = [][]string{
	{"user", "/account/password", "POST"},
	{"user", "/account/contact", "(GET)|(POST)|(DELETE)"},
	{"user", "/account/contact/verify", "POST"},
}

// CasbinService wraps the enforcer guarding /account routes
type CasbinService struct {
	E *casbin.Enforcer
}

// NewCasbinService loads the model and the policies persisted through the
// gorm adapter.
func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}
	e, err := casbin.NewEnforcer(modelPath, adp)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load casbin policy: %w", err)
	}
	return &CasbinService{E: e}, nil
}

// SeedDefaults adds the built-in account policies that are not stored yet.
// Admins inherit every user permission.
func (s *CasbinService) SeedDefaults() error {
	for _, p := range accountPolicies {
		if _, err := s.E.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to add policy %v: %w", p, err)
		}
	}
	if _, err := s.E.AddGroupingPolicy("admin", "user"); err != nil {
		return fmt.Errorf("failed to add admin role: %w", err)
	}
	return nil
}

// Allowed reports whether role may call method on path
func (s *CasbinService) Allowed(role, path, method string) (bool, error) {
	return s.E.Enforce(role, path, method)
}
