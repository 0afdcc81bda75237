// Package authz answers role based access questions with casbin. The model
// and policy are embedded; roles other than Admin, Mentor and Intern
// (i.e. Suspend) are granted nothing.
package authz

import (
	_ "embed"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

//go:embed model.conf
var modelText string

//go:embed policy.csv
var policyText string

type Enforcer struct {
	e *casbin.Enforcer
}

func New() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(policyText))
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// Allowed reports whether role may perform action on resource.
func (a *Enforcer) Allowed(role models.Role, resource, action string) (bool, error) {
	if role == "" || role == models.RoleSuspend {
		return false, nil
	}
	return a.e.Enforce(string(role), resource, action)
}

// Require returns an ErrForbidden-wrapping error when the check fails.
func (a *Enforcer) Require(role models.Role, resource, action string) error {
	ok, err := a.Allowed(role, resource, action)
	if err != nil {
		return fmt.Errorf("authorize %s %s: %w", resource, action, err)
	}
	if !ok {
		return apperr.Forbidden("%s may not %s %s", role, action, resource)
	}
	return nil
}
