package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
)

const wildcard = "*"

// Authorizer decides whether the current caller may operate on a resource kind.
type Authorizer interface {
	IsAllowed(ctx context.Context, kindID string) bool
}

type staticAuthorizer struct {
	logger  *zap.Logger
	all     bool
	allowed map[string]struct{}
}

// NewStaticAuthorizer allows the kinds listed in AUTH_ALLOWED_KINDS. A "*" entry
// allows every kind; an empty list allows none.
func NewStaticAuthorizer(logger *zap.Logger, cfg *config.Config) Authorizer {
	a := &staticAuthorizer{
		logger:  logger,
		allowed: make(map[string]struct{}, len(cfg.Auth.AllowedKinds)),
	}

	for _, kindID := range cfg.Auth.AllowedKinds {
		kindID = strings.TrimSpace(kindID)
		switch kindID {
		case "":
		case wildcard:
			a.all = true
		default:
			a.allowed[kindID] = struct{}{}
		}
	}

	if !a.all && len(a.allowed) == 0 {
		logger.Warn("No resource kinds are allowed, every request will be denied")
	}

	return a
}

func (a *staticAuthorizer) IsAllowed(_ context.Context, kindID string) bool {
	if a.all {
		return true
	}
	_, ok := a.allowed[kindID]
	return ok
}
