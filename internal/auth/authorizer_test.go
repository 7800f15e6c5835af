package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
)

func newAuthorizer(kinds ...string) Authorizer {
	return NewStaticAuthorizer(zap.NewNop(), &config.Config{Auth: config.AuthConfig{AllowedKinds: kinds}})
}

func TestStaticAuthorizer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		allowed []string
		kindID  string
		want    bool
	}{
		{name: "listed", allowed: []string{"widgets.example.io"}, kindID: "widgets.example.io", want: true},
		{name: "trimmed", allowed: []string{" widgets.example.io "}, kindID: "widgets.example.io", want: true},
		{name: "not listed", allowed: []string{"widgets.example.io"}, kindID: "gadgets.example.io", want: false},
		{name: "wildcard", allowed: []string{"*"}, kindID: "gadgets.example.io", want: true},
		{name: "empty denies", allowed: nil, kindID: "widgets.example.io", want: false},
		{name: "blank entries ignored", allowed: []string{"", " "}, kindID: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newAuthorizer(tt.allowed...).IsAllowed(ctx, tt.kindID))
		})
	}
}
