package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

func TestDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	privileged := domain.Identity{UserID: "u1", OrgID: "o1", Privileged: true}
	regular := domain.Identity{UserID: "u2"}

	tests := []struct {
		name     string
		identity domain.Identity
		counter  *domain.RequestCounter
		want     string
	}{
		{name: "new user", identity: privileged, counter: nil, want: ActionAllow},
		{name: "under quota", identity: privileged, counter: &domain.RequestCounter{Tier: domain.TierFree, RequestsUsed: 3, RequestsLimit: 10}, want: ActionAllow},
		{name: "over quota", identity: privileged, counter: &domain.RequestCounter{Tier: domain.TierPro, RequestsUsed: 10, RequestsLimit: 10}, want: ActionDowngrade},
		{name: "enterprise over quota", identity: privileged, counter: &domain.RequestCounter{Tier: domain.TierEnterprise, RequestsUsed: 99, RequestsLimit: 10}, want: ActionAllow},
		{name: "unlimited", identity: privileged, counter: &domain.RequestCounter{Tier: domain.TierStarter, RequestsUsed: 99, RequestsLimit: 0}, want: ActionAllow},
		{name: "regular caller over quota", identity: regular, counter: &domain.RequestCounter{Tier: domain.TierFree, RequestsUsed: 50, RequestsLimit: 10}, want: ActionAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := engine.Evaluate(ctx, NewInput(tt.identity, domain.ChatModeDeveloper, "gpt-4-turbo", tt.counter))
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Action)
			if tt.want == ActionDowngrade {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestStringDecisionAndUndefined(t *testing.T) {
	ctx := context.Background()

	engine, err := NewEngine(ctx, `
package model_policy

decision = "downgrade" {
	input.mode == "developer"
}
`)
	require.NoError(t, err)

	d, err := engine.Evaluate(ctx, Input{Mode: "developer"})
	require.NoError(t, err)
	assert.Equal(t, ActionDowngrade, d.Action)

	d, err = engine.Evaluate(ctx, Input{Mode: "general"})
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, d.Action)
	assert.Equal(t, "default", d.Reason)
}

func TestLoadEngine(t *testing.T) {
	ctx := context.Background()

	_, err := LoadEngine(ctx, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "policy.rego")
	require.NoError(t, os.WriteFile(path, []byte("package model_policy\n\ndefault decision = \"allow\"\n"), 0o600))
	engine, err := LoadEngine(ctx, path)
	require.NoError(t, err)
	d, err := engine.Evaluate(ctx, Input{})
	require.NoError(t, err)
	assert.Equal(t, ActionAllow, d.Action)

	_, err = NewEngine(ctx, "package model_policy\n\ndecision = {")
	assert.Error(t, err)
}
