package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/domain"
)

func TestAttachAndRetrieveOrdering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	sessionID, err := env.svc.ResolveOrCreate(ctx, "u1", "", domain.SessionKindConversation)
	require.NoError(t, err)

	attach := func(text string, relevance float64) string {
		res, err := env.svc.AttachContext(ctx, "u1", sessionID, domain.ContextInput{
			Type:      domain.ContextTypeFreeform,
			Payload:   domain.FreeformPayload{Text: text},
			Relevance: relevance,
		})
		require.NoError(t, err)
		require.Equal(t, sessionID, res.SessionID)
		env.clock.Advance(time.Second)
		return res.ContextID
	}

	low := attach("low", 0.5)
	oldDefault := attach("old default", 0)
	high := attach("high", 3)
	newDefault := attach("new default", 0)

	got, err := env.svc.RetrieveContexts(ctx, "u1", sessionID, "")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []string{high, newDefault, oldDefault, low},
		[]string{got[0].ContextID, got[1].ContextID, got[2].ContextID, got[3].ContextID})
	assert.Equal(t, domain.DefaultRelevance, got[1].Relevance)

	session, err := env.store.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{low, oldDefault, high, newDefault}, session.ContextIDs)
}

func TestRetrieveExcludesExpiredFragments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, func(c *config.Config) { c.Session.ContextTTL = time.Hour })

	res, err := env.svc.AttachContext(ctx, "u1", "", domain.ContextInput{
		Type:    domain.ContextTypeCode,
		Payload: domain.CodePayload{Code: "x"},
	})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	// The session is still live; only the fragment expired.
	_, err = env.svc.ResolveOrCreate(ctx, "u1", res.SessionID, "")
	require.NoError(t, err)

	got, err := env.svc.RetrieveContexts(ctx, "u1", res.SessionID, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieveTypeFilterAndForeignSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	res, err := env.svc.AddCodeContext(ctx, "u1", "", domain.AttachCodeRequest{Code: "fmt.Println()", Language: "go"})
	require.NoError(t, err)
	_, err = env.svc.AddProjectContext(ctx, "u1", res.SessionID, domain.AttachProjectRequest{
		Project: domain.ProjectPayload{Name: "Tower"},
	})
	require.NoError(t, err)

	code, err := env.svc.RetrieveContexts(ctx, "u1", res.SessionID, domain.ContextTypeCode)
	require.NoError(t, err)
	require.Len(t, code, 1)
	assert.Equal(t, []string{"code", "go"}, code[0].Metadata.Tags)

	project, err := env.svc.RetrieveContexts(ctx, "u1", res.SessionID, domain.ContextTypeProject)
	require.NoError(t, err)
	require.Len(t, project, 1)
	assert.Equal(t, []string{"project", "construction"}, project[0].Metadata.Tags)

	foreign, err := env.svc.RetrieveContexts(ctx, "u2", res.SessionID, "")
	require.NoError(t, err)
	assert.Empty(t, foreign)

	unknown, err := env.svc.RetrieveContexts(ctx, "u1", "missing", "")
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestAttachToExpiredSessionCreatesNew(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	sessionID, err := env.svc.ResolveOrCreate(ctx, "u1", "", "")
	require.NoError(t, err)
	env.clock.Advance(25 * time.Hour)

	res, err := env.svc.AttachContext(ctx, "u1", sessionID, domain.ContextInput{
		Type:    domain.ContextTypeFreeform,
		Payload: domain.FreeformPayload{Text: "late"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, sessionID, res.SessionID)
}

func TestAttachRequiresPayload(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.AttachContext(context.Background(), "u1", "", domain.ContextInput{Type: domain.ContextTypeCode})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
