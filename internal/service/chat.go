package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xiaot623/gogo/governor/internal/adapter/llm"
	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/domain"
	"github.com/xiaot623/gogo/governor/internal/logger"
	"github.com/xiaot623/gogo/governor/internal/metrics"
	"github.com/xiaot623/gogo/governor/internal/policy"
	"github.com/xiaot623/gogo/governor/internal/prompt"
	"github.com/xiaot623/gogo/governor/internal/usage"
)

// emptyReply stands in for a completion with no text.
const emptyReply = "I apologize, but I could not generate a response."

// Chat runs one conversational turn: resolve the session, record the user
// turn, assemble the prompt, pass the rate limiter, pick a credential, call
// upstream under a timeout, then record usage and the assistant turn.
//
// The user turn is stamped with the call start, so a session's log follows
// call order even when replies complete out of order.
//
// Only rate limiting and upstream failures are returned as errors, wrapped in
// a *domain.SessionError. A 429 from the provider yields the fallback reply
// and no usage record.
func (s *Service) Chat(ctx context.Context, identity domain.Identity, req domain.ChatRequest) (*domain.ChatResult, error) {
	startedAt := s.now().UTC()
	mode := req.Mode
	if mode == "" {
		mode = domain.ChatModeGeneral
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unsupported mode %q", domain.ErrInvalidInput, req.Mode)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	mc := s.modeConfig(mode)

	sessionID, err := s.ResolveOrCreate(ctx, identity.UserID, req.SessionID, domain.SessionKindFor(mode))
	if err != nil {
		return nil, err
	}
	contexts, err := s.retrieve(ctx, sessionID, "")
	if err != nil {
		return nil, err
	}
	recent, err := s.store.GetRecentMessages(ctx, sessionID, s.config.Session.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	refs := prompt.ContextIDs(contexts)
	s.appendMessage(ctx, sessionID, domain.RoleUser, req.Message, refs, startedAt)

	messages := prompt.Assemble(systemPromptFor(mode, mc), contexts, recent, req.Message, prompt.Options{
		HistorySize: s.config.Session.HistorySize,
		TokenBudget: s.config.Session.TokenBudget,
	})

	if err := s.limiter.Allow(); err != nil {
		logger.Warn("Chat rejected by rate limiter", "user_id", identity.UserID, "session_id", sessionID, "error", err)
		s.metrics.RateLimitRejected()
		s.metrics.ChatRequest(string(mode), metrics.OutcomeRateLimited)
		return nil, &domain.SessionError{SessionID: sessionID, Err: err}
	}

	router, ok := s.routers[mc.Provider]
	if !ok || router == nil {
		s.metrics.ChatRequest(string(mode), metrics.OutcomeUpstream)
		return nil, &domain.SessionError{
			SessionID: sessionID,
			Err:       fmt.Errorf("%w: no client configured for provider %s", domain.ErrUpstreamUnavailable, mc.Provider),
		}
	}
	handle := router.Select(identity.Privileged)
	model := s.selectModel(ctx, identity, mode, mc)

	resp, err := s.complete(ctx, handle.Client, &llm.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: mc.Temperature,
		MaxTokens:   mc.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamThrottled) {
			logger.Warn("Upstream throttled, returning fallback reply",
				"provider", handle.Client.Provider(), "credential", handle.Name, "error", err)
			s.metrics.ChatRequest(string(mode), metrics.OutcomeFallback)
			return &domain.ChatResult{Response: domain.ThrottledFallback, SessionID: sessionID, Fallback: true}, nil
		}
		logger.Error("Upstream call failed",
			"provider", handle.Client.Provider(), "credential", handle.Name, "model", model, "error", err)
		s.metrics.ChatRequest(string(mode), metrics.OutcomeUpstream)
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return nil, &domain.SessionError{SessionID: sessionID, Err: err}
	}

	reply := resp.Content
	if strings.TrimSpace(reply) == "" {
		reply = emptyReply
	}

	// The caller may hang up once the reply exists; the audit trail is still written.
	persistCtx := context.WithoutCancel(ctx)
	record := s.tracker.Record(persistCtx, usage.Call{
		UserID:           identity.UserID,
		OrgID:            identity.OrgID,
		Provider:         handle.Client.Provider(),
		Model:            model,
		RequestType:      domain.RequestTypeFor(mode),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	})
	s.appendMessage(persistCtx, sessionID, domain.RoleAssistant, reply, refs, s.now().UTC())

	s.metrics.ChatRequest(string(mode), metrics.OutcomeOK)
	return &domain.ChatResult{Response: reply, SessionID: sessionID, Usage: record}, nil
}

// complete is the single blocking upstream call, bounded by upstream.timeout.
func (s *Service) complete(ctx context.Context, client llm.Client, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.config.Upstream.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.CreateChatCompletion(callCtx, req)
	s.metrics.UpstreamLatency(client.Provider(), time.Since(start))
	return resp, err
}

// selectModel applies the quota policy. Policy or counter failures keep the
// configured model.
func (s *Service) selectModel(ctx context.Context, identity domain.Identity, mode domain.ChatMode, mc config.ModeConfig) string {
	if s.policyEngine == nil || mc.DowngradeModel == "" {
		return mc.Model
	}
	counter, err := s.store.GetRequestCounter(ctx, identity.UserID)
	if err != nil {
		logger.Warn("Failed to read request counter, skipping policy", "user_id", identity.UserID, "error", err)
		return mc.Model
	}
	decision, err := s.policyEngine.Evaluate(ctx, policy.NewInput(identity, mode, mc.Model, counter))
	if err != nil {
		logger.Warn("Model policy evaluation failed", "user_id", identity.UserID, "error", err)
		return mc.Model
	}
	if decision.Action == policy.ActionDowngrade {
		logger.Info("Model downgraded by policy",
			"user_id", identity.UserID, "from", mc.Model, "to", mc.DowngradeModel, "reason", decision.Reason)
		return mc.DowngradeModel
	}
	return mc.Model
}
