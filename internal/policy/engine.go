// Package policy evaluates the rego model-selection policy.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// Actions returned by the policy.
const (
	ActionAllow     = "allow"
	ActionDowngrade = "downgrade"
)

// Input is the document the policy sees as `input`.
type Input struct {
	UserID        string `json:"user_id"`
	OrgID         string `json:"org_id"`
	Privileged    bool   `json:"privileged"`
	Mode          string `json:"mode"`
	Model         string `json:"model"`
	Tier          string `json:"tier"`
	RequestsUsed  int64  `json:"requests_used"`
	RequestsLimit int64  `json:"requests_limit"`
}

// NewInput builds policy input for one chat call. counter may be nil for
// users who have never made a request.
func NewInput(identity domain.Identity, mode domain.ChatMode, model string, counter *domain.RequestCounter) Input {
	in := Input{
		UserID:        identity.UserID,
		OrgID:         identity.OrgID,
		Privileged:    identity.Privileged,
		Mode:          string(mode),
		Model:         model,
		Tier:          string(domain.TierFree),
		RequestsLimit: domain.DefaultRequestsLimit,
	}
	if counter != nil {
		in.Tier = string(counter.Tier)
		in.RequestsUsed = counter.RequestsUsed
		in.RequestsLimit = counter.RequestsLimit
	}
	return in
}

// Decision is the policy result.
type Decision struct {
	Action string
	Reason string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.model_policy.decision"),
		rego.Module("model_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// LoadEngine reads the policy from path, or uses DefaultPolicy when path is empty.
func LoadEngine(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Evaluate runs the policy. An undefined result means allow.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Action: ActionAllow, Reason: "default"}, nil
	}

	switch val := results[0].Expressions[0].Value.(type) {
	case string:
		return Decision{Action: val}, nil
	case map[string]interface{}:
		d := Decision{Action: ActionAllow}
		if s, ok := val["action"].(string); ok {
			d.Action = s
		}
		if s, ok := val["reason"].(string); ok {
			d.Reason = s
		}
		return d, nil
	}
	return Decision{Action: ActionAllow, Reason: "unexpected return type"}, nil
}

// DefaultPolicy downgrades privileged callers who have used up a
// non-enterprise plan. Nobody is rejected by policy.
const DefaultPolicy = `
package model_policy

default decision = {"action": "allow", "reason": ""}

decision = {"action": "downgrade", "reason": "request quota exhausted"} {
	input.privileged
	input.tier != "enterprise"
	input.requests_limit > 0
	input.requests_used >= input.requests_limit
}
`
