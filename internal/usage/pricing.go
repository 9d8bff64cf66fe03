// Package usage prices upstream calls and records them.
package usage

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Rate is the per-token price of one model.
type Rate struct {
	Prompt     float64 `yaml:"prompt"`
	Completion float64 `yaml:"completion"`
}

// Cost returns prompt*Prompt + completion*Completion.
func (r Rate) Cost(promptTokens, completionTokens int64) float64 {
	return float64(promptTokens)*r.Prompt + float64(completionTokens)*r.Completion
}

// Pricing maps model names to rates. Models missing from the table are
// billed at the fallback row.
type Pricing struct {
	rates    map[string]Rate
	fallback string
}

// per1K converts a per-1000-token price into a per-token Rate.
func per1K(prompt, completion float64) Rate {
	return Rate{Prompt: prompt / 1000, Completion: completion / 1000}
}

// DefaultRates is the built-in price list.
var DefaultRates = map[string]Rate{
	"gpt-4":                   per1K(0.03, 0.06),
	"gpt-4-turbo":             per1K(0.01, 0.03),
	"gpt-4o":                  per1K(0.0025, 0.01),
	"gpt-4o-mini":             per1K(0.00015, 0.0006),
	"gpt-3.5-turbo":           per1K(0.0005, 0.0015),
	"gemini-2.0-flash":        per1K(0.0001, 0.0004),
	"gemini-1.5-pro":          per1K(0.00125, 0.005),
	"claude-3-5-sonnet":       per1K(0.003, 0.015),
	"claude-3-5-haiku-latest": per1K(0.0008, 0.004),
}

// NewPricing builds a table. An empty fallback selects the cheapest row.
func NewPricing(rates map[string]Rate, fallback string) (*Pricing, error) {
	if len(rates) == 0 {
		return nil, errors.New("pricing table is empty")
	}
	p := &Pricing{rates: make(map[string]Rate, len(rates)), fallback: fallback}
	for model, r := range rates {
		if r.Prompt < 0 || r.Completion < 0 {
			return nil, fmt.Errorf("model %s has a negative rate", model)
		}
		p.rates[model] = r
	}
	if p.fallback == "" {
		p.fallback = cheapest(p.rates)
	}
	if _, ok := p.rates[p.fallback]; !ok {
		return nil, fmt.Errorf("fallback model %s is not priced", p.fallback)
	}
	return p, nil
}

// DefaultPricing returns the built-in table.
func DefaultPricing() *Pricing {
	p, err := NewPricing(DefaultRates, "")
	if err != nil {
		panic(err)
	}
	return p
}

type pricingFile struct {
	// Rates in the file are per 1000 tokens.
	Models   map[string]Rate `yaml:"models"`
	Fallback string          `yaml:"fallback"`
}

// LoadPricing reads a YAML pricing file:
//
//	fallback: gpt-3.5-turbo
//	models:
//	  gpt-4: {prompt: 0.03, completion: 0.06}
//
// Prices are per 1000 tokens. An empty path returns the built-in table.
func LoadPricing(path string) (*Pricing, error) {
	if path == "" {
		return DefaultPricing(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing file: %w", err)
	}
	var f pricingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse pricing file: %w", err)
	}
	rates := make(map[string]Rate, len(f.Models))
	for model, r := range f.Models {
		rates[model] = per1K(r.Prompt, r.Completion)
	}
	return NewPricing(rates, f.Fallback)
}

// Lookup returns the rate for model and whether it was priced explicitly.
func (p *Pricing) Lookup(model string) (Rate, bool) {
	if r, ok := p.rates[model]; ok {
		return r, true
	}
	return p.rates[p.fallback], false
}

// Fallback names the row used for unknown models.
func (p *Pricing) Fallback() string {
	return p.fallback
}

// Cost prices one call.
func (p *Pricing) Cost(model string, promptTokens, completionTokens int64) float64 {
	r, _ := p.Lookup(model)
	return r.Cost(promptTokens, completionTokens)
}

// cheapest picks the lowest combined rate, breaking ties by name.
func cheapest(rates map[string]Rate) string {
	best, bestCost := "", math.Inf(1)
	for model, r := range rates {
		c := r.Prompt + r.Completion
		if c < bestCost || (c == bestCost && model < best) {
			best, bestCost = model, c
		}
	}
	return best
}
