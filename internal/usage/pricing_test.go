package usage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostTierA(t *testing.T) {
	p, err := NewPricing(map[string]Rate{
		"tier-A": {Prompt: 0.00003, Completion: 0.00006},
		"tier-B": {Prompt: 0.000001, Completion: 0.000002},
	}, "")
	require.NoError(t, err)

	assert.InDelta(t, 0.06, p.Cost("tier-A", 1000, 500), 1e-12)
}

func TestUnknownModelUsesLowestTier(t *testing.T) {
	p := DefaultPricing()
	assert.Equal(t, "gemini-2.0-flash", p.Fallback())

	r, priced := p.Lookup("made-up-model")
	assert.False(t, priced)
	assert.Equal(t, DefaultRates["gemini-2.0-flash"], r)
	assert.InDelta(t, p.Cost("gemini-2.0-flash", 100, 100), p.Cost("made-up-model", 100, 100), 1e-12)
}

func TestDefaultRatesPer1K(t *testing.T) {
	p := DefaultPricing()
	assert.InDelta(t, 0.03+0.06, p.Cost("gpt-4", 1000, 1000), 1e-12)
	assert.InDelta(t, 0.01+0.03, p.Cost("gpt-4-turbo", 1000, 1000), 1e-12)
	assert.InDelta(t, 0.0005+0.0015, p.Cost("gpt-3.5-turbo", 1000, 1000), 1e-12)
}

func TestNewPricingErrors(t *testing.T) {
	_, err := NewPricing(nil, "")
	assert.Error(t, err)

	_, err = NewPricing(map[string]Rate{"a": {Prompt: -1}}, "")
	assert.Error(t, err)

	_, err = NewPricing(map[string]Rate{"a": {Prompt: 1}}, "b")
	assert.Error(t, err)
}

func TestLoadPricing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fallback: cheap
models:
  premium: {prompt: 0.03, completion: 0.06}
  cheap: {prompt: 0.001, completion: 0.002}
`), 0o600))

	p, err := LoadPricing(path)
	require.NoError(t, err)
	assert.Equal(t, "cheap", p.Fallback())
	assert.InDelta(t, 0.06, p.Cost("premium", 1000, 500), 1e-12)
	assert.InDelta(t, 0.002, p.Cost("unknown", 1000, 500), 1e-12)

	p, err = LoadPricing("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPricing().Fallback(), p.Fallback())

	_, err = LoadPricing(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
