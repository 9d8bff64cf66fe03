package credential

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/governor/internal/adapter/llm"
	"github.com/xiaot623/gogo/governor/internal/config"
)

func newHandles() (Handle, Handle) {
	return Handle{Name: "primary", Client: llm.NewMockClient("openai")},
		Handle{Name: "secondary", Client: llm.NewMockClient("openai")}
}

func TestRouterNonPrivilegedAlwaysPrimary(t *testing.T) {
	p, s := newHandles()
	r := NewRouter(p, s)

	for i := 0; i < 5; i++ {
		assert.Equal(t, "primary", r.Select(false).Name)
	}
}

func TestRouterPrivilegedAlternates(t *testing.T) {
	p, s := newHandles()
	r := NewRouter(p, s)

	var got []string
	for i := 0; i < 4; i++ {
		got = append(got, r.Select(true).Name)
	}
	assert.Equal(t, []string{"secondary", "primary", "secondary", "primary"}, got)
}

func TestRouterNonPrivilegedDoesNotAdvanceToggle(t *testing.T) {
	p, s := newHandles()
	r := NewRouter(p, s)

	assert.Equal(t, "secondary", r.Select(true).Name)
	r.Select(false)
	r.Select(false)
	assert.Equal(t, "primary", r.Select(true).Name)
}

func TestRouterMissingSecondaryUsesPrimary(t *testing.T) {
	p, _ := newHandles()
	r := NewRouter(p, Handle{})

	assert.Same(t, p.Client, r.Select(true).Client)
	assert.Same(t, p.Client, r.Select(true).Client)
}

func TestRouterConcurrentSplitIsEven(t *testing.T) {
	p, s := newHandles()
	r := NewRouter(p, s)

	var mu sync.Mutex
	counts := map[string]int{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				name := r.Select(true).Name
				mu.Lock()
				counts[name]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 500, counts["primary"])
	assert.Equal(t, 500, counts["secondary"])
}

func TestBuildRouters(t *testing.T) {
	cfg := config.Default()
	cfg.Upstream.Mode = config.UpstreamModeMock

	routers, err := BuildRouters(cfg)
	require.NoError(t, err)
	require.Len(t, routers, 2)
	require.Contains(t, routers, config.ProviderOpenAI)
	require.Contains(t, routers, config.ProviderGemini)

	first := routers[config.ProviderOpenAI].Select(true)
	second := routers[config.ProviderOpenAI].Select(true)
	assert.Equal(t, SlotSecondary, first.Name)
	assert.Equal(t, SlotPrimary, second.Name)
	assert.NotSame(t, first.Client, second.Client)
}

func TestBuildRoutersWithoutSecondaryKey(t *testing.T) {
	cfg := config.Default()
	cfg.Providers.OpenAI.APIKey = "sk-primary"
	cfg.Providers.Gemini.APIKey = "gm-primary"

	routers, err := BuildRouters(cfg)
	require.NoError(t, err)

	r := routers[config.ProviderOpenAI]
	assert.Same(t, r.Select(true).Client, r.Select(true).Client)
}
