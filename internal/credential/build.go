package credential

import (
	"fmt"

	"github.com/xiaot623/gogo/governor/internal/adapter/llm"
	"github.com/xiaot623/gogo/governor/internal/config"
)

// Slot names used in logs.
const (
	SlotPrimary   = "primary"
	SlotSecondary = "secondary"
)

// BuildRouters creates one router for every provider referenced by a chat mode.
func BuildRouters(cfg *config.Config) (map[string]*Router, error) {
	routers := make(map[string]*Router)
	for _, provider := range []string{cfg.Modes.Developer.Provider, cfg.Modes.General.Provider} {
		if _, ok := routers[provider]; ok {
			continue
		}
		accounts, err := llm.NewAccounts(cfg, provider)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s clients: %w", provider, err)
		}
		primary := Handle{Name: SlotPrimary, Client: accounts.Primary}
		var secondary Handle
		if accounts.Secondary != nil {
			secondary = Handle{Name: SlotSecondary, Client: accounts.Secondary}
		}
		routers[provider] = NewRouter(primary, secondary)
	}
	return routers, nil
}
