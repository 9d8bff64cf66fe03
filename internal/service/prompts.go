package service

import (
	"github.com/xiaot623/gogo/governor/internal/config"
	"github.com/xiaot623/gogo/governor/internal/domain"
)

const developerSystemPrompt = `You are an SDK developer assistant for a construction management platform.
Help developers build modules and apps on the platform SDK, explain its APIs, debug problems and suggest fixes.
Give clear, actionable answers with code examples where they help, and call out security and performance concerns.`

const generalSystemPrompt = `You are an AI assistant specialized in construction management and project coordination.
Give practical, construction-industry-specific advice with attention to site safety and industry best practice.`

// modeConfig returns the configured settings for mode.
func (s *Service) modeConfig(mode domain.ChatMode) config.ModeConfig {
	if mode == domain.ChatModeDeveloper {
		return s.config.Modes.Developer
	}
	return s.config.Modes.General
}

func systemPromptFor(mode domain.ChatMode, mc config.ModeConfig) string {
	if mc.SystemPrompt != "" {
		return mc.SystemPrompt
	}
	if mode == domain.ChatModeDeveloper {
		return developerSystemPrompt
	}
	return generalSystemPrompt
}
