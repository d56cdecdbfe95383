package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram:  TelegramConfig{Token: "123:abc"},
		Assistant: AssistantConfig{APIKey: "sk-test"},
		Game:      GameConfig{URL: "https://example.com/game"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, expected longpoll default", cfg.Telegram.RunMode)
	}
	if cfg.Assistant.Model != "gpt-4" {
		t.Fatalf("model = %q, expected gpt-4 default", cfg.Assistant.Model)
	}
	if cfg.Assistant.MaxTokens != 500 || cfg.Assistant.Temperature != 0.7 {
		t.Fatalf("assistant defaults not applied: %+v", cfg.Assistant)
	}
	if cfg.Assistant.ImageSize != "512x512" {
		t.Fatalf("image size = %q, expected 512x512", cfg.Assistant.ImageSize)
	}
	if cfg.Conference.QuestionsURL == "" {
		t.Fatal("questions URL default not applied")
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("alias not normalized: %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeMissingToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(cfg); err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestNormalizeMissingAssistantKey(t *testing.T) {
	cfg := validConfig()
	cfg.Assistant.APIKey = ""
	if err := Normalize(cfg); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestNormalizeMissingGameURL(t *testing.T) {
	cfg := validConfig()
	cfg.Game.URL = ""
	if err := Normalize(cfg); err == nil || !strings.Contains(err.Error(), "game.url") {
		t.Fatalf("expected game.url error, got %v", err)
	}
}

func TestNormalizeWebhookRequiresEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected webhook validation error")
	}
	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize webhook: %v", err)
	}
}

func TestNormalizeRateLimitExcludes(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != "callback" {
		t.Fatalf("exclude not normalized: %v", cfg.RateLimit.ExcludeUpdates)
	}
	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected invalid exclude error")
	}
}
