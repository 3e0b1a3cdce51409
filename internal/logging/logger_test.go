package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/i474232898/owm-current-weather/internal/config"
)

func TestNewProdUsesJSON(t *testing.T) {
	l := New(&config.AppConfig{AppEnv: "prod", LogLevel: slog.LevelWarn})

	if _, ok := l.Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("expected JSON handler in prod, got %T", l.Handler())
	}
	if l.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("expected info to be filtered at warn level")
	}
}

func TestNewDevRespectsLevel(t *testing.T) {
	l := New(&config.AppConfig{AppEnv: "dev", LogLevel: slog.LevelDebug})

	if _, ok := l.Handler().(*slog.JSONHandler); ok {
		t.Fatalf("expected console handler in dev")
	}
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("expected debug to be enabled")
	}
}
