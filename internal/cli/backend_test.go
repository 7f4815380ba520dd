package cli

import (
	"strings"
	"testing"

	"github.com/mapforge/mapforge/pkg/config"
)

func TestNewKeyer(t *testing.T) {
	plain := newKeyer(config.CacheConfig{Backend: "file"})
	scoped := newKeyer(config.CacheConfig{
		Backend: "redis",
		Redis:   config.RedisConfig{Namespace: "staging"},
	})

	plainKey := plain.GeocodeKey("college station")
	scopedKey := scoped.GeocodeKey("college station")

	if !strings.HasPrefix(scopedKey, "staging:") {
		t.Errorf("scoped key = %q, want staging: prefix", scopedKey)
	}
	if scopedKey == plainKey {
		t.Error("scoped and plain keys should differ")
	}

	// Namespace only applies to the redis backend.
	fileScoped := newKeyer(config.CacheConfig{
		Backend: "file",
		Redis:   config.RedisConfig{Namespace: "staging"},
	})
	if got := fileScoped.GeocodeKey("college station"); got != plainKey {
		t.Errorf("file backend key = %q, want unscoped %q", got, plainKey)
	}
}
