package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AuthLifetime != 8*time.Hour {
		t.Errorf("AuthLifetime = %v, want 8h", cfg.AuthLifetime)
	}
	if cfg.SessionBackend != SessionBackendMemory {
		t.Errorf("SessionBackend = %q, want memory", cfg.SessionBackend)
	}
	if cfg.Addr != ":8080" || cfg.IsProduction() {
		t.Errorf("Addr = %q, production = %v", cfg.Addr, cfg.IsProduction())
	}
	if len(cfg.TrustedOrigins) != 2 {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GYM_AUTH_LIFETIME", "30m")
	t.Setenv("GYM_SESSION_BACKEND", "redis")
	t.Setenv("GYM_REDIS_ADDR", "redis:6379")
	t.Setenv("GYM_ADMIN_EMAIL", "owner@gym.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AuthLifetime != 30*time.Minute || cfg.SessionBackend != SessionBackendRedis || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Admin.Email != "owner@gym.test" {
		t.Errorf("Admin.Email = %q", cfg.Admin.Email)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("GYM_SESSION_BACKEND", "memcached")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "GYM_SESSION_BACKEND") {
		t.Errorf("Load() error = %v, want backend error", err)
	}
}

func TestSecrets(t *testing.T) {
	key := strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"dev generates missing keys", Config{Env: "development"}, false},
		{"explicit keys", Config{Env: EnvProduction, Keys: Keys{CookieHashHex: key, CookieBlockHex: key, CSRFHex: key}}, false},
		{"production requires keys", Config{Env: EnvProduction}, true},
		{"bad hex", Config{Env: "development", Keys: Keys{CSRFHex: "zz"}}, true},
		{"wrong length", Config{Env: "development", Keys: Keys{CookieHashHex: "abcd"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.cfg.Secrets()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Secrets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (len(s.CookieHash) != 32 || len(s.CookieBlock) != 32 || len(s.CSRF) != 32) {
				t.Errorf("key lengths = %d %d %d", len(s.CookieHash), len(s.CookieBlock), len(s.CSRF))
			}
		})
	}
}
