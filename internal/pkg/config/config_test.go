package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Env:          "production",
		InviteSecret: "s3cret",
		Session: SessionConfig{
			Store:       StoreMongo,
			TTL:         7 * 24 * time.Hour,
			RememberTTL: 30 * 24 * time.Hour,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid mongo", func(*Config) {}, false},
		{"valid redis", func(c *Config) { c.Session.Store = StoreRedis }, false},
		{"unknown store", func(c *Config) { c.Session.Store = "memcached" }, true},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, true},
		{"negative remember ttl", func(c *Config) { c.Session.RememberTTL = -time.Hour }, true},
		{"missing invite secret", func(c *Config) { c.InviteSecret = "" }, true},
		{"missing invite secret in development", func(c *Config) {
			c.InviteSecret = ""
			c.Env = "development"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")

	cfg := Load()

	if cfg.Session.Store != StoreMongo {
		t.Errorf("expected default store %q, got %q", StoreMongo, cfg.Session.Store)
	}
	if cfg.Session.TTL != 168*time.Hour || cfg.Session.RememberTTL != 720*time.Hour {
		t.Errorf("unexpected session ttls: %v / %v", cfg.Session.TTL, cfg.Session.RememberTTL)
	}
	if cfg.Session.CacheTTL != time.Minute {
		t.Errorf("expected 60s cache ttl, got %v", cfg.Session.CacheTTL)
	}
	if cfg.Cookie.SameSite != "lax" || cfg.AuditWorkers != 4 {
		t.Errorf("unexpected defaults: samesite=%q workers=%d", cfg.Cookie.SameSite, cfg.AuditWorkers)
	}
}
