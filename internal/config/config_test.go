package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "DATABASE_URL", "AUTH_SECRET", "JWT_SECRET", "JWT_TTL_HOURS",
		"ALLOWED_ORIGINS", "DEPLOY_ENV", "VERCEL_ENV", "PREVIEW_HOST_SUFFIX", "FRONTEND_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 24, cfg.JWTTTL)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.DeployEnv)
	assert.Equal(t, ".vercel.app", cfg.PreviewHostSuffix)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("JWT_SECRET", "fallback-secret")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")
	t.Setenv("DEPLOY_ENV", "")
	t.Setenv("VERCEL_ENV", "preview")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")
	t.Setenv("GLOBAL_RATE_LIMIT_RPS", "12.5")
	t.Setenv("FRONTEND_URL", "https://aether.link/")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "fallback-secret", cfg.JWTSecret)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "preview", cfg.DeployEnv)
	assert.Equal(t, 24, cfg.JWTTTL)
	assert.Equal(t, 12.5, cfg.GlobalRateRPS)
	assert.Equal(t, "https://aether.link", cfg.FrontendURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "missing secret in development", cfg: Config{AppEnv: EnvDevelopment}, wantErr: true},
		{name: "missing secret in production", cfg: Config{AppEnv: EnvProduction}, wantErr: true},
		{name: "missing secret in test mode", cfg: Config{AppEnv: EnvTest}},
		{name: "secret present", cfg: Config{AppEnv: EnvProduction, JWTSecret: "s3cret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
