package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MATCH_SOURCE", "")
	t.Setenv("AUTO_INVITE_DEFAULT_LIMIT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Matching.Source)
	require.Equal(t, 5, cfg.Matching.DefaultTopLimit)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoadRejectsUnknownMatchSource(t *testing.T) {
	t.Setenv("MATCH_SOURCE", "ai")

	_, err := Load()
	require.Error(t, err)
}

func TestDSNPrefersURL(t *testing.T) {
	c := DatabaseConfig{URL: "postgres://u@h/db", Host: "ignored"}
	require.Equal(t, "postgres://u@h/db", c.DSN())

	c = DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d", SSLMode: "disable"}
	require.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.DSN())
}
