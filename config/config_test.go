package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://league@localhost/league?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, slog.LevelInfo, cfg.Server.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.False(t, cfg.Snapshot.Enabled())

	assert.Equal(t, 12*time.Hour, cfg.League.CancellationPenaltyWindow())
	assert.Equal(t, 2*time.Hour, cfg.League.DefaultRegistrationWindow())
	assert.Equal(t, time.Minute, cfg.League.SweeperInterval())
	assert.Equal(t, 100, cfg.League.NoShowPenaltyPoints)
	assert.Equal(t, 20, cfg.League.DefaultTopPlayersCount)

	table := cfg.League.Table()
	for place, want := range map[int]int{1: 300, 7: 90, 15: 30} {
		got, err := table.Points(place)
		require.NoError(t, err)
		assert.Equal(t, want, got, "place %d", place)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("POINTS_TABLE", "1:500,2-3:250")
	t.Setenv("DEFAULT_PLACEMENT_POINTS", "10")
	t.Setenv("R2_BUCKET_NAME", "league")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Server.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Snapshot.Enabled())
	assert.Equal(t, "standings", cfg.Snapshot.Prefix)

	table := cfg.League.Table()
	got, err := table.Points(3)
	require.NoError(t, err)
	assert.Equal(t, 250, got)
	got, err = table.Points(4)
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "70000"}},
		{"bad driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"bad table", map[string]string{"POINTS_TABLE": "1:300,1-2:100"}},
		{"zero penalty", map[string]string{"NO_SHOW_PENALTY_POINTS": "0"}},
		{"zero interval", map[string]string{"SWEEPER_INTERVAL_SECONDS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET_KEY", "secret")
		_, err := Load()
		assert.Error(t, err)
	})
}
