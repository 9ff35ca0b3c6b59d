// nolint: funlen
package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviecatalog/pkg/config"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads config from environment variables", func(t *testing.T) {
		// Setup environment variables
		envVars := map[string]string{
			"APP_ENV":       "test",
			"PORT":          "8080",
			"SENTRY_DSN":    "https://test@sentry.io/123",
			"ALLOW_ORIGINS": "*",
			"DB_NAME":       "testdb",
			"DB_HOST":       "localhost",
			"DB_PORT":       "5432",
			"DB_USER":       "testuser",
			"DB_PASS":       "testpass",
			"ENABLE_SSL":    "true",
		}

		// Set environment variables
		for key, value := range envVars {
			t.Setenv(key, value)
		}

		// Load config
		cfg, err := config.LoadConfig()

		// Assertions
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "https://test@sentry.io/123", cfg.SentryDSN)
		assert.Equal(t, "*", cfg.AllowOrigins)
		assert.Equal(t, "testdb", cfg.DB.Name)
		assert.Equal(t, "localhost", cfg.DB.Host)
		assert.Equal(t, 5432, cfg.DB.Port)
		assert.Equal(t, "testuser", cfg.DB.User)
		assert.Equal(t, "testpass", cfg.DB.Pass)
		assert.True(t, cfg.DB.EnableSSL)
	})

	t.Run("applies catalog defaults", func(t *testing.T) {
		cfg, err := config.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "mongodb", cfg.AccountStore)
		assert.Equal(t, "moviecatalog", cfg.Mongo.Database)
		assert.Equal(t, "https://www.omdbapi.com", cfg.OMDB.BaseURL)
		assert.Equal(t, "https://image.tmdb.org/t/p/w500", cfg.TMDB.ImageURL)
		assert.Equal(t, 7200, cfg.Auth.TokenTTL)
		assert.Len(t, cfg.Catalog.MovieSeeds, 20)
		assert.Equal(t, "tt0111161", cfg.Catalog.MovieSeeds[0])
		assert.NotEmpty(t, cfg.Catalog.ActorSeeds)
		assert.NotEmpty(t, cfg.Catalog.ProducerSeeds)
	})

	t.Run("splits seed lists", func(t *testing.T) {
		t.Setenv("CATALOG_MOVIE_SEEDS", "tt1,tt2,tt3")
		t.Setenv("ACCOUNT_STORE", "postgres")
		t.Setenv("MONGO_URI", "mongodb://mongo:27017")

		cfg, err := config.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, []string{"tt1", "tt2", "tt3"}, cfg.Catalog.MovieSeeds)
		assert.Equal(t, "postgres", cfg.AccountStore)
		assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	})

	t.Run("handles invalid port number", func(t *testing.T) {
		t.Setenv("PORT", "invalid")

		cfg, err := config.LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "load config error")
	})

	t.Run("handles invalid boolean value", func(t *testing.T) {
		t.Setenv("ENABLE_SSL", "not-a-boolean")

		cfg, err := config.LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "load config error")
	})

	t.Run("handles invalid DB port", func(t *testing.T) {
		t.Setenv("DB_PORT", "not-a-number")

		cfg, err := config.LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "load config error")
	})
}
