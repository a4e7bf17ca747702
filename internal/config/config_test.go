package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvWithDefault(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "should return env value when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "from_env",
			expected:     "from_env",
		},
		{
			name:         "should return default when env not set",
			key:          "MISSING_KEY",
			defaultValue: "default_value",
			envValue:     "",
			expected:     "default_value",
		},
		{
			name:         "should return empty string default",
			key:          "EMPTY_KEY",
			defaultValue: "",
			envValue:     "",
			expected:     "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			result := GetEnvWithDefault(tt.key, tt.defaultValue)

			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvAsType(t *testing.T) {
	t.Setenv("INT_KEY", "42")
	t.Setenv("BAD_INT_KEY", "forty-two")
	t.Setenv("BOOL_KEY", "false")
	t.Setenv("DURATION_KEY", "90s")

	assert.Equal(t, 42, GetEnvAsType("INT_KEY", 1))
	assert.Equal(t, 1, GetEnvAsType("BAD_INT_KEY", 1))
	assert.Equal(t, false, GetEnvAsType("BOOL_KEY", true))
	assert.Equal(t, 90*time.Second, GetEnvAsType("DURATION_KEY", time.Minute))
	assert.Equal(t, 7, GetEnvAsType("UNSET_INT_KEY", 7))
}

func TestLoadConfig(t *testing.T) {
	vars := []string{
		"APP_PORT", "APP_HOST", "LOG_LEVEL", "JWT_SECRET", "DB_DRIVER", "TIME_ZONE",
		"DATABASE_URL", "CORS_ORIGINS", "CHECKOUT_RATE_PER_MINUTE",
	}
	cleanupTestEnv := func() {
		for _, v := range vars {
			os.Unsetenv(v)
		}
	}

	t.Run("successful config load with all env vars", func(t *testing.T) {
		cleanupTestEnv()
		t.Setenv("APP_PORT", "9000")
		t.Setenv("APP_HOST", "0.0.0.0")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("JWT_SECRET", "super_secret_jwt_key")
		t.Setenv("DB_DRIVER", "Postgres")
		t.Setenv("TIME_ZONE", "Europe/Berlin")
		t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
		t.Setenv("CHECKOUT_RATE_PER_MINUTE", "5")

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 9000, config.Port)
		assert.Equal(t, "0.0.0.0", config.Host)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, "postgres", config.DBDriver)
		assert.Equal(t, "Europe/Berlin", config.Location().String())
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, config.CORSOrigins)
		assert.Equal(t, 5, config.CheckoutRatePerMinute)
	})

	t.Run("should fail with invalid port", func(t *testing.T) {
		cleanupTestEnv()
		t.Setenv("APP_PORT", "not_a_number")

		config, err := LoadConfig()

		assert.Error(t, err)
		assert.Nil(t, config)
	})

	t.Run("should fail with unknown driver", func(t *testing.T) {
		cleanupTestEnv()
		t.Setenv("DB_DRIVER", "oracle")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("should fail with unknown time zone", func(t *testing.T) {
		cleanupTestEnv()
		t.Setenv("TIME_ZONE", "Mars/Olympus_Mons")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("should use defaults when optional env vars not set", func(t *testing.T) {
		cleanupTestEnv()

		config, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 8080, config.Port)
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "sqlite", config.DBDriver)
		assert.Equal(t, time.UTC, config.Location())
		assert.Equal(t, []string{"*"}, config.CORSOrigins)
		assert.Equal(t, 12*time.Hour, config.TokenTTL)
	})
}

func TestConfigStringMasksSecrets(t *testing.T) {
	c := &Config{
		DBPassword:  "hunter2",
		JWTSecret:   "jwt-secret",
		DatabaseURL: "postgres://pizza:hunter2@db:5432/pizzeria",
	}
	s := c.String()
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "jwt-secret")
	assert.Contains(t, s, "pizza:%5BREDACTED%5D@db:5432")
}

func BenchmarkGetEnvWithDefault(b *testing.B) {
	os.Setenv("BENCH_KEY", "test_value")
	defer os.Unsetenv("BENCH_KEY")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GetEnvWithDefault("BENCH_KEY", "default")
	}
}
