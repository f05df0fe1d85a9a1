package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("environment overrides", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Chdir(t.TempDir())
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("ACCESS_TOKEN_TTL", "20m")
		t.Setenv("COOKIE_SECURE", "false")
		t.Setenv("BCRYPT_COST", "11")

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseEnv(cfg))

		assert.Equal(t, "env-secret", cfg.SecretKey)
		assert.Equal(t, 20*time.Minute, cfg.AccessTokenValidityDuration)
		assert.False(t, cfg.CookieSecure)
		assert.Equal(t, 11, cfg.BcryptCost)
		assert.Equal(t, "http://localhost:4000", cfg.AppURL)
	})

	t.Run("missing default dotenv is ignored", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Chdir(t.TempDir())

		cfg := &Config{}
		cfg.LoadDefaults()
		assert.NoError(t, parseEnv(cfg))
	})

	t.Run("exported variables win over dotenv", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTempFile(t, dir, "x.env", "GOOGLE_CLIENT_SECRET=from-file\n")
		os.Args = []string{"testbin", "-env", path}
		t.Setenv("GOOGLE_CLIENT_SECRET", "from-shell")

		cfg := &Config{}
		require.NoError(t, parseEnv(cfg))
		assert.Equal(t, "from-shell", cfg.GoogleClientSecret)
	})

	t.Run("dotenv load error surfaces", func(t *testing.T) {
		orig := godotenvLoad
		t.Cleanup(func() { godotenvLoad = orig })
		godotenvLoad = func(...string) error { return errors.New("boom") }

		os.Args = []string{"testbin"}
		assert.Error(t, parseEnv(&Config{}))
	})

	t.Run("bad duration", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Chdir(t.TempDir())
		t.Setenv("REFRESH_TOKEN_TTL", "a week")

		assert.Error(t, parseEnv(&Config{}))
	})
}
