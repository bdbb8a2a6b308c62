package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	t.Setenv("ENV", "")
	t.Setenv("MONGODB_URI", "")

	env, err := Load()
	require.NoError(t, err)

	require.Equal(t, "development", env.Mode)
	require.True(t, env.IsDev())
	require.Equal(t, 8080, env.Server.Port)
	require.Equal(t, 10*time.Second, env.Server.RequestTimeout)
	require.Equal(t, MongoDBDriver, env.Storage.Driver)
	require.Equal(t, "e-health", env.MongoDB.DB)
	require.Equal(t, "mongodb://localhost:27017", env.MongoDB.Address())
	require.Equal(t, 10, env.PageSize)
}

func TestLoadFromEnvironment(t *testing.T) {

	t.Setenv("ENV", "production")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "3s")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27018/?replicaSet=rs0")
	t.Setenv("MONGODB_NAME", "ehr_prod")
	t.Setenv("PAGE_SIZE", "25")

	env, err := Load()
	require.NoError(t, err)

	require.False(t, env.IsDev())
	require.Equal(t, 9090, env.Server.Port)
	require.Equal(t, 3*time.Second, env.Server.RequestTimeout)
	require.Equal(t, MemoryDriver, env.Storage.Driver)
	require.Equal(t, "mongodb://db.internal:27018/?replicaSet=rs0", env.MongoDB.Address())
	require.Equal(t, "ehr_prod", env.MongoDB.DB)
	require.Equal(t, 25, env.PageSize)
}

func TestLoadRejectsInvalidValues(t *testing.T) {

	var testCases = map[string][2]string{
		"Unknown mode":     {"ENV", "staging"},
		"Unknown driver":   {"STORAGE_DRIVER", "postgres"},
		"Page size zero":   {"PAGE_SIZE", "0"},
		"Port too large":   {"SERVER_PORT", "70000"},
		"Unknown loglevel": {"LOG_LEVEL", "verbose"},
	}

	for name, kv := range testCases {

		t.Run(name, func(t *testing.T) {

			t.Setenv(kv[0], kv[1])

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func chdir(t *testing.T, content string) {

	dir := t.TempDir()
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})
}

func TestLoadDotEnv(t *testing.T) {

	t.Run("Should read values from the .env file", func(t *testing.T) {

		t.Setenv("MONGODB_NAME", "")
		t.Setenv("PAGE_SIZE", "")
		chdir(t, "MONGODB_NAME=from_file\nPAGE_SIZE=30\n")

		env, err := Load()
		require.NoError(t, err)
		require.Equal(t, "from_file", env.MongoDB.DB)
		require.Equal(t, 30, env.PageSize)
	})

	t.Run("Should fall back to defaults without a .env file", func(t *testing.T) {

		t.Setenv("MONGODB_NAME", "")
		chdir(t, "")

		env, err := Load()
		require.NoError(t, err)
		require.Equal(t, "e-health", env.MongoDB.DB)
	})

	t.Run("Should fail on a malformed .env file", func(t *testing.T) {

		chdir(t, "this line is not a pair\n")

		_, err := Load()
		require.ErrorContains(t, err, "read .env failed")
	})
}
