package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "DB_DRIVER", "DATABASE_URL", "SERVER_PORT", "ADMIN_PASSWORD_HASH", "ADMIN_PASSWORD",
		"SESSION_LIFETIME", "LOCK_BACKEND", "REDIS_URL", "REDIS_PASSWORD", "REDIS_DB", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "tablecup.db?_journal_mode=WAL", cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, LockLocal, cfg.LockBackend)
	assert.Empty(t, cfg.CORSOrigins)
	assert.True(t, cfg.CheckAdminPassword("admin"))
	assert.False(t, cfg.CheckAdminPassword("nope"))
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://cup@localhost/cup?sslmode=disable")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ADMIN_PASSWORD_HASH", string(hash))
	t.Setenv("SESSION_LIFETIME", "90m")
	t.Setenv("LOCK_BACKEND", "redis")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 90*time.Minute, cfg.SessionLifetime)
	assert.Equal(t, LockRedis, cfg.LockBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.CheckAdminPassword("s3cret"))
}

func TestFromEnvPlainPassword(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_PASSWORD", "letmein")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.CheckAdminPassword("letmein"))
	assert.False(t, cfg.CheckAdminPassword("admin"))
}

func TestFromEnvErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "no admin password in production", env: map[string]string{}},
		{name: "unknown env", env: map[string]string{"APP_ENV": "staging", "ADMIN_PASSWORD": "x"}},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "port not a number", env: map[string]string{"SERVER_PORT": "http"}},
		{name: "port out of range", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "bad lifetime", env: map[string]string{"SESSION_LIFETIME": "forever"}},
		{name: "unknown lock backend", env: map[string]string{"LOCK_BACKEND": "etcd"}},
		{name: "redis without address", env: map[string]string{"LOCK_BACKEND": "redis"}},
		{name: "bad redis db", env: map[string]string{"LOCK_BACKEND": "redis", "REDIS_URL": "localhost:6379", "REDIS_DB": "x"}},
		{name: "bad password hash", env: map[string]string{"ADMIN_PASSWORD_HASH": "plaintext"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
