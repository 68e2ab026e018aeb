package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aidar/project-tracker/internal/app"
	"github.com/aidar/project-tracker/internal/config"
)

const (
	dbName     = "project_tracker_test"
	dbUser     = "tracker"
	dbPassword = "tracker_pass"
)

// TestEnvironment поднятое приложение поверх PostgreSQL в контейнере
type TestEnvironment struct {
	BaseURL string
	DB      *pgxpool.Pool
	client  *http.Client
	ctx     context.Context
}

// SetupTestEnvironment запускает PostgreSQL со схемой из migrations и приложение на свободном порту.
// Все ресурсы освобождаются через t.Cleanup.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	// Схема применяется init-скриптом контейнера
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.WithInitScripts(migrationPath(t)),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "postgres container did not start")
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: freePort(t)},
		Database: config.DatabaseConfig{
			Host:     host,
			Port:     port.Port(),
			User:     dbUser,
			Password: dbPassword,
			Name:     dbName,
			SSLMode:  "disable",
			MaxConns: 5,
			MinConns: 1,
		},
		JWT:  config.JWTConfig{Secret: "integration-secret", ExpirationHours: 1},
		Auth: config.AuthConfig{BcryptCost: 4},
		Log:  config.LogConfig{Level: "warn"},
	}

	application, err := app.New(cfg)
	require.NoError(t, err)
	require.NoError(t, application.Initialize(ctx))

	go func() {
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("server stopped: %v", err)
		}
	}()
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = application.Shutdown(shutdownCtx)
	})

	// Отдельный пул для проверок состояния БД в тестах
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	env := &TestEnvironment{
		BaseURL: "http://" + net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		DB:      pool,
		client:  &http.Client{Timeout: 10 * time.Second},
		ctx:     ctx,
	}
	env.waitHealthy(t)
	return env
}

// DoJSON отправляет JSON тело и возвращает статус и прочитанный ответ
func (te *TestEnvironment) DoJSON(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(te.ctx, method, te.BaseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := te.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (te *TestEnvironment) waitHealthy(t *testing.T) {
	t.Helper()

	require.Eventually(t, func() bool {
		resp, err := te.client.Get(te.BaseURL + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 100*time.Millisecond, "application did not become healthy")
}

// freePort занимает и сразу освобождает порт, чтобы параллельные прогоны не конфликтовали
func freePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	return port
}

// migrationPath ищет корень модуля по go.mod и возвращает путь к up-миграции
func migrationPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations", "000001_init_schema.up.sql")
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found above %s", dir)
		dir = parent
	}
}
