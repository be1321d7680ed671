package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var survey = []string{"94105", "Ada Lovelace", "ada@example.com", "no", "personal", "valid"}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, MaxInputSize: 4096},
		Store:  config.StoreConfig{Type: config.StoreMemory},
		LLM:    config.LLMConfig{Model: "gpt-4", Timeout: time.Second, MaxRetries: 1},
		Vehicle: config.VehicleConfig{
			Enabled:   false,
			Timeout:   time.Second,
			CacheSize: 16,
			MaxYear:   2026,
		},
		Flow: config.FlowConfig{MaxAttempts: 3, ValidatorTimeout: 5 * time.Second},
		Log:  config.LogConfig{Level: "info"},
	}
}

func build(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := Build(t.Context(), cfg, BuildOptions{LogWriter: &bytes.Buffer{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func complete(t *testing.T, app *App, id string) domain.Envelope {
	t.Helper()
	ctx := t.Context()
	_, err := app.Core.StartSession(ctx, id)
	require.NoError(t, err)
	var env domain.Envelope
	for _, answer := range survey {
		env, err = app.Driver.SubmitAnswer(ctx, id, answer)
		require.NoError(t, err)
	}
	return env
}

func TestBuild_Defaults(t *testing.T) {
	app := build(t, testConfig())

	assert.NotNil(t, app.Catalog)
	assert.Nil(t, app.Transcripts)
	assert.Same(t, app.Core, app.Driver)
	assert.Equal(t, 3, app.Core.MaxAttempts())

	env := complete(t, app, "s-1")
	assert.True(t, env.Done)
	require.NotNil(t, env.Data)
	assert.Equal(t, "94105", *env.Data.PersonalInfo.ZipCode)
	assert.Equal(t, "Personal", *env.Data.License.Type)
}

func TestBuild_InterruptDetector(t *testing.T) {
	app := build(t, testConfig())
	ctx := t.Context()
	_, err := app.Core.StartSession(ctx, "s-1")
	require.NoError(t, err)

	env, err := app.Driver.SubmitAnswer(ctx, "s-1", "I want to talk to a real person")
	require.NoError(t, err)
	assert.False(t, env.Done)

	status, err := app.Driver.Status(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingStopConfirmation, status)
}

func TestBuild_VehicleRoute(t *testing.T) {
	registry := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer registry.Close()

	cfg := testConfig()
	cfg.Vehicle.Enabled = true
	cfg.Vehicle.BaseURL = registry.URL
	app := build(t, cfg)

	ctx := t.Context()
	_, err := app.Core.StartSession(ctx, "s-1")
	require.NoError(t, err)
	for _, answer := range []string{"94105", "Ada Lovelace", "ada@example.com", "yes"} {
		_, err := app.Driver.SubmitAnswer(ctx, "s-1", answer)
		require.NoError(t, err)
	}

	env, err := app.Driver.SubmitAnswer(ctx, "s-1", "2020 Toyota Camry")
	require.NoError(t, err)
	assert.False(t, env.Done)

	st, err := app.Driver.State(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, st.CurrentVehicle, "a registry outage must not accept the vehicle")
}

func TestBuild_FileStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Type = config.StoreFile
	cfg.Store.Path = t.TempDir()
	app := build(t, cfg)

	complete(t, app, "on-disk")
	_, err := os.Stat(filepath.Join(cfg.Store.Path, "on-disk.json"))
	assert.NoError(t, err)
}

func TestBuild_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Store.Type = config.StoreRedis
	cfg.Store.Redis = config.RedisConfig{Addr: mr.Addr(), Prefix: "test:", TTL: time.Hour}
	app := build(t, cfg)

	env := complete(t, app, "in-redis")
	assert.True(t, env.Done)
	assert.True(t, mr.Exists("test:session:in-redis"))

	ids, err := app.Driver.ListSessions(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"in-redis"}, ids)
}

func TestBuild_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Store.Type = config.StoreRedis
	cfg.Store.Redis = config.RedisConfig{Addr: addr}
	_, err := Build(t.Context(), cfg, BuildOptions{LogWriter: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "failed to reach redis")
}

func TestBuild_EncryptionAndPII(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Type = config.StoreFile
	cfg.Store.Path = t.TempDir()
	cfg.Store.EncryptionKey = strings.Repeat("ab", 32)
	cfg.PII.Patterns = middleware.DefaultPIIPatterns
	cfg.Transcript.SQLitePath = filepath.Join(t.TempDir(), "t.db")
	app := build(t, cfg)

	env := complete(t, app, "sealed")

	raw, err := os.ReadFile(filepath.Join(cfg.Store.Path, "sealed.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ada@example.com")
	assert.NotContains(t, string(raw), "94105")

	t.Run("Sessions keep real values", func(t *testing.T) {
		require.NotNil(t, env.Data)
		assert.Equal(t, "Ada Lovelace", *env.Data.PersonalInfo.FullName)
		assert.Equal(t, "ada@example.com", *env.Data.PersonalInfo.Email)

		doc, err := app.Driver.ExportCompiledData(t.Context(), "sealed")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", *doc.PersonalInfo.FullName)
		assert.Equal(t, "ada@example.com", *doc.PersonalInfo.Email)

		st, err := app.Driver.State(t.Context(), "sealed")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", st.Answers["email"])
	})

	t.Run("Inspection is masked", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, InspectSession(t.Context(), app, &out, "sealed"))
		assert.NotContains(t, out.String(), "ada@example.com")
		assert.NotContains(t, out.String(), "Ada Lovelace")
		assert.Contains(t, out.String(), middleware.Mask)
		assert.Contains(t, out.String(), "94105")
	})

	t.Run("Transcript is masked", func(t *testing.T) {
		details, err := app.Transcripts.SessionDetails(t.Context(), "sealed")
		require.NoError(t, err)
		for _, m := range details.Messages {
			assert.NotContains(t, m.Content, "ada@example.com")
		}
		require.NotNil(t, details.FinalData)
		assert.Equal(t, middleware.Mask, *details.FinalData.PersonalInfo.Email)
	})
}

func TestBuild_MaskedFieldStillDrivesVisibility(t *testing.T) {
	cfg := testConfig()
	cfg.PII.Patterns = []string{"^vehicle_use$"}
	app := build(t, cfg)
	ctx := t.Context()

	_, err := app.Core.StartSession(ctx, "v")
	require.NoError(t, err)
	for _, answer := range []string{"94105", "Ada Lovelace", "ada@example.com", "yes", "2020 Toyota Camry"} {
		_, err := app.Driver.SubmitAnswer(ctx, "v", answer)
		require.NoError(t, err)
	}
	_, err = app.Driver.SubmitAnswer(ctx, "v", "commuting")
	require.NoError(t, err)
	_, err = app.Driver.SubmitAnswer(ctx, "v", "yes")
	require.NoError(t, err)

	prompt, ok, err := app.Driver.CurrentPrompt(ctx, "v")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, prompt, "days per week", "the commute question depends on vehicle_use = commuting")
}

func TestBuild_InvalidPIIPattern(t *testing.T) {
	cfg := testConfig()
	cfg.PII.Patterns = []string{"("}
	_, err := Build(t.Context(), cfg, BuildOptions{LogWriter: &bytes.Buffer{}})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBuild_Transcripts(t *testing.T) {
	cfg := testConfig()
	cfg.Transcript.SQLitePath = filepath.Join(t.TempDir(), "transcripts.db")
	app := build(t, cfg)
	require.NotNil(t, app.Transcripts)

	id, err := app.Driver.CreateSession(t.Context())
	require.NoError(t, err)
	for _, answer := range survey {
		_, err := app.Driver.SubmitAnswer(t.Context(), id, answer)
		require.NoError(t, err)
	}

	details, err := app.Transcripts.SessionDetails(t.Context(), id)
	require.NoError(t, err)
	assert.NotEmpty(t, details.Messages)
	require.NotNil(t, details.FinalData)
	assert.Equal(t, "ada@example.com", *details.FinalData.PersonalInfo.Email)
}

func TestBuild_Errors(t *testing.T) {
	t.Run("Bad log level", func(t *testing.T) {
		cfg := testConfig()
		cfg.Log.Level = "loud"
		_, err := Build(t.Context(), cfg, BuildOptions{})
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("Bad encryption key", func(t *testing.T) {
		cfg := testConfig()
		cfg.Store.EncryptionKey = "not-hex"
		_, err := Build(t.Context(), cfg, BuildOptions{LogWriter: &bytes.Buffer{}})
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("Missing catalog", func(t *testing.T) {
		cfg := testConfig()
		cfg.Flow.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := Build(t.Context(), cfg, BuildOptions{LogWriter: &bytes.Buffer{}})
		assert.ErrorContains(t, err, "failed to load catalog")
	})
}

func TestBuild_Metrics(t *testing.T) {
	app := build(t, testConfig())
	complete(t, app, "counted")

	rec := httptest.NewRecorder()
	app.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `intake_sessions_completed_total`)
}

func TestBuild_Telemetry(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.Enabled = true
	var logs bytes.Buffer
	app, err := Build(t.Context(), cfg, BuildOptions{LogWriter: &logs})
	require.NoError(t, err)

	complete(t, app, "traced")

	rec := httptest.NewRecorder()
	app.Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), "test").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	require.NoError(t, app.Close(context.Background()))
	assert.Contains(t, logs.String(), "OpenTelemetry initialized")
	assert.Contains(t, logs.String(), "validate")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "INFO"},
		{"debug", "DEBUG"},
		{"WARN", "WARN"},
		{" error ", "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, level.String())
		})
	}
}
