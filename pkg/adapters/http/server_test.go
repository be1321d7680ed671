package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/intake"
	intakehttp "github.com/aretw0/intake/pkg/adapters/http"
	"github.com/aretw0/intake/pkg/adapters/sqlite"
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/transcript"
	"github.com/aretw0/intake/pkg/validator/rules"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDriver(t *testing.T) *intake.Driver {
	t.Helper()
	d, err := intake.New(rules.New())
	require.NoError(t, err)
	return d
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	h := intakehttp.NewHandler(newDriver(t))

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])

	w = do(t, h, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "intake-http", info["app"])
	assert.Equal(t, strings.TrimSpace(intake.Version), info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestSessionLifecycle(t *testing.T) {
	h := intakehttp.NewHandler(newDriver(t))

	w := do(t, h, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[intakehttp.SessionResponse](t, w)
	require.NotEmpty(t, created.SessionID)
	require.NotNil(t, created.Prompt)
	assert.Equal(t, "What is your zip code?", *created.Prompt)

	base := "/sessions/" + created.SessionID

	w = do(t, h, http.MethodPost, base+"/answers", `{"input":"94105"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode[domain.Envelope](t, w)
	assert.False(t, env.Done)
	assert.Contains(t, env.Message, "What is your full name?")

	w = do(t, h, http.MethodGet, base+"/prompt", "")
	require.Equal(t, http.StatusOK, w.Code)
	prompt := decode[intakehttp.SessionResponse](t, w)
	require.NotNil(t, prompt.Prompt)
	assert.Equal(t, "What is your full name?", *prompt.Prompt)

	w = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[intakehttp.SessionResponse](t, w)
	assert.Equal(t, domain.StatusActive, got.Status)
	require.NotNil(t, got.Data)
	require.NotNil(t, got.Data.PersonalInfo.ZipCode)
	assert.Equal(t, "94105", *got.Data.PersonalInfo.ZipCode)

	w = do(t, h, http.MethodGet, base+"/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[domain.Document](t, w).PersonalInfo.FullName)

	w = do(t, h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w)["sessions"], created.SessionID)

	w = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSession_ChosenID(t *testing.T) {
	h := intakehttp.NewHandler(newDriver(t))

	w := do(t, h, http.MethodPost, "/sessions", `{"session_id":"chosen"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "chosen", decode[intakehttp.SessionResponse](t, w).SessionID)

	w = do(t, h, http.MethodPost, "/sessions", `{"session_id":"chosen"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/sessions", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	driver := newDriver(t)
	h := intakehttp.NewHandler(driver, intakehttp.WithMaxInput(5))

	t.Run("Unknown session", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/sessions/missing/answers", `{"input":"x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NotEmpty(t, decode[intakehttp.ErrorResponse](t, w).Error)
	})

	t.Run("Oversized input", func(t *testing.T) {
		_, err := driver.StartSession(context.Background(), "s1")
		require.NoError(t, err)

		w := do(t, h, http.MethodPost, "/sessions/s1/answers", `{"input":"0123456789"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		st, err := driver.State(context.Background(), "s1")
		require.NoError(t, err)
		assert.Empty(t, st.Answers)
	})

	t.Run("Bad body", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/sessions/s1/answers", `[`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTranscriptEndpoint(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		h := intakehttp.NewHandler(newDriver(t))
		w := do(t, h, http.MethodGet, "/sessions/x/transcript", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Enabled", func(t *testing.T) {
		sink, err := sqlite.New(filepath.Join(t.TempDir(), "t.db"))
		require.NoError(t, err)
		defer sink.Close()

		rec := transcript.NewRecorder(newDriver(t), sink)
		h := intakehttp.NewHandler(rec, intakehttp.WithTranscripts(sink))

		w := do(t, h, http.MethodPost, "/sessions", "")
		require.Equal(t, http.StatusCreated, w.Code)
		id := decode[intakehttp.SessionResponse](t, w).SessionID

		w = do(t, h, http.MethodPost, "/sessions/"+id+"/answers", `{"input":"94105"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = do(t, h, http.MethodGet, "/sessions/"+id+"/transcript", "")
		require.Equal(t, http.StatusOK, w.Code)
		msgs := decode[map[string][]domain.Message](t, w)["messages"]
		require.Len(t, msgs, 3)
		assert.Equal(t, "94105", msgs[1].Content)
	})
}

func TestCatalogAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("intake_up 1\n"))
	})
	h := intakehttp.NewHandler(newDriver(t),
		intakehttp.WithCatalog(catalog.Default()),
		intakehttp.WithMetricsHandler(metrics),
	)

	w := do(t, h, http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	file := decode[catalog.File](t, w)
	require.NotEmpty(t, file.Questions)
	assert.Equal(t, "zip_code", file.Questions[0].ID)

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, "intake_up 1\n", w.Body.String())
}

func TestMiddleware(t *testing.T) {
	h := intakehttp.NewHandler(newDriver(t))

	t.Run("Request ID is assigned", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/health", "")
		assert.NotEmpty(t, w.Header().Get(intakehttp.RequestIDHeader))
	})

	t.Run("Request ID is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(intakehttp.RequestIDHeader, "abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, "abc", w.Header().Get(intakehttp.RequestIDHeader))
	})

	t.Run("CORS preflight", func(t *testing.T) {
		w := do(t, h, http.MethodOptions, "/sessions", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDataPatch(t *testing.T) {
	before := domain.NewState("s1")
	after := before.Clone()
	after.Answers["zip_code"] = "94105"

	patch, err := intakehttp.DataPatch(before, after)
	require.NoError(t, err)
	assert.JSONEq(t, `{"personal_info":{"zip_code":"94105"}}`, patch)

	same, err := intakehttp.DataPatch(after, after)
	require.NoError(t, err)
	assert.Empty(t, same)

	oldDoc, err := json.Marshal(domain.Document{})
	require.NoError(t, err)
	initial, err := intakehttp.DataPatch(nil, after)
	require.NoError(t, err)
	merged, err := jsonpatch.MergePatch(oldDoc, []byte(initial))
	require.NoError(t, err)
	assert.Contains(t, string(merged), `"zip_code":"94105"`)
}

func TestSubscribeEvents_Session(t *testing.T) {
	driver := newDriver(t)
	_, err := driver.StartSession(context.Background(), "watched")
	require.NoError(t, err)

	srv := httptest.NewServer(intakehttp.NewHandler(driver))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/watched/events?watch=answers,data", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readUntil := func(prefix string) string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, prefix) {
				return strings.TrimSpace(strings.TrimPrefix(line, prefix))
			}
		}
	}
	assert.Equal(t, "connected", readUntil("data: "))

	answer, err := http.Post(srv.URL+"/sessions/watched/answers", "application/json", strings.NewReader(`{"input":"94105"}`))
	require.NoError(t, err)
	answer.Body.Close()
	require.Equal(t, http.StatusOK, answer.StatusCode)

	assert.Equal(t, intakehttp.EventDiff, readUntil("event: "))
	var diff domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(readUntil("data: ")), &diff))
	require.NotNil(t, diff.Answers["zip_code"])
	assert.Equal(t, "94105", *diff.Answers["zip_code"])

	assert.Equal(t, intakehttp.EventPatch, readUntil("event: "))
	assert.JSONEq(t, `{"personal_info":{"zip_code":"94105"}}`, readUntil("data: "))
}

func TestSubscribeEvents_UnknownSession(t *testing.T) {
	h := intakehttp.NewHandler(newDriver(t))
	w := do(t, h, http.MethodGet, "/sessions/nope/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
