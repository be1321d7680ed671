package vehicle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/validator/vehicle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    vehicle.Query
		wantErr string
	}{
		{name: "vin", input: "1hgcm82633a004352", want: vehicle.Query{VIN: "1HGCM82633A004352"}},
		{name: "vin with dashes", input: "1HGCM-82633-A004352", want: vehicle.Query{VIN: "1HGCM82633A004352"}},
		{name: "year make model", input: "2020 Toyota Camry", want: vehicle.Query{Year: 2020, Make: "Toyota", Model: "Camry"}},
		{name: "commas and multi-word model", input: "2019, Ford, F-150 Raptor", want: vehicle.Query{Year: 2019, Make: "Ford", Model: "F-150 Raptor"}},
		{name: "year make only", input: "2018 Honda", want: vehicle.Query{Year: 2018, Make: "Honda"}},
		{name: "single token", input: "Camry", wantErr: "at least the Year and Make"},
		{name: "no year", input: "Toyota Camry", wantErr: "Please start with the year"},
		{name: "year out of range", input: "2031 Toyota Camry", wantErr: "2031 doesn't seem like a valid year. Please provide a year between 1900-2026."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vehicle.Parse(tt.input, 0)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// registry fakes the vPIC endpoints.
func registry(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/vehicles/DecodeVin/1HGCM82633A004352"):
			_, _ = w.Write([]byte(`{"Results":[
				{"Variable":"Error Code","Value":"0"},
				{"Variable":"Make","Value":"HONDA"},
				{"Variable":"Model","Value":"Accord"},
				{"Variable":"Model Year","Value":"2003"},
				{"Variable":"Body Class","Value":"Coupe"},
				{"Variable":"Trim","Value":null}]}`))
		case strings.HasPrefix(r.URL.Path, "/api/vehicles/DecodeVin/"):
			_, _ = w.Write([]byte(`{"Results":[
				{"Variable":"Error Code","Value":"11"},
				{"Variable":"Error Text","Value":"11 - Incorrect Model Year"}]}`))
		case r.URL.Path == "/api/vehicles/GetModelsForMakeYear/make/Toyota/modelyear/2020":
			_, _ = w.Write([]byte(`{"Results":[{"Model_Name":"Corolla"},{"Model_Name":"Camry"},{"Model_Name":"RAV4"}]}`))
		case r.URL.Path == "/api/vehicles/GetModelsForMakeYear/make/Nobody/modelyear/2020":
			_, _ = w.Write([]byte(`{"Results":[]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
}

func newValidator(t *testing.T, url string) *vehicle.Validator {
	t.Helper()
	v, err := vehicle.NewValidator(vehicle.NewClient(url), 16)
	require.NoError(t, err)
	return v
}

func TestValidator(t *testing.T) {
	var hits int32
	srv := registry(t, &hits)
	defer srv.Close()
	v := newValidator(t, srv.URL)
	q := domain.QuestionSpec{ID: "vehicle_identifier"}
	ctx := context.Background()

	t.Run("year make model accepted", func(t *testing.T) {
		verdict, err := v.Validate(ctx, "2020 Toyota Camry", q, nil)
		require.NoError(t, err)
		require.True(t, verdict.Accepted)
		assert.Equal(t, "2020 Toyota Camry", verdict.Value(""))
		assert.Equal(t, "Great! I've verified your vehicle: 2020 Toyota Camry", verdict.Feedback)
	})

	t.Run("model substring", func(t *testing.T) {
		verdict, err := v.Validate(ctx, "2020 toyota rav", q, nil)
		require.NoError(t, err)
		assert.False(t, verdict.Accepted, "the registry only knows the Toyota spelling")
	})

	t.Run("unknown model lists candidates", func(t *testing.T) {
		verdict, err := v.Validate(ctx, "2020 Toyota Supra", q, nil)
		require.NoError(t, err)
		assert.False(t, verdict.Accepted)
		assert.Equal(t, "I couldn't find a 2020 Toyota Supra. Did you mean one of these: Corolla, Camry, RAV4?", verdict.Feedback)
	})

	t.Run("unknown make", func(t *testing.T) {
		verdict, err := v.Validate(ctx, "2020 Nobody Special", q, nil)
		require.NoError(t, err)
		assert.Contains(t, verdict.Feedback, "couldn't find any 2020 Nobody vehicles")
	})

	t.Run("vin accepted", func(t *testing.T) {
		verdict, err := v.Validate(ctx, "1HGCM82633A004352", q, nil)
		require.NoError(t, err)
		require.True(t, verdict.Accepted)
		assert.Equal(t, "2003 HONDA Accord (Coupe)", verdict.Value(""))
	})

	t.Run("vin rejected with registry text", func(t *testing.T) {
		verdict, err := v.Validate(ctx, "1HGCM82633A00435X", q, nil)
		require.NoError(t, err)
		assert.False(t, verdict.Accepted)
		assert.Equal(t, "Invalid VIN: 11 - Incorrect Model Year", verdict.Feedback)
	})

	t.Run("parse error is a rejection", func(t *testing.T) {
		verdict, err := v.Validate(ctx, "Camry", q, nil)
		require.NoError(t, err)
		assert.False(t, verdict.Accepted)
	})

	t.Run("cached lookups skip the registry", func(t *testing.T) {
		before := atomic.LoadInt32(&hits)
		_, err := v.Validate(ctx, "2020  toyota  camry", q, nil)
		require.NoError(t, err)
		_, err = v.Validate(ctx, "2020 Toyota Camry", q, nil)
		require.NoError(t, err)
		assert.Equal(t, before, atomic.LoadInt32(&hits), "both spellings share the normalised key cached earlier")
	})
}

func TestValidator_RegistryOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	v := newValidator(t, srv.URL)
	q := domain.QuestionSpec{ID: "vehicle_identifier"}

	verdict, err := v.Validate(context.Background(), "2020 Toyota Camry", q, nil)
	require.NoError(t, err, "outages are rejections, not transient failures")
	assert.Equal(t, "Unable to validate vehicle at this time.", verdict.Feedback)

	verdict, err = v.Validate(context.Background(), "1HGCM82633A004352", q, nil)
	require.NoError(t, err)
	assert.Equal(t, "Unable to validate VIN at this time.", verdict.Feedback)
}
