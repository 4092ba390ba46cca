package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finwise/finwise_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rates", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "VND", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rate": 25850.0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	rate, err := client.FetchRate(context.Background(), "USD", "VND")
	require.NoError(t, err)
	assert.Equal(t, 25850.0, rate)
}

func TestFetchRate_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	_, err := client.FetchRate(context.Background(), "USD", "VND")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProvider)
}

func TestFetchRate_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rate": "twenty-five"`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	_, err := client.FetchRate(context.Background(), "USD", "VND")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProvider)
}

func TestFetchRate_NonPositiveQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rate": 0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	_, err := client.FetchRate(context.Background(), "USD", "VND")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProvider)
}

func TestFetchRate_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately, so the address refuses connections

	client := NewClient(server.URL, time.Second)

	_, err := client.FetchRate(context.Background(), "USD", "VND")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProvider)
}

func TestFetchRate_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchRate(ctx, "USD", "VND")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProvider)
}
