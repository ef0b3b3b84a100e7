package userservice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "formdeck/internal/errors"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(Config{
		URL:            server.URL,
		ExtensionID:    "query-builder",
		Email:          "dev@example.com",
		DeveloperToken: "dev-secret",
	})
	return server, client
}

func TestGetUserSendsCredentials(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		want := "Bearer " + base64.StdEncoding.EncodeToString([]byte("dev@example.com:dev-secret"))
		assert.Equal(t, want, r.Header.Get("Authorization"))
		assert.Equal(t, "user-token", r.Header.Get(HeaderToken))
		assert.Equal(t, "query-builder", r.Header.Get(HeaderExtension))
		assert.Empty(t, r.Header.Get(HeaderDev))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "u@example.com", "id": "u1", "plan": "pro"})
	})

	user, err := client.GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", user.Email())
	assert.Equal(t, "u1", user.ID())
	assert.Equal(t, "pro", user["plan"])
}

func TestDevHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.Header.Get(HeaderDev))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{URL: server.URL, Dev: true})
	_, err := client.GetUser(context.Background(), "tok")
	require.NoError(t, err)
}

func TestGetUserUpstreamError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	})

	_, err := client.GetUser(context.Background(), "stale")
	require.Error(t, err)
	assert.Equal(t, "token expired", err.Error())
	assert.True(t, appErrors.IsCode(err, appErrors.CodeUnauthorized))

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.JSONEq(t, `{"message":"token expired"}`, string(upstream.Body))
}

func TestPutUserSendsBody(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dark", body["theme"])
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	answer, err := client.PutUser(context.Background(), "tok", map[string]any{"theme": "dark"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(answer))
}

func TestPutUserEmptyAnswer(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	answer, err := client.PutUser(context.Background(), "tok", map[string]any{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(answer))
}

func TestUpstreamErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "nope", (&UpstreamError{StatusCode: 401, Body: []byte(`{"error":"nope"}`)}).Error())
	assert.Equal(t, "plain text", (&UpstreamError{StatusCode: 401, Body: []byte("plain text\n")}).Error())
	assert.Equal(t, "user service: HTTP 500", (&UpstreamError{StatusCode: 500}).Error())
}
