package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllStagesPass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case http.MethodOptions:
			w.Header().Set("DAV", "1, 2")
			w.WriteHeader(http.StatusOK)
		case "PROPFIND":
			w.WriteHeader(http.StatusMultiStatus)
		}
	}))
	defer srv.Close()

	v := NewEndpointValidator()
	defer v.Close()

	result, err := v.Validate(context.Background(), srv.URL, "user", "pass")
	require.NoError(t, err)
	assert.True(t, result.ServerReachable)
	assert.True(t, result.WebDAVEnabled)
	assert.True(t, result.Authenticated)
	assert.Empty(t, result.Errors)
}

func TestValidate_StopsAtMissingDAVHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewEndpointValidator()
	defer v.Close()

	result, err := v.Validate(context.Background(), srv.URL, "user", "pass")
	require.NoError(t, err)
	assert.True(t, result.ServerReachable)
	assert.False(t, result.WebDAVEnabled)
	assert.False(t, result.Authenticated)
	require.NotEmpty(t, result.Errors)
}

func TestValidate_StopsAtUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.Header().Set("DAV", "1")
			w.WriteHeader(http.StatusOK)
		case "PROPFIND":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	v := NewEndpointValidator()
	defer v.Close()

	result, err := v.Validate(context.Background(), srv.URL, "user", "wrong")
	require.NoError(t, err)
	assert.True(t, result.WebDAVEnabled)
	assert.False(t, result.Authenticated)
}

func TestValidate_ServerUnreachable(t *testing.T) {
	v := NewEndpointValidator()
	defer v.Close()

	result, err := v.Validate(context.Background(), "http://127.0.0.1:1", "user", "pass")
	require.NoError(t, err)
	assert.False(t, result.ServerReachable)
	require.NotEmpty(t, result.Errors)
}
