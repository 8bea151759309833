package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/deskauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusBadRequest, "duplicate_username", "username already exists")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"error":"duplicate_username","message":"username already exists"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Username string `json:"username"`
	}

	decode := func(contentType, payload string) (body, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		var b body
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &b)
		return b, err
	}

	t.Run("valid", func(t *testing.T) {
		b, err := decode("application/json; charset=utf-8", `{"username":"alice","extra":true}`)
		require.NoError(t, err)
		require.Equal(t, "alice", b.Username)
	})

	t.Run("no content type", func(t *testing.T) {
		_, err := decode("", `{"username":"alice"}`)
		require.NoError(t, err)
	})

	t.Run("wrong content type", func(t *testing.T) {
		_, err := decode("application/x-www-form-urlencoded", `username=alice`)
		require.ErrorContains(t, err, "not application/json")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := decode("application/json", ``)
		require.ErrorContains(t, err, "empty")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := decode("application/json", `{"username":`)
		require.ErrorContains(t, err, "malformed JSON")
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := decode("application/json", `{"username":"a"}{"username":"b"}`)
		require.ErrorContains(t, err, "single JSON object")
	})

	t.Run("too large", func(t *testing.T) {
		_, err := decode("application/json", `{"username":"`+strings.Repeat("a", httpx.MaxBodyBytes)+`"}`)
		require.ErrorContains(t, err, "exceeds")
	})
}
