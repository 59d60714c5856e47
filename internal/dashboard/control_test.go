package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"codeberg.org/mutker/energymon/internal/offline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendControl(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		toast   string
		wantErr bool
	}{
		{name: "server message", code: http.StatusOK, body: `{"status":"OK","message":"Command received"}`, toast: "Command received"},
		{name: "ok without message", code: http.StatusOK, body: `{"status":"OK"}`, toast: "OK"},
		{name: "empty reply", code: http.StatusOK, body: `{}`, toast: "Error", wantErr: true},
		{name: "error message", code: http.StatusBadRequest, body: `{"message":"Unknown command"}`, toast: "Unknown command", wantErr: true},
		{name: "error without message", code: http.StatusInternalServerError, body: `{}`, toast: "Error", wantErr: true},
		{name: "unparseable reply", code: http.StatusOK, body: `<html>`, toast: "Error", wantErr: true},
		{name: "offline stub", code: http.StatusOK, body: `{"offline":true}`, toast: "Error", wantErr: true},
		{name: "reply status decides", code: http.StatusInternalServerError, body: `{"status":"OK"}`, toast: "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/control", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})
			db, rec := newTestDashboard(t, handler)

			err := db.SendControl(context.Background(), map[string]any{"fan": "ON"})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, []string{tt.toast}, rec.toasts)
			assert.Equal(t, map[string]any{"fan": "ON"}, got)
		})
	}
}

func TestSendControlUnreachable(t *testing.T) {
	base, err := url.Parse("http://127.0.0.1:1")
	require.NoError(t, err)

	rec := &recorder{}
	db := New(base, WithDisplay(rec))

	require.Error(t, db.SendControl(context.Background(), map[string]any{"fan": "OFF"}))
	assert.Equal(t, []string{"Failed to send command"}, rec.toasts)
}

func TestSendControlThroughOfflineRouterWhenServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("shell"))
	}))
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()
	router := offline.NewRouter(base, offline.DefaultGeneration, offline.NewMemoryStore(), srv.Client().Transport,
		offline.WithManifest([]string{"/"}))
	require.NoError(t, router.Install(ctx))
	require.NoError(t, router.Activate(ctx))
	srv.Close()

	rec := &recorder{}
	db := New(base, WithClient(&http.Client{Transport: router}), WithDisplay(rec))

	require.Error(t, db.SendControl(ctx, map[string]any{"fan": "ON"}))
	assert.Equal(t, []string{"Error"}, rec.toasts)
}
