package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/photoshare-api/internal/apperror"
	"github.com/sakif/photoshare-api/internal/model"
	"github.com/sakif/photoshare-api/internal/repository/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_EmptyStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New().Store()

	loaded, err := Load(ctx, store, discardLogger())
	require.NoError(t, err)
	assert.True(t, loaded)

	users, _ := store.Users.List(ctx)
	photos, _ := store.Photos.List(ctx)
	tags, _ := store.Tags.List(ctx)
	assert.Len(t, users, 3)
	assert.Len(t, photos, 3)
	assert.Len(t, tags, 4)

	assert.Equal(t, "1", photos[0].ID)
	assert.Equal(t, "gPlake", photos[0].UserID)
	assert.Equal(t, "2018-04-15T19:09:57.308Z", photos[2].Created.Format("2006-01-02T15:04:05.000Z"))
}

func TestLoad_SkipsNonEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New().Store()
	require.NoError(t, store.Users.Upsert(ctx, &model.User{GitHubLogin: "someone"}))

	loaded, err := Load(ctx, store, discardLogger())
	require.NoError(t, err)
	assert.False(t, loaded)

	n, _ := store.Photos.Count(ctx)
	assert.Zero(t, n)
}

func TestLoad_Twice(t *testing.T) {
	ctx := context.Background()
	store := memory.New().Store()

	_, err := Load(ctx, store, discardLogger())
	require.NoError(t, err)
	loaded, err := Load(ctx, store, discardLogger())
	require.NoError(t, err)
	assert.False(t, loaded)

	n, _ := store.Users.Count(ctx)
	assert.Equal(t, 3, n)
}

func TestRandomUsersFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("results"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"results":[
			{"login":{"username":"bluefish42","sha1":"abc123"},
			 "name":{"first":"Ada","last":"Lovelace"},
			 "picture":{"thumbnail":"https://randomuser.me/api/portraits/thumb/women/1.jpg"}},
			{"login":{"username":"redcat7","sha1":"def456"},
			 "name":{"first":"Alan","last":"Turing"},
			 "picture":{"thumbnail":""}}
		]}`)
	}))
	defer srv.Close()

	ids, err := NewRandomUsers(srv.URL, srv.Client()).Fetch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	assert.Equal(t, model.GitHubIdentity{
		Login:       "bluefish42",
		Name:        "Ada Lovelace",
		AvatarURL:   "https://randomuser.me/api/portraits/thumb/women/1.jpg",
		AccessToken: "abc123",
	}, ids[0])
	assert.Equal(t, "redcat7", ids[1].Login)
}

func TestRandomUsersFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "api error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = io.WriteString(w, `{"error":"Uh oh, something has gone wrong."}`)
			},
			want: apperror.ErrProtocol,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `<html>`)
			},
			want: apperror.ErrProtocol,
		},
		{
			name: "missing username",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"results":[{"login":{}}]}`)
			},
			want: apperror.ErrProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewRandomUsers(srv.URL, srv.Client()).Fetch(context.Background(), 1)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRandomUsersFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := &http.Client{Timeout: time.Second}
	_, err := NewRandomUsers(url, client).Fetch(context.Background(), 1)
	assert.True(t, errors.Is(err, apperror.ErrTransport), "got %v", err)
}
