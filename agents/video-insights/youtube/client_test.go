package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"video-insights/internal/models"
	"video-insights/shared/insights"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/channels"):
			assert.Equal(t, "UC1,UC2", r.URL.Query().Get("id"))
			w.Write([]byte(`{"items": [
				{"id": "UC1", "contentDetails": {"relatedPlaylists": {"uploads": "UU1"}}},
				{"id": "UC2", "contentDetails": {"relatedPlaylists": {"uploads": ""}}}
			]}`))
		case strings.HasSuffix(r.URL.Path, "/playlistItems"):
			assert.Equal(t, "UU1", r.URL.Query().Get("playlistId"))
			assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
			w.Write([]byte(`{"items": [
				{"contentDetails": {"videoId": "v1"}},
				{"contentDetails": {"videoId": "v2"}}
			]}`))
		case strings.HasSuffix(r.URL.Path, "/videos"):
			assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
			w.Write([]byte(`{"items": [
				{"id": "v1",
				 "snippet": {"title": "Dragons", "channelId": "UC1", "publishedAt": "2026-03-07T10:00:00Z"},
				 "contentDetails": {"duration": "PT12M5S"},
				 "statistics": {"viewCount": "12345", "likeCount": "400", "commentCount": "12"}},
				{"id": "v2", "snippet": {"title": "Short", "channelId": "UC1"}}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

func testSource(t *testing.T, srv *httptest.Server) *Source {
	t.Helper()
	service, err := youtube.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return newSource(service, []string{"UC1", "UC2"}, 5)
}

func TestSourceRows(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	src := testSource(t, srv)
	assert.Equal(t, "videos", src.Name())

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	v := insights.BuildVideoRecord(rows[0], now)
	assert.Equal(t, "v1", v.VideoID)
	assert.Equal(t, "UC1", v.ChannelID)
	assert.Equal(t, int64(12345), v.Views)
	assert.Equal(t, int64(400), v.Likes)
	assert.Equal(t, 725, v.DurationSeconds)
	assert.Equal(t, int64(4115), v.RoundedViewsPerDay)
	assert.Equal(t, models.TagPoor, v.Tag)

	sparse := insights.BuildVideoRecord(rows[1], now)
	assert.Equal(t, int64(0), sparse.Views)
	assert.False(t, sparse.PublishedValid)
}

func TestSourceRowsNoPlaylists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	service, err := youtube.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = newSource(service, []string{"UC1"}, 0).Rows(context.Background())
	assert.Error(t, err)
}

func TestSourceRowsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 403, "message": "quota"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testSource(t, srv).Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel details")
}

func TestSaveAndLoadToken(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("RoundTrip", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "token.json")
		original := &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(-time.Hour),
		}
		require.NoError(t, saveToken(tokenFile, original))

		saved, err := tokenFromFile(tokenFile)
		require.NoError(t, err)
		assert.Equal(t, original.RefreshToken, saved.RefreshToken)

		info, err := os.Stat(tokenFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("NestedDirectory", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "nested", "dir", "token.json")
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{AccessToken: "nested"}))
		_, err := os.Stat(tokenFile)
		assert.NoError(t, err)
	})

	t.Run("Overwrite", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "overwrite.json")
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{AccessToken: "first-token-longer"}))
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{AccessToken: "second"}))

		saved, err := tokenFromFile(tokenFile)
		require.NoError(t, err)
		assert.Equal(t, "second", saved.AccessToken)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "invalid.json")
		require.NoError(t, os.WriteFile(tokenFile, []byte("invalid json"), 0600))
		_, err := tokenFromFile(tokenFile)
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := tokenFromFile(filepath.Join(tempDir, "nonexistent.json"))
		assert.Error(t, err)
	})
}

func TestGetToken(t *testing.T) {
	deviceAuth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_client"}`, http.StatusUnauthorized)
	}))
	defer deviceAuth.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	oauthConfig := &oauth2.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: deviceAuth.URL,
			TokenURL:      deviceAuth.URL,
		},
	}
	ctx := context.Background()

	t.Run("ExpiredTokenWithRefresh", func(t *testing.T) {
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{
			AccessToken:  "expired",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(-time.Hour),
		}))

		tok, err := getToken(ctx, oauthConfig, tokenFile)
		require.NoError(t, err)
		assert.Equal(t, "refresh", tok.RefreshToken)
	})

	t.Run("ValidTokenWithoutRefresh", func(t *testing.T) {
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{
			AccessToken: "valid",
			Expiry:      time.Now().Add(time.Hour),
		}))

		tok, err := getToken(ctx, oauthConfig, tokenFile)
		require.NoError(t, err)
		assert.Equal(t, "valid", tok.AccessToken)
	})

	t.Run("NoTokenFileFallsBackToDeviceFlow", func(t *testing.T) {
		require.NoError(t, os.Remove(tokenFile))

		_, err := getToken(ctx, oauthConfig, tokenFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "device authorization failed")
	})
}

func TestTokenSaverConcurrency(t *testing.T) {
	ts := &tokenSaver{
		config: &oauth2.Config{ClientID: "test"},
		token: &oauth2.Token{
			AccessToken: "initial",
			Expiry:      time.Now().Add(time.Hour),
		},
		tokenFile: filepath.Join(t.TempDir(), "concurrent.json"),
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := ts.Token()
			assert.NoError(t, err)
			assert.Equal(t, "initial", tok.AccessToken)
		}()
	}
	wg.Wait()
}
