// Package youtube reads channel uploads from the YouTube Data API as dashboard video rows
package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"video-insights/internal/models"
	"video-insights/shared/config"
	"video-insights/shared/logging"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const batchSize = 50

// Source lists recent uploads of a fixed set of channels
type Source struct {
	service       *youtube.Service
	channelIDs    []string
	maxPerChannel int64
	log           *logging.Logger
}

// NewSource authenticates with an API key when one is configured, otherwise with the OAuth token file
func NewSource(ctx context.Context, cfg *config.YouTubeConfig) (*Source, error) {
	var opts []option.ClientOption

	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
			Endpoint:     google.Endpoint,
		}

		token, err := getToken(ctx, oauthConfig, cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to get OAuth token: %w", err)
		}

		tokenSource := &tokenSaver{
			config:    oauthConfig,
			token:     token,
			tokenFile: cfg.TokenFile,
		}
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return newSource(service, cfg.ChannelIDs, cfg.MaxPerChannel), nil
}

func newSource(service *youtube.Service, channelIDs []string, maxPerChannel int64) *Source {
	if maxPerChannel <= 0 {
		maxPerChannel = 10
	}
	return &Source{
		service:       service,
		channelIDs:    channelIDs,
		maxPerChannel: maxPerChannel,
		log:           logging.Component("youtube"),
	}
}

func (s *Source) Name() string { return "videos" }

// Rows returns one raw row per recent upload, shaped like the video spreadsheet
func (s *Source) Rows(ctx context.Context) ([]models.RawRow, error) {
	playlists, err := s.uploadPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, fmt.Errorf("no upload playlists resolved for %d channels", len(s.channelIDs))
	}

	var videoIDs []string
	for channelID, playlistID := range playlists {
		resp, err := s.service.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(s.maxPerChannel).
			Context(ctx).
			Do()
		if err != nil {
			s.log.Warn().Err(err).Str("channel_id", channelID).Msg("failed to list uploads")
			continue
		}
		for _, item := range resp.Items {
			if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
				videoIDs = append(videoIDs, item.ContentDetails.VideoId)
			}
		}
	}

	rows := make([]models.RawRow, 0, len(videoIDs))
	for batch := range slices.Chunk(videoIDs, batchSize) {
		resp, err := s.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(strings.Join(batch, ",")).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get video details: %w", err)
		}
		for _, item := range resp.Items {
			rows = append(rows, videoRow(item))
		}
	}

	s.log.Info().Int("channels", len(playlists)).Int("videos", len(rows)).Msg("fetched channel uploads")
	return rows, nil
}

func (s *Source) uploadPlaylists(ctx context.Context) (map[string]string, error) {
	playlists := make(map[string]string)

	for batch := range slices.Chunk(s.channelIDs, batchSize) {
		resp, err := s.service.Channels.List([]string{"contentDetails"}).
			Id(strings.Join(batch, ",")).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get channel details: %w", err)
		}

		for _, channel := range resp.Items {
			if channel.ContentDetails != nil && channel.ContentDetails.RelatedPlaylists != nil {
				if uploads := channel.ContentDetails.RelatedPlaylists.Uploads; uploads != "" {
					playlists[channel.Id] = uploads
				}
			}
		}
	}
	return playlists, nil
}

// videoRow keeps the API's raw values; normalization happens in the record builder
func videoRow(item *youtube.Video) models.RawRow {
	row := models.RawRow{"videoId": item.Id}
	if item.Snippet != nil {
		row["channelId"] = item.Snippet.ChannelId
		row["title"] = item.Snippet.Title
		row["publishedAt"] = item.Snippet.PublishedAt
	}
	if item.ContentDetails != nil {
		row["duration"] = item.ContentDetails.Duration
	}
	if item.Statistics != nil {
		row["views"] = item.Statistics.ViewCount
		row["likes"] = item.Statistics.LikeCount
		row["comments"] = item.Statistics.CommentCount
	}
	return row
}

// tokenSaver wraps an oauth2.TokenSource to persist refreshed tokens so they survive restarts
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex
}

func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	newToken, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		log := logging.Component("youtube")
		log.Info().Msg("token refreshed, saving to file")
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			log.Warn().Err(err).Msg("failed to save refreshed token")
		}
	}

	return newToken, nil
}

// getToken prefers a stored token with a refresh token, even when expired, and only falls back to
// the device flow when nothing usable is on disk
func getToken(ctx context.Context, config *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	log := logging.Component("youtube")

	tok, err := tokenFromFile(tokenFile)
	if err == nil {
		if tok.RefreshToken != "" {
			log.Info().Time("expires", tok.Expiry).Msg("loaded token from file")
			return tok, nil
		}
		if tok.Valid() {
			return tok, nil
		}
	}

	log.Info().Msg("getting new token with device authorization")
	tok, err = getTokenWithDeviceFlow(ctx, config)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			log.Error().Str("status", retrieveErr.Response.Status).Str("body", strings.TrimSpace(string(retrieveErr.Body))).Msg("device authorization response failed")
		}
		return nil, fmt.Errorf("device authorization failed: %w. Ensure your OAuth client is created as 'TVs and Limited Input devices' and that the YouTube Data API v3 is enabled", err)
	}

	if err := saveToken(tokenFile, tok); err != nil {
		log.Warn().Err(err).Msg("failed to save token")
	}
	return tok, nil
}

func getTokenWithDeviceFlow(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	resp, err := config.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("unable to start device authorization: %w", err)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 80))
	fmt.Printf("YOUTUBE DEVICE AUTHORIZATION REQUIRED\n")
	fmt.Printf("%s\n", strings.Repeat("=", 80))
	fmt.Printf("1. Visit %s in your browser (any device works).\n", resp.VerificationURI)
	fmt.Printf("2. Enter this code when prompted: %s\n\n", resp.UserCode)
	fmt.Printf("Waiting for authorization to complete... (Ctrl+C to cancel)\n")
	fmt.Printf("%s\n", strings.Repeat("-", 80))

	tok, err := config.DeviceAccessToken(ctx, resp, oauth2.AccessTypeOffline)
	if err != nil {
		return nil, fmt.Errorf("device authorization did not complete: %w", err)
	}

	fmt.Printf("\nAuthorization successful.\n%s\n\n", strings.Repeat("=", 80))
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}
