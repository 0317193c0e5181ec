package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

const (
	defaultAPIURL    = "https://www.googleapis.com/youtube/v3/videos"
	defaultOEmbedURL = "https://www.youtube.com/oembed"
	defaultPageURL   = "https://youtu.be/"
	defaultTimeout   = 10 * time.Second
)

type VideoData struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

// Result mirrors the shape of a YouTube Data API list response. No items means the
// video does not exist.
type Result struct {
	Items []VideoData `json:"items"`
}

type Config struct {
	// APIKey enables the Data API. Without it lookups go through oEmbed.
	APIKey    string
	APIURL    string
	OEmbedURL string
	PageURL   string
	Timeout   time.Duration
}

type Client struct {
	apiKey    string
	apiURL    string
	oembedURL string
	pageURL   string
	http      *http.Client
}

func New(cfg *Config) *Client {
	c := Client{
		apiKey:    cfg.APIKey,
		apiURL:    cfg.APIURL,
		oembedURL: cfg.OEmbedURL,
		pageURL:   cfg.PageURL,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
	if c.apiURL == "" {
		c.apiURL = defaultAPIURL
	}
	if c.oembedURL == "" {
		c.oembedURL = defaultOEmbedURL
	}
	if c.pageURL == "" {
		c.pageURL = defaultPageURL
	}
	if c.http.Timeout <= 0 {
		c.http.Timeout = defaultTimeout
	}

	return &c
}

// GetByID looks up a single video. A missing video is reported as an empty Result,
// never as an error.
func (c *Client) GetByID(ctx context.Context, videoId string) (Result, error) {
	if c.apiKey != "" {
		result, err := c.getFromAPI(ctx, videoId)
		if err != nil {
			return Result{}, fmt.Errorf("failed to get video data from api: %w", err)
		}

		return result, nil
	}

	videoData, err := c.getVideoWithEmbed(ctx, videoId)
	if err != nil {
		switch {
		case errors.Is(err, ErrVideoNotFound):
			return Result{}, nil
		case !errors.Is(err, ErrVideoNotEmbeddable):
			return Result{}, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			if errors.Is(err, ErrVideoNotFound) {
				return Result{}, nil
			}
			return Result{}, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	videoData.ID = videoId
	return Result{Items: []VideoData{*videoData}}, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return c.http.Do(req)
}

func trimPageTitle(title string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), "- YouTube"))
}
