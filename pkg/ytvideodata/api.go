package ytvideodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type apiVideosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *Client) getFromAPI(ctx context.Context, videoId string) (Result, error) {
	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("id", videoId)
	val.Set("key", c.apiKey)

	resp, err := c.get(ctx, c.apiURL+"?"+val.Encode())
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body apiVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}

	result := Result{Items: make([]VideoData, 0, len(body.Items))}
	for _, it := range body.Items {
		thumb := it.Snippet.Thumbnails.High.URL
		if thumb == "" {
			thumb = it.Snippet.Thumbnails.Default.URL
		}

		result.Items = append(result.Items, VideoData{
			ID:           it.ID,
			Title:        it.Snippet.Title,
			AuthorName:   it.Snippet.ChannelTitle,
			ThumbnailUrl: thumb,
		})
	}

	return result, nil
}
