package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ppiankov/appscope/internal/cache"
	"github.com/ppiankov/appscope/internal/model"
)

type lookupResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []lookupResult `json:"results"`
}

type lookupResult struct {
	TrackID           int64   `json:"trackId"`
	TrackName         string  `json:"trackName"`
	ArtistName        string  `json:"artistName"`
	Version           string  `json:"version"`
	AverageUserRating float64 `json:"averageUserRating"`
	UserRatingCount   int     `json:"userRatingCount"`
	TrackViewURL      string  `json:"trackViewUrl"`
}

// Lookup fetches the app's store listing
func (a *AppStore) Lookup(ctx context.Context, appID string) (*model.AppMeta, error) {
	key := cache.Key("lookup", a.country(), appID)

	data, hit := a.cache.Get(key)
	a.metrics.CacheLookup(hit)
	if !hit {
		var err error
		data, err = a.get(ctx, a.lookupURL(appID))
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", appID, err)
		}
	}

	meta, err := parseLookup(data)
	if err != nil {
		if hit {
			_ = a.cache.Delete(key)
		}
		return nil, fmt.Errorf("lookup %s: %w", appID, err)
	}

	if !hit {
		_ = a.cache.Set(key, data, 0)
	}
	return meta, nil
}

func (a *AppStore) lookupURL(appID string) string {
	base := a.source.LookupURL
	if base == "" {
		base = "https://itunes.apple.com/lookup"
	}
	q := url.Values{}
	q.Set("id", appID)
	q.Set("country", a.country())
	return base + "?" + q.Encode()
}

func parseLookup(data []byte) (*model.AppMeta, error) {
	var resp lookupResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode lookup: %w", err)
	}
	if resp.ResultCount == 0 || len(resp.Results) == 0 {
		return nil, ErrAppNotFound
	}

	r := resp.Results[0]
	return &model.AppMeta{
		ID:            strconv.FormatInt(r.TrackID, 10),
		Name:          r.TrackName,
		Developer:     r.ArtistName,
		Version:       r.Version,
		AverageRating: r.AverageUserRating,
		RatingCount:   r.UserRatingCount,
		URL:           r.TrackViewURL,
	}, nil
}
