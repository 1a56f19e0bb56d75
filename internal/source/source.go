// Package source acquires review corpora: the App Store customer review
// feed, the store lookup API, and local JSON or CSV exports.
package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/appscope/internal/model"
)

// MaxFeedPages is the deepest page the review feed serves
const MaxFeedPages = 10

var (
	// ErrInvalidAppID is returned when input holds neither a store URL nor a numeric ID
	ErrInvalidAppID = errors.New("invalid app ID")
	// ErrAppNotFound is returned by Lookup when the store has no such app
	ErrAppNotFound = errors.New("app not found")
	// ErrDisallowed is returned when robots.txt forbids the feed
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

var (
	appIDInURL = regexp.MustCompile(`/id(\d+)`)
	numericID  = regexp.MustCompile(`^\d+$`)
)

// Source fetches the reviews of one app. An app without reviews yields an
// empty slice, not an error.
type Source interface {
	Fetch(ctx context.Context, appID string, pageLimit int) ([]model.Review, error)
}

// MetadataSource looks up store metadata for an app
type MetadataSource interface {
	Lookup(ctx context.Context, appID string) (*model.AppMeta, error)
}

// ProgressFunc receives human-readable progress while pages are fetched
type ProgressFunc func(page, total int, status string)

// ParseAppID extracts the numeric app ID from an App Store URL such as
// https://apps.apple.com/us/app/notes/id1234567890, or accepts a bare ID
func ParseAppID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if numericID.MatchString(input) {
		return input, nil
	}
	if m := appIDInURL.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAppID, input)
}
