package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
)

// The feed wraps every scalar in {"label": ...}
type label struct {
	Label string `json:"label"`
}

type feedEntry struct {
	Author struct {
		Name label `json:"name"`
	} `json:"author"`
	Updated label  `json:"updated"`
	Rating  *label `json:"im:rating"`
	Version label  `json:"im:version"`
	Title   label  `json:"title"`
	Content label  `json:"content"`
}

// entryList accepts the feed's single-entry form, a bare object, as well as
// the usual array
type entryList []feedEntry

func (l *entryList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '[' {
		var entries []feedEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		*l = entries
		return nil
	}

	var entry feedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	*l = entryList{entry}
	return nil
}

type feedDocument struct {
	Feed struct {
		Entry entryList `json:"entry"`
	} `json:"feed"`
}

// parseFeed decodes one feed page. Entries without a usable rating, such as
// the app description entry some pages start with, are skipped.
func parseFeed(data []byte) ([]model.Review, error) {
	var doc feedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	reviews := make([]model.Review, 0, len(doc.Feed.Entry))
	for _, e := range doc.Feed.Entry {
		if e.Rating == nil {
			continue
		}
		rating, ok := parseRating(e.Rating.Label)
		if !ok {
			continue
		}
		reviews = append(reviews, model.Review{
			Rating:  rating,
			Title:   extract.CleanText(e.Title.Label),
			Body:    extract.CleanText(e.Content.Label),
			Author:  strings.TrimSpace(e.Author.Name.Label),
			Version: strings.TrimSpace(e.Version.Label),
			Date:    strings.TrimSpace(e.Updated.Label),
		})
	}

	return reviews, nil
}

// parseRating accepts "4", " 4 " and "4.0" and rejects anything outside 1-5
func parseRating(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 1 && n <= 5
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	n := int(f)
	return n, n >= 1 && n <= 5
}
