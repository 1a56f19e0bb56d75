package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/appscope/internal/extract"
	"github.com/ppiankov/appscope/internal/model"
)

// bodyKeys are the accepted names of the review text column, in priority order
var bodyKeys = []string{"review", "body", "content", "text"}

// LoadFile reads a review export. The format follows the extension: .csv is
// CSV with a header row, anything else is JSON.
func LoadFile(path string) ([]model.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reviews: %w", err)
	}
	defer func() { _ = f.Close() }()

	var reviews []model.Review
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reviews, err = ReadCSV(f)
	} else {
		reviews, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return reviews, nil
}

// fileRating accepts a rating written as a number or a string
type fileRating int

func (r *fileRating) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	n, ok := parseRating(s)
	if !ok {
		return fmt.Errorf("invalid rating %s", data)
	}
	*r = fileRating(n)
	return nil
}

type fileRecord struct {
	Rating  fileRating `json:"rating"`
	Title   string     `json:"title"`
	Review  string     `json:"review"`
	Body    string     `json:"body"`
	Content string     `json:"content"`
	Text    string     `json:"text"`
	Author  string     `json:"author"`
	Version string     `json:"version"`
	Date    string     `json:"date"`
}

func (r fileRecord) body() string {
	for _, s := range []string{r.Review, r.Body, r.Content, r.Text} {
		if s != "" {
			return s
		}
	}
	return ""
}

// ReadJSON reads an array of review objects, or an object with a "reviews"
// array. Records without a rating are skipped.
func ReadJSON(r io.Reader) ([]model.Review, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)

	var records []fileRecord
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Reviews []fileRecord `json:"reviews"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
		records = wrapped.Reviews
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	reviews := make([]model.Review, 0, len(records))
	for _, rec := range records {
		if rec.Rating == 0 {
			continue
		}
		reviews = append(reviews, model.Review{
			Rating:  int(rec.Rating),
			Title:   extract.CleanText(rec.Title),
			Body:    extract.CleanText(rec.body()),
			Author:  rec.Author,
			Version: rec.Version,
			Date:    rec.Date,
		})
	}
	return reviews, nil
}

// ReadCSV reads a CSV export with a header row. Column names are matched
// case-insensitively; rating and one of review, body, content or text are
// required.
func ReadCSV(r io.Reader) ([]model.Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Review{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	ratingCol, ok := cols["rating"]
	if !ok {
		return nil, errors.New("missing rating column")
	}
	bodyCol := -1
	for _, k := range bodyKeys {
		if i, ok := cols[k]; ok {
			bodyCol = i
			break
		}
	}
	if bodyCol < 0 {
		return nil, fmt.Errorf("missing review text column (one of %s)", strings.Join(bodyKeys, ", "))
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	reviews := []model.Review{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if ratingCol >= len(row) || strings.TrimSpace(row[ratingCol]) == "" {
			continue
		}
		rating, ok := parseRating(row[ratingCol])
		if !ok {
			return nil, fmt.Errorf("line %d: invalid rating %q", line, row[ratingCol])
		}

		body := ""
		if bodyCol < len(row) {
			body = row[bodyCol]
		}
		reviews = append(reviews, model.Review{
			Rating:  rating,
			Title:   extract.CleanText(field(row, "title")),
			Body:    extract.CleanText(body),
			Author:  field(row, "author"),
			Version: field(row, "version"),
			Date:    field(row, "date"),
		})
	}
	return reviews, nil
}
