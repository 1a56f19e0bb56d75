package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/appscope/internal/model"
)

// mockAnalyzer implements Analyzer
type mockAnalyzer struct {
	fail map[string]bool
}

func (m *mockAnalyzer) Analyze(ctx context.Context, target string) (*model.Report, error) {
	time.Sleep(5 * time.Millisecond)
	if m.fail[target] {
		return nil, errors.New("feed unavailable")
	}
	return &model.Report{
		Subject: "App " + target,
		Source:  model.SourceInfo{Kind: "appstore", AppID: target},
	}, nil
}

func writeTargets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apps.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBatchProcessor_ProcessTargets(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	targets := []string{"111", "222", "333", "444"}
	results := processor.ProcessTargets(context.Background(), targets)

	require.Len(t, results, len(targets))
	for i, res := range results {
		assert.Equal(t, targets[i], res.Target)
		assert.NoError(t, res.Error, res.Target)
		if assert.NotNil(t, res.Report, res.Target) {
			assert.Equal(t, targets[i], res.Report.Source.AppID)
		}
	}
}

func TestBatchProcessor_ProcessTargets_PartialFailure(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{fail: map[string]bool{"222": true}}, 2)

	results := processor.ProcessTargets(context.Background(), []string{"111", "222", "333"})

	require.Len(t, results, 3)
	assert.Error(t, results[1].Error)
	assert.Nil(t, results[1].Report, "no report on error")

	ok, failed := Tally(results)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}

func TestBatchProcessor_ProcessTargets_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	results := processor.ProcessTargets(context.Background(), []string{})
	assert.Empty(t, results)
}

func TestBatchProcessor_ProcessTargets_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockAnalyzer{}, 1)
	results := processor.ProcessTargets(ctx, []string{"111", "222"})

	require.Len(t, results, 2)
	for _, res := range results {
		assert.ErrorIs(t, res.Error, context.Canceled, res.Target)
	}
}

func TestAppResult_GetError(t *testing.T) {
	assert.NoError(t, (&AppResult{Target: "111"}).GetError())

	expected := errors.New("analysis failed")
	r := &AppResult{Target: "111", Error: expected}
	assert.Same(t, expected, r.GetError())
}

func TestReadTargetsFromFile(t *testing.T) {
	path := writeTargets(t, `https://apps.apple.com/us/app/notes/id111
# comment
222

   333   
222`)

	targets, err := ReadTargetsFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://apps.apple.com/us/app/notes/id111", "222", "333"}, targets)
}

func TestReadTargetsFromFile_NonExistent(t *testing.T) {
	_, err := ReadTargetsFromFile("non_existent_file.txt")
	assert.Error(t, err)
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTargets(t, "111\n222\n# comment\n\n333\n")

	results, err := NewBatchProcessor(&mockAnalyzer{}, 2).ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	path := writeTargets(t, "")

	results, err := NewBatchProcessor(&mockAnalyzer{}, 2).ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, results)
}
