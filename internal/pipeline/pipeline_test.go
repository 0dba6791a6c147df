package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/filesort/internal/model"
)

func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func rulesOnlyConfig(t *testing.T) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Learning = model.LearningConfig{Backend: "memory"}
	return cfg
}

func TestClassifyPath_RulesOnly(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPipeline(rulesOnlyConfig(t), false, nil)
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	ctx := context.Background()

	got, err := p.ClassifyPath(ctx, touch(t, dir, "invoice.jpg", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryDocuments, got.Category)
	assert.Equal(t, model.SourceKeyword, got.Source)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, ".jpg", got.Extension)
	assert.Equal(t, "invoice.jpg", got.Filename)

	got, err = p.ClassifyPath(ctx, touch(t, dir, "vacation.JPG", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryImages, got.Category)
	assert.Equal(t, model.SourceExtension, got.Source)
	assert.Equal(t, 0.5, got.Confidence)

	got, err = p.ClassifyPath(ctx, touch(t, dir, "mystery", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryOther, got.Category)
}

func TestClassifyPath_Errors(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPipeline(rulesOnlyConfig(t), false, nil)
	require.NoError(t, err)

	_, err = p.ClassifyPath(context.Background(), dir)
	assert.True(t, errors.Is(err, ErrIsDirectory))

	_, err = p.ClassifyPath(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewPipeline_UserRules(t *testing.T) {
	dir := t.TempDir()
	rulesFile := touch(t, dir, "rules.yaml", "- keyword: mixtape\n  category: Audio\n- keyword: invoice\n  category: Archives\n")

	cfg := rulesOnlyConfig(t)
	cfg.Rules.File = rulesFile
	p, err := NewPipeline(cfg, false, nil)
	require.NoError(t, err)

	got, err := p.ClassifyPath(context.Background(), touch(t, dir, "summer_mixtape.zip", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryAudio, got.Category)

	got, err = p.ClassifyPath(context.Background(), touch(t, dir, "invoice.pdf", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryArchives, got.Category)

	cfg.Rules.File = filepath.Join(dir, "nope.yaml")
	_, err = NewPipeline(cfg, false, nil)
	assert.Error(t, err)
}

func TestNewPipeline_UnknownBackend(t *testing.T) {
	cfg := rulesOnlyConfig(t)
	cfg.Learning.Backend = "redis"
	_, err := NewPipeline(cfg, false, nil)
	assert.Error(t, err)
}

func fakeInference(t *testing.T, answer string, calls *atomic.Int32) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
		case "/api/generate":
			_ = json.NewEncoder(w).Encode(map[string]any{"response": answer, "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func aiConfig(t *testing.T, baseURL string) *model.Config {
	cfg := rulesOnlyConfig(t)
	cfg.Inference.BaseURL = baseURL
	cfg.Inference.TextTimeout = 2 * time.Second
	cfg.Inference.ProbeTimeout = time.Second
	cfg.RateLimiting.RequestsPerSecond = 100
	return cfg
}

func TestClassifyPath_AI(t *testing.T) {
	var calls atomic.Int32
	cfg := aiConfig(t, fakeInference(t, "Audio", &calls))
	p, err := NewPipeline(cfg, true, nil)
	require.NoError(t, err)
	require.NotNil(t, p.Cascade())

	dir := t.TempDir()
	got, err := p.ClassifyPath(context.Background(), touch(t, dir, "lecture_notes.bin", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryAudio, got.Category)
	assert.Equal(t, model.SourceFilename, got.Source)
	// nothing learned above the band yet, but the service is up
	assert.Equal(t, 0.7, got.Confidence)

	assert.Equal(t, 1, p.Learner().Stats(context.Background()).TotalClassifications)
}

func TestClassifyPath_AIFallsBackToRules(t *testing.T) {
	var calls atomic.Int32
	cfg := aiConfig(t, fakeInference(t, "no idea", &calls))
	p, err := NewPipeline(cfg, true, nil)
	require.NoError(t, err)

	got, err := p.ClassifyPath(context.Background(), touch(t, t.TempDir(), "track01.mp3", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryAudio, got.Category)
	assert.Equal(t, model.SourceExtension, got.Source)
	assert.Positive(t, calls.Load())
}

func TestClassifyPath_AIWithoutProvider(t *testing.T) {
	cfg := rulesOnlyConfig(t)
	cfg.Inference.Provider = ""
	p, err := NewPipeline(cfg, true, nil)
	require.NoError(t, err)

	got, err := p.ClassifyPath(context.Background(), touch(t, t.TempDir(), "setup.exe", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryExecutables, got.Category)
	assert.Equal(t, model.SourceExtension, got.Source)
}

func TestClassifyPath_LearnedBelowConfidenceBand(t *testing.T) {
	cfg := rulesOnlyConfig(t)
	cfg.Inference.Provider = ""
	p, err := NewPipeline(cfg, true, nil)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, p.Learner().Learn(ctx, "family_scan.jpg", model.CategoryDocuments))
	}

	// summed score 4 passes the threshold, but no single keyword count reaches 3
	// and no text model is available, so the confidence band is 0
	got, err := p.ClassifyPath(ctx, touch(t, t.TempDir(), "family_scan.jpg", ""))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryDocuments, got.Category)
	assert.Equal(t, model.SourceLearned, got.Source)
	assert.Equal(t, 0.0, got.Confidence)
}

func TestNewPipeline_SQLiteClose(t *testing.T) {
	cfg := rulesOnlyConfig(t)
	cfg.Learning = model.LearningConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "learn.db")}

	p, err := NewPipeline(cfg, false, nil)
	require.NoError(t, err)
	require.NoError(t, p.Learner().Learn(context.Background(), "podcast.mp3", model.CategoryAudio))
	assert.NoError(t, p.Close())
}

func TestNewLimiter_VisionRate(t *testing.T) {
	cfg := rulesOnlyConfig(t)
	assert.Nil(t, newLimiter(cfg))

	cfg.RateLimiting.BurstSize = 1
	cfg.RateLimiting.VisionRequestsPerSecond = 0.01
	limiter := newLimiter(cfg)
	require.NotNil(t, limiter)

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, cfg.Inference.VisionModel))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(short, cfg.Inference.VisionModel), "vision model should be throttled")

	// the text model keeps the unlimited default
	for i := 0; i < 20; i++ {
		require.NoError(t, limiter.Wait(ctx, cfg.Inference.Model))
	}
}
