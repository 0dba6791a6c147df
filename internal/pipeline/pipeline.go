package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ppiankov/filesort/internal/classify"
	"github.com/ppiankov/filesort/internal/learning"
	"github.com/ppiankov/filesort/internal/llm"
	"github.com/ppiankov/filesort/internal/model"
	"github.com/ppiankov/filesort/internal/rules"
	"github.com/ppiankov/filesort/internal/worker"
)

// ErrIsDirectory is returned when asked to classify a directory
var ErrIsDirectory = errors.New("is a directory")

const (
	keywordConfidence   = 1.0
	extensionConfidence = 0.5
)

// Pipeline orchestrates the per-file decision: the AI cascade when enabled,
// then the rule engine as the fallback that always produces a category.
type Pipeline struct {
	rules     *rules.Engine
	learner   *learning.Learner
	cascade   *classify.Cascade // nil if AI is disabled
	estimator *classify.Estimator
	logger    *zap.Logger
	closers   []io.Closer
}

// Deps are the components a Pipeline is assembled from
type Deps struct {
	Rules   *rules.Engine
	Learner *learning.Learner
	Cascade *classify.Cascade // optional
	Logger  *zap.Logger
}

// New assembles a pipeline from ready-made components
func New(deps Deps) *Pipeline {
	p := &Pipeline{
		rules:   deps.Rules,
		learner: deps.Learner,
		cascade: deps.Cascade,
		logger:  deps.Logger,
	}
	if p.rules == nil {
		p.rules = rules.NewEngine(nil)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.cascade != nil {
		p.estimator = classify.NewEstimator(p.learner, p.cascade)
	}
	return p
}

// NewPipeline builds every component from configuration.
// useAI turns on the cascade; without it only the rule engine runs.
func NewPipeline(cfg *model.Config, useAI bool, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	keywordRules := rules.DefaultKeywordRules
	if cfg.Rules.File != "" {
		userRules, err := rules.LoadFile(learning.ExpandPath(cfg.Rules.File))
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		keywordRules = rules.Merge(keywordRules, userRules)
	}

	store, err := learning.NewStore(cfg.Learning)
	if err != nil {
		return nil, fmt.Errorf("learning store: %w", err)
	}

	deps := Deps{
		Rules:   rules.NewEngine(keywordRules),
		Learner: learning.NewLearner(store, logger.Named("learning")),
		Logger:  logger,
	}

	if useAI {
		client, err := llm.NewClient(llm.ConfigFromModel(cfg.Inference))
		if err != nil {
			closeStore(store)
			return nil, fmt.Errorf("inference client: %w", err)
		}
		if client == nil {
			logger.Warn("AI classification requested but no inference provider is configured")
		}

		opts := []classify.Option{classify.WithLogger(logger.Named("cascade"))}
		if limiter := newLimiter(cfg); limiter != nil {
			opts = append(opts, classify.WithLimiter(limiter))
		}
		deps.Cascade = classify.NewCascade(deps.Learner, client, cfg.Inference, opts...)
	}

	p := New(deps)
	if c, ok := store.(io.Closer); ok {
		p.closers = append(p.closers, c)
	}
	return p, nil
}

// newLimiter returns nil when no inference rate is configured
func newLimiter(cfg *model.Config) *worker.Limiter {
	rl := cfg.RateLimiting
	if rl.RequestsPerSecond <= 0 && rl.VisionRequestsPerSecond <= 0 {
		return nil
	}
	limiter := worker.NewLimiter(rl.RequestsPerSecond, rl.BurstSize)
	if rl.VisionRequestsPerSecond > 0 && cfg.Inference.VisionModel != "" {
		limiter.SetRate(cfg.Inference.VisionModel, rl.VisionRequestsPerSecond, rl.BurstSize)
	}
	return limiter
}

func closeStore(store learning.Store) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}

// Close releases the learning store
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Learner returns the learning store
func (p *Pipeline) Learner() *learning.Learner {
	return p.learner
}

// Cascade returns the AI cascade, or nil if AI is disabled
func (p *Pipeline) Cascade() *classify.Cascade {
	return p.cascade
}

// ClassifyPath decides a category for the file at path.
// It only fails when the path cannot be stat-ed or is a directory.
func (p *Pipeline) ClassifyPath(ctx context.Context, path string) (*model.Classification, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	filename := filepath.Base(path)
	ext := rules.NormalizeExtension(filepath.Ext(filename))

	result := &model.Classification{
		Path:      path,
		Filename:  filename,
		Extension: ext,
	}

	if p.cascade != nil {
		d := p.cascade.Decide(ctx, filename, ext, path)
		if d.OK() {
			result.Category = d.Category
			result.Source = d.Source
			result.Confidence = p.estimator.Confidence(ctx, filename)
			return result, nil
		}
		p.logger.Debug("cascade undecided, using rules", zap.String("path", path))
	}

	result.Category, result.Source = p.rules.ClassifyFileWithSource(filename, ext)
	if result.Source == model.SourceKeyword {
		result.Confidence = keywordConfidence
	} else {
		result.Confidence = extensionConfidence
	}
	return result, nil
}
