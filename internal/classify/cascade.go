package classify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/filesort/internal/llm"
	"github.com/ppiankov/filesort/internal/model"
)

// PatternLearner is the part of the learning store the cascade uses
type PatternLearner interface {
	LearnedCategory(ctx context.Context, filename string) (model.Category, bool)
	Learn(ctx context.Context, filename string, category model.Category) error
}

// Limiter throttles inference calls per model
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// Cascade tries learned patterns, vision, content and filename classification
// in that order and stops at the first category it trusts.
// It never returns an error: every failure becomes a stage status.
type Cascade struct {
	learner PatternLearner
	client  llm.Client
	prober  *llm.Prober
	limiter Limiter
	cfg     model.InferenceConfig
	logger  *zap.Logger
}

// Option configures a Cascade
type Option func(*Cascade)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cascade) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLimiter throttles every inference call
func WithLimiter(limiter Limiter) Option {
	return func(c *Cascade) {
		c.limiter = limiter
	}
}

// WithProber shares a capability prober (and its cache) with other components
func WithProber(prober *llm.Prober) Option {
	return func(c *Cascade) {
		if prober != nil {
			c.prober = prober
		}
	}
}

// NewCascade creates a cascade. client may be nil, in which case only
// learned patterns are consulted.
func NewCascade(learner PatternLearner, client llm.Client, cfg model.InferenceConfig, opts ...Option) *Cascade {
	c := &Cascade{
		learner: learner,
		client:  client,
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.prober == nil {
		c.prober = llm.NewProber(client, cfg.ProbeTimeout, cfg.ProbeCacheTTL, c.logger)
	}
	return c
}

// Available reports whether the text model is served
func (c *Cascade) Available(ctx context.Context) bool {
	if c.client == nil {
		return false
	}
	ok, err := c.prober.HasModel(ctx, c.cfg.Model)
	return err == nil && ok
}

// Classify returns the decided category, or false when no stage produced one
func (c *Cascade) Classify(ctx context.Context, filename, ext, path string) (model.Category, bool) {
	d := c.Decide(ctx, filename, ext, path)
	return d.Category, d.OK()
}

// Decide runs the cascade and reports every stage attempted.
// path may be empty, which skips the vision and content stages.
func (c *Cascade) Decide(ctx context.Context, filename, ext, path string) Decision {
	if filename == "" && path != "" {
		filename = filepath.Base(path)
	}
	if ext == "" {
		ext = filepath.Ext(filename)
	}

	stages := []struct {
		stage Stage
		run   func(context.Context, string, string, string) StageResult
	}{
		{StageLearned, c.learned},
		{StageVision, c.vision},
		{StageContent, c.content},
		{StageFilename, c.filename},
	}

	var d Decision
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			d.Attempts = append(d.Attempts, StageResult{Stage: s.stage, Status: StatusFailed, Err: err})
			break
		}

		start := time.Now()
		res := s.run(ctx, filename, ext, path)
		res.Stage = s.stage
		res.Duration = time.Since(start)
		d.Attempts = append(d.Attempts, res)
		c.logStage(filename, res)

		if res.Status != StatusSuccess {
			continue
		}

		// AI answers feed the learning store so the next similar file skips the network
		if s.stage != StageLearned {
			if err := c.learner.Learn(ctx, filename, res.Category); err != nil {
				c.logger.Warn("could not learn classification", zap.String("filename", filename), zap.Error(err))
			}
		}

		d.Category = res.Category
		d.Source = s.stage.Source()
		return d
	}

	return d
}

func (c *Cascade) learned(ctx context.Context, filename, _, _ string) StageResult {
	if category, ok := c.learner.LearnedCategory(ctx, filename); ok {
		return StageResult{Status: StatusSuccess, Category: category}
	}
	return StageResult{Status: StatusNoMatch}
}

func (c *Cascade) vision(ctx context.Context, _, ext, path string) StageResult {
	if path == "" || !IsImageExtension(ext) {
		return StageResult{Status: StatusNotApplicable}
	}
	if res, ok := c.requireModel(ctx, c.cfg.VisionModel); !ok {
		return res
	}

	img, err := loadImage(path, c.cfg.VisionMaxWidth)
	if err != nil {
		return StageResult{Status: StatusFailed, Err: err}
	}

	return c.ask(ctx, c.cfg.VisionModel, func(ctx context.Context) (string, error) {
		return c.client.Chat(ctx, llm.ChatRequest{
			Model: c.cfg.VisionModel,
			Messages: []llm.Message{{
				Role:    "user",
				Content: VisionPrompt(),
				Images:  [][]byte{img},
			}},
			Options: llm.OptionsFromModel(c.cfg),
			Timeout: c.cfg.VisionTimeout,
		})
	})
}

func (c *Cascade) content(ctx context.Context, filename, ext, path string) StageResult {
	if path == "" || !IsTextExtension(ext) {
		return StageResult{Status: StatusNotApplicable}
	}

	snippet, err := ReadSnippet(path, SnippetRunes)
	if err != nil {
		return StageResult{Status: StatusFailed, Err: err}
	}
	if snippet == "" {
		return StageResult{Status: StatusNotApplicable}
	}

	if res, ok := c.requireModel(ctx, c.cfg.Model); !ok {
		return res
	}

	return c.ask(ctx, c.cfg.Model, func(ctx context.Context) (string, error) {
		return c.client.Generate(ctx, llm.GenerateRequest{
			Model:   c.cfg.Model,
			Prompt:  ContentPrompt(filename, snippet),
			Options: llm.OptionsFromModel(c.cfg),
			Timeout: c.cfg.ContentTimeout,
		})
	})
}

func (c *Cascade) filename(ctx context.Context, filename, _, _ string) StageResult {
	if res, ok := c.requireModel(ctx, c.cfg.Model); !ok {
		return res
	}

	return c.ask(ctx, c.cfg.Model, func(ctx context.Context) (string, error) {
		return c.client.Generate(ctx, llm.GenerateRequest{
			Model:   c.cfg.Model,
			Prompt:  FilenamePrompt(filename),
			Options: llm.OptionsFromModel(c.cfg),
			Timeout: c.cfg.TextTimeout,
		})
	})
}

// requireModel checks the client is configured and serves modelName
func (c *Cascade) requireModel(ctx context.Context, modelName string) (StageResult, bool) {
	if c.client == nil {
		return StageResult{Status: StatusNotAvailable, Err: fmt.Errorf("%w: no inference provider configured", llm.ErrUnavailable)}, false
	}

	ok, err := c.prober.HasModel(ctx, modelName)
	if err != nil {
		return StageResult{Status: statusFromError(err), Err: err}, false
	}
	if !ok {
		return StageResult{
			Status: StatusNotAvailable,
			Err:    fmt.Errorf("%w: %s (pull it with: ollama pull %s)", llm.ErrModelMissing, modelName, modelName),
		}, false
	}
	return StageResult{}, true
}

// ask makes one throttled inference call and validates the answer
func (c *Cascade) ask(ctx context.Context, modelName string, call func(context.Context) (string, error)) StageResult {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, modelName); err != nil {
			return StageResult{Status: StatusFailed, Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	answer, err := call(ctx)
	if err != nil {
		if errors.Is(err, llm.ErrModelMissing) {
			// the cached model list is stale
			c.prober.Invalidate()
		}
		return StageResult{Status: statusFromError(err), Err: err}
	}

	category, ok := llm.ExtractCategory(answer)
	if !ok {
		return StageResult{
			Status: StatusMalformed,
			Answer: answer,
			Err:    fmt.Errorf("%w: %q", llm.ErrNoCategory, answer),
		}
	}
	return StageResult{Status: StatusSuccess, Category: category, Answer: answer}
}

func (c *Cascade) logStage(filename string, res StageResult) {
	level := zapcore.DebugLevel
	switch res.Status {
	case StatusTimeout, StatusMalformed, StatusFailed:
		level = zapcore.WarnLevel
	case StatusSuccess:
		if res.Stage == StageVision || res.Stage == StageContent {
			level = zapcore.InfoLevel
		}
	}

	ce := c.logger.Check(level, "cascade stage finished")
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("filename", filename),
		zap.String("stage", string(res.Stage)),
		zap.Stringer("status", res.Status),
		zap.Duration("duration", res.Duration),
	}
	if res.Category != "" {
		fields = append(fields, zap.String("category", string(res.Category)))
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}
	ce.Write(fields...)
}
