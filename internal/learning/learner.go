package learning

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/filesort/internal/model"
)

// MinLearnedScore is the summed keyword score a category needs before it is trusted
const MinLearnedScore = 3

// Learner serializes every read-modify-write cycle against a Store.
// Persistence is best effort: load failures fall back to an empty record
// and save failures are logged, never returned.
type Learner struct {
	mu     sync.Mutex
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewLearner creates a learner over store
func NewLearner(store Store, logger *zap.Logger) *Learner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Learner{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// load must be called with mu held
func (l *Learner) load(ctx context.Context) *model.LearningRecord {
	record, err := l.store.Load(ctx)
	if err != nil {
		l.logger.Warn("could not load learning data, starting empty", zap.Error(err))
		return model.NewLearningRecord()
	}
	record.Normalize()
	return record
}

// save must be called with mu held
func (l *Learner) save(ctx context.Context, record *model.LearningRecord) {
	if err := l.store.Save(ctx, record); err != nil {
		l.logger.Warn("could not save learning data", zap.Error(err))
	}
}

// Learn credits every keyword of filename to category
func (l *Learner) Learn(ctx context.Context, filename string, category model.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidCategory, category)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record := l.load(ctx)
	applyLearn(record, filename, category)
	l.save(ctx, record)

	l.logger.Debug("learned pattern", zap.String("filename", filename), zap.String("category", string(category)))
	return nil
}

// LearnedCategory returns the best-scoring learned category for filename,
// if its summed score reaches MinLearnedScore
func (l *Learner) LearnedCategory(ctx context.Context, filename string) (model.Category, bool) {
	l.mu.Lock()
	record := l.load(ctx)
	l.mu.Unlock()

	category, score := bestCategory(record, ExtractKeywords(filename))
	if score < MinLearnedScore {
		return "", false
	}

	l.logger.Debug("learned pattern matched",
		zap.String("filename", filename),
		zap.String("category", string(category)),
		zap.Int("score", score))
	return category, true
}

// MaxKeywordCount returns the largest single keyword/category count for filename's keywords.
// Unknown stored categories are ignored, as in LearnedCategory.
func (l *Learner) MaxKeywordCount(ctx context.Context, filename string) int {
	l.mu.Lock()
	record := l.load(ctx)
	l.mu.Unlock()

	maxCount := 0
	for _, keyword := range ExtractKeywords(filename) {
		for category, count := range record.Patterns[keyword] {
			if category.Valid() && count > maxCount {
				maxCount = count
			}
		}
	}
	return maxCount
}

// RecordCorrection logs a user correction and reinforces the correct category.
// predicted may be empty when nothing was predicted.
func (l *Learner) RecordCorrection(ctx context.Context, filename string, predicted, correct model.Category) error {
	if !correct.Valid() {
		return fmt.Errorf("correct category: %w: %q", model.ErrInvalidCategory, correct)
	}
	if predicted != "" && !predicted.Valid() {
		return fmt.Errorf("predicted category: %w: %q", model.ErrInvalidCategory, predicted)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record := l.load(ctx)
	record.Corrections = append(record.Corrections, model.Correction{
		Filename:  filename,
		Predicted: predicted,
		Correct:   correct,
		Timestamp: l.now().Format(time.RFC3339Nano),
	})
	applyLearn(record, filename, correct)
	l.save(ctx, record)

	l.logger.Info("recorded correction",
		zap.String("filename", filename),
		zap.String("predicted", string(predicted)),
		zap.String("correct", string(correct)))
	return nil
}

// Location describes where the record is kept: a file path, or "memory"
func (l *Learner) Location() string {
	if p, ok := l.store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return "memory"
}

// Stats summarizes the stored record
func (l *Learner) Stats(ctx context.Context) model.LearningSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx).Summary()
}

func applyLearn(record *model.LearningRecord, filename string, category model.Category) {
	for _, keyword := range ExtractKeywords(filename) {
		counts := record.Patterns[keyword]
		if counts == nil {
			counts = make(map[model.Category]int)
			record.Patterns[keyword] = counts
		}
		counts[category]++
	}
	record.Stats.Total++
}

// bestCategory sums each keyword's counts per category and returns the top one.
// Ties go to the category listed first in model.Categories; unknown category
// names found in the store are ignored.
func bestCategory(record *model.LearningRecord, keywords []string) (model.Category, int) {
	scores := make(map[model.Category]int)
	for _, keyword := range keywords {
		for category, count := range record.Patterns[keyword] {
			scores[category] += count
		}
	}

	var best model.Category
	bestScore := 0
	for _, category := range model.Categories {
		if score := scores[category]; score > bestScore {
			best, bestScore = category, score
		}
	}
	return best, bestScore
}
