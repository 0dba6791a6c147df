package learning

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/filesort/internal/model"
)

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (s *failingStore) Load(context.Context) (*model.LearningRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return model.NewLearningRecord(), nil
}

func (s *failingStore) Save(context.Context, *model.LearningRecord) error {
	s.saves++
	return s.saveErr
}

func TestLearner_ThresholdSingleKeyword(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(NewMemoryStore(), nil)

	for i := 1; i <= 3; i++ {
		require.NoError(t, l.Learn(ctx, "invoice.pdf", model.CategoryDocuments))
		got, ok := l.LearnedCategory(ctx, "invoice.pdf")
		if i < 3 {
			assert.False(t, ok, "call %d", i)
			continue
		}
		assert.True(t, ok)
		assert.Equal(t, model.CategoryDocuments, got)
	}
}

func TestLearner_ScoresSumAcrossKeywords(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(NewMemoryStore(), nil)

	// two keywords ("invoice", "march") each contribute, so the summed score is 2 after one call.
	// The threshold is therefore reached on the second learn, not the third; this is intended.
	require.NoError(t, l.Learn(ctx, "invoice_march.pdf", model.CategoryDocuments))
	_, ok := l.LearnedCategory(ctx, "invoice_march.pdf")
	assert.False(t, ok)

	require.NoError(t, l.Learn(ctx, "invoice_march.pdf", model.CategoryDocuments))
	got, ok := l.LearnedCategory(ctx, "invoice_march.pdf")
	assert.True(t, ok)
	assert.Equal(t, model.CategoryDocuments, got)

	// a related file sharing one keyword is scored by that keyword alone
	_, ok = l.LearnedCategory(ctx, "march_budget.xlsx")
	assert.False(t, ok)
}

func TestLearner_NoKeywordsNeverMatches(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(NewMemoryStore(), nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Learn(ctx, "f.jpg", model.CategoryImages))
	}
	_, ok := l.LearnedCategory(ctx, "f.jpg")
	assert.False(t, ok)
	assert.Equal(t, 5, l.Stats(ctx).TotalClassifications)
	assert.Equal(t, 0, l.Stats(ctx).UniquePatterns)
}

func TestLearner_CorrectionReinforcesCorrectCategory(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(NewMemoryStore(), nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Learn(ctx, "family_scan.jpg", model.CategoryImages))
	}
	got, _ := l.LearnedCategory(ctx, "family_scan.jpg")
	assert.Equal(t, model.CategoryImages, got)

	// Images has 6 (two keywords x 3); Documents needs to exceed it
	for i := 0; i < 3; i++ {
		require.NoError(t, l.RecordCorrection(ctx, "family_scan.jpg", model.CategoryImages, model.CategoryDocuments))
		got, _ = l.LearnedCategory(ctx, "family_scan.jpg")
		assert.Equal(t, model.CategoryImages, got, "after %d corrections", i+1)
	}

	require.NoError(t, l.RecordCorrection(ctx, "family_scan.jpg", model.CategoryImages, model.CategoryDocuments))
	got, ok := l.LearnedCategory(ctx, "family_scan.jpg")
	assert.True(t, ok)
	assert.Equal(t, model.CategoryDocuments, got)

	stats := l.Stats(ctx)
	assert.Equal(t, 4, stats.Corrections)
	assert.Equal(t, 7, stats.TotalClassifications)
}

func TestLearner_TieGoesToCanonicalOrder(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(NewMemoryStore(), nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Learn(ctx, "mixed.bin", model.CategoryCode))
		require.NoError(t, l.Learn(ctx, "mixed.bin", model.CategoryDocuments))
	}

	got, ok := l.LearnedCategory(ctx, "mixed.bin")
	assert.True(t, ok)
	assert.Equal(t, model.CategoryDocuments, got) // Documents precedes Code
}

func TestLearner_IgnoresUnknownStoredCategories(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := model.NewLearningRecord()
	rec.Patterns["holiday"] = map[model.Category]int{"Pictures": 50, model.CategoryImages: 3}
	require.NoError(t, store.Save(ctx, rec))

	l := NewLearner(store, nil)
	got, ok := l.LearnedCategory(ctx, "holiday.png")
	assert.True(t, ok)
	assert.Equal(t, model.CategoryImages, got)

	// the unknown category's count must not lift confidence either
	assert.Equal(t, 3, l.MaxKeywordCount(ctx, "holiday.png"))
}

func TestLearner_RejectsInvalidCategories(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	l := NewLearner(store, nil)

	err := l.Learn(ctx, "report.pdf", model.Category("Pictures"))
	assert.True(t, errors.Is(err, model.ErrInvalidCategory))

	err = l.RecordCorrection(ctx, "report.pdf", model.CategoryImages, model.Category("nope"))
	assert.True(t, errors.Is(err, model.ErrInvalidCategory))

	err = l.RecordCorrection(ctx, "report.pdf", model.Category("nope"), model.CategoryImages)
	assert.True(t, errors.Is(err, model.ErrInvalidCategory))

	assert.Equal(t, 0, store.Saves())

	// an empty prediction is allowed
	require.NoError(t, l.RecordCorrection(ctx, "report.pdf", "", model.CategoryDocuments))
}

func TestLearner_CorrectionTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	l := NewLearner(store, nil)
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	require.NoError(t, l.RecordCorrection(ctx, "scan_001.png", model.CategoryImages, model.CategoryDocuments))

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rec.Corrections, 1)
	assert.Equal(t, model.Correction{
		Filename:  "scan_001.png",
		Predicted: model.CategoryImages,
		Correct:   model.CategoryDocuments,
		Timestamp: "2025-03-14T09:26:53Z",
	}, rec.Corrections[0])
	assert.Equal(t, 1, rec.Patterns["scan"][model.CategoryDocuments])
	assert.Zero(t, rec.Patterns["scan"][model.CategoryImages])
	assert.Equal(t, 1, store.Saves())
}

func TestLearner_LoadFailureDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{loadErr: errors.New("disk on fire")}
	l := NewLearner(store, nil)

	_, ok := l.LearnedCategory(ctx, "invoice.pdf")
	assert.False(t, ok)
	assert.Equal(t, model.LearningSummary{}, l.Stats(ctx))
	assert.NoError(t, l.Learn(ctx, "invoice.pdf", model.CategoryDocuments))
	assert.Equal(t, 1, store.saves)
}

func TestLearner_SaveFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(&failingStore{saveErr: errors.New("read-only")}, nil)

	assert.NoError(t, l.Learn(ctx, "invoice.pdf", model.CategoryDocuments))
	assert.NoError(t, l.RecordCorrection(ctx, "invoice.pdf", model.CategoryImages, model.CategoryDocuments))
}

func TestLearner_CorruptFileDegrades(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "learning_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	l := NewLearner(NewFileStore(path), nil)
	_, ok := l.LearnedCategory(ctx, "invoice.pdf")
	assert.False(t, ok)

	// the next save replaces the corrupt document with a valid one
	require.NoError(t, l.Learn(ctx, "invoice.pdf", model.CategoryDocuments))
	rec, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Stats.Total)
}

func TestLearner_ConcurrentLearnLosesNothing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "learning_data.json")
	l := NewLearner(NewFileStore(path), nil)

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = l.Learn(ctx, fmt.Sprintf("shared_invoice_%d.pdf", w), model.CategoryDocuments)
			}
		}(w)
	}
	wg.Wait()

	rec, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, rec.Stats.Total)
	assert.Equal(t, workers*perWorker, rec.Patterns["shared"][model.CategoryDocuments])
	assert.Equal(t, workers*perWorker, rec.Patterns["invoice"][model.CategoryDocuments])
}

func TestLearner_MaxKeywordCount(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(NewMemoryStore(), nil)

	assert.Equal(t, 0, l.MaxKeywordCount(ctx, "budget_plan.xlsx"))

	for i := 0; i < 4; i++ {
		require.NoError(t, l.Learn(ctx, "budget.xlsx", model.CategoryDocuments))
	}
	require.NoError(t, l.Learn(ctx, "plan.xlsx", model.CategoryCode))

	// max of single counts, not the sum
	assert.Equal(t, 4, l.MaxKeywordCount(ctx, "budget_plan.xlsx"))
}
