package model

// LearningRecord is the persisted learning state.
// It is always loaded and saved as a whole document.
type LearningRecord struct {
	Patterns    map[string]map[Category]int `json:"patterns"`    // keyword -> category -> occurrences
	Corrections []Correction                `json:"corrections"` // append-only user corrections
	Stats       LearningStats               `json:"stats"`
}

// Correction records a user overriding a predicted category
type Correction struct {
	Filename  string   `json:"filename"`
	Predicted Category `json:"predicted"`
	Correct   Category `json:"correct"`
	Timestamp string   `json:"timestamp"` // RFC 3339; kept as text so older ISO-8601 entries survive a round trip
}

// LearningStats holds aggregate counters
type LearningStats struct {
	Total   int `json:"total"`   // classification events learned
	Correct int `json:"correct"` // reserved
}

// LearningSummary is the read-only view reported by `filesort stats`
type LearningSummary struct {
	TotalClassifications int `json:"total_classifications" yaml:"total_classifications"`
	UniquePatterns       int `json:"unique_patterns" yaml:"unique_patterns"`
	Corrections          int `json:"corrections" yaml:"corrections"`
}

// NewLearningRecord returns an empty record
func NewLearningRecord() *LearningRecord {
	return &LearningRecord{
		Patterns:    make(map[string]map[Category]int),
		Corrections: []Correction{},
	}
}

// Normalize fills nil collections left behind by a partial document
func (r *LearningRecord) Normalize() {
	if r.Patterns == nil {
		r.Patterns = make(map[string]map[Category]int)
	}
	for keyword, counts := range r.Patterns {
		if counts == nil {
			r.Patterns[keyword] = make(map[Category]int)
		}
	}
	if r.Corrections == nil {
		r.Corrections = []Correction{}
	}
}

// Summary computes the aggregate view of the record
func (r *LearningRecord) Summary() LearningSummary {
	return LearningSummary{
		TotalClassifications: r.Stats.Total,
		UniquePatterns:       len(r.Patterns),
		Corrections:          len(r.Corrections),
	}
}
