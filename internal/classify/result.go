package classify

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/filesort/internal/llm"
	"github.com/ppiankov/filesort/internal/model"
)

// Stage names a step of the cascade
type Stage string

const (
	StageLearned  Stage = "learned"
	StageVision   Stage = "vision"
	StageContent  Stage = "content"
	StageFilename Stage = "filename"
)

// Source maps the stage to the classification source it produces
func (s Stage) Source() model.Source {
	switch s {
	case StageLearned:
		return model.SourceLearned
	case StageVision:
		return model.SourceVision
	case StageContent:
		return model.SourceContent
	default:
		return model.SourceFilename
	}
}

// Status says why a stage did or did not produce a category
type Status int

const (
	StatusSuccess       Status = iota
	StatusNoMatch              // nothing learned for these keywords
	StatusNotApplicable        // no path, wrong file type, empty content
	StatusNotAvailable         // service down or model not served
	StatusTimeout
	StatusMalformed // undecodable response or no category in the answer
	StatusFailed    // anything else: local I/O, non-200 status, cancelled caller
)

var statusNames = map[Status]string{
	StatusSuccess:       "success",
	StatusNoMatch:       "no_match",
	StatusNotApplicable: "not_applicable",
	StatusNotAvailable:  "not_available",
	StatusTimeout:       "timeout",
	StatusMalformed:     "malformed",
	StatusFailed:        "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the status name in JSON output
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StageResult is the outcome of one stage
type StageResult struct {
	Stage    Stage          `json:"stage"`
	Status   Status         `json:"status"`
	Category model.Category `json:"category,omitempty"`
	Answer   string         `json:"answer,omitempty"` // raw model answer
	Err      error          `json:"-"`
	Duration time.Duration  `json:"duration"`
}

// Decision is the cascade outcome with every stage it ran
type Decision struct {
	Category model.Category `json:"category,omitempty"`
	Source   model.Source   `json:"source,omitempty"`
	Attempts []StageResult  `json:"attempts"`
}

// OK reports whether a category was decided
func (d Decision) OK() bool {
	return d.Category != ""
}

// Attempt returns the result of the given stage, if it ran
func (d Decision) Attempt(stage Stage) (StageResult, bool) {
	for _, a := range d.Attempts {
		if a.Stage == stage {
			return a, true
		}
	}
	return StageResult{}, false
}

// statusFromError maps client errors onto stage statuses
func statusFromError(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, llm.ErrModelMissing), errors.Is(err, llm.ErrUnavailable):
		return StatusNotAvailable
	case errors.Is(err, llm.ErrMalformed), errors.Is(err, llm.ErrNoCategory):
		return StatusMalformed
	default:
		return StatusFailed
	}
}
