package model

// Source identifies which classifier produced a decision
type Source string

const (
	SourceLearned   Source = "learned"   // learned keyword pattern
	SourceVision    Source = "vision"    // vision model on image bytes
	SourceContent   Source = "content"   // text model on filename + content snippet
	SourceFilename  Source = "filename"  // text model on filename alone
	SourceKeyword   Source = "keyword"   // static keyword rule
	SourceExtension Source = "extension" // extension table
)

// IsAI reports whether the source comes from the AI cascade
func (s Source) IsAI() bool {
	switch s {
	case SourceLearned, SourceVision, SourceContent, SourceFilename:
		return true
	default:
		return false
	}
}

// Classification is the decision handed to the file mover
type Classification struct {
	Path       string   `json:"path"`
	Filename   string   `json:"filename"`
	Extension  string   `json:"extension"`
	Category   Category `json:"category"`
	Source     Source   `json:"source"`
	Confidence float64  `json:"confidence"`
}
