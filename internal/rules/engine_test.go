package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/filesort/internal/model"
)

func TestEngine_ClassifyFile_KeywordOverridesExtension(t *testing.T) {
	e := NewEngine(nil)

	assert.Equal(t, model.CategoryDocuments, e.ClassifyFile("invoice.jpg", ".jpg"))
	assert.Equal(t, model.CategoryImages, e.ClassifyFile("vacation.jpg", ".jpg"))
}

func TestEngine_ClassifyByRules(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		filename string
		want     model.Category
		found    bool
	}{
		{"Invoice_2024.pdf", model.CategoryDocuments, true},
		{"My Screenshot 12.png", model.CategoryImages, true},
		{"holiday_MOVIE.mkv", model.CategoryVideos, true},
		{"podcast-ep1.mp3", model.CategoryAudio, true},
		{"site_backup.tar.gz", model.CategoryArchives, true},
		{"deploy_script.sh", model.CategoryCode, true},
		{"random_file.txt", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, found := e.ClassifyByRules(tt.filename)
		assert.Equal(t, tt.found, found, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}

func TestEngine_FirstRuleWins(t *testing.T) {
	// "report" (Documents) is declared before "video" (Videos)
	e := NewEngine(nil)
	got, ok := e.ClassifyByRules("video_report.mp4")
	assert.True(t, ok)
	assert.Equal(t, model.CategoryDocuments, got)

	custom := NewEngine([]KeywordRule{
		{Keyword: "video", Category: model.CategoryVideos},
		{Keyword: "report", Category: model.CategoryDocuments},
	})
	got, _ = custom.ClassifyByRules("video_report.mp4")
	assert.Equal(t, model.CategoryVideos, got)
}

func TestEngine_DropsInvalidRules(t *testing.T) {
	e := NewEngine([]KeywordRule{
		{Keyword: "  Memo ", Category: model.CategoryDocuments},
		{Keyword: "", Category: model.CategoryImages},
		{Keyword: "pic", Category: model.Category("Pictures")},
	})

	assert.Equal(t, []KeywordRule{{Keyword: "memo", Category: model.CategoryDocuments}}, e.rules)

	got, ok := e.ClassifyByRules("Team_MEMO.txt")
	assert.True(t, ok)
	assert.Equal(t, model.CategoryDocuments, got)
	_, ok = e.ClassifyByRules("pic.png")
	assert.False(t, ok)
}

func TestClassifyByExtension_Total(t *testing.T) {
	inputs := []string{"", ".", "pdf", ".PDF", ".Jpeg", ".unknown", "  .mp3 ", ".tar.gz", "ÿ", ".WOFF2"}
	for _, in := range inputs {
		got := ClassifyByExtension(in)
		assert.True(t, got.Valid(), "extension %q produced %q", in, got)
	}

	assert.Equal(t, model.CategoryDocuments, ClassifyByExtension("pdf"))
	assert.Equal(t, model.CategoryDocuments, ClassifyByExtension(".PDF"))
	assert.Equal(t, model.CategoryImages, ClassifyByExtension(".Jpeg"))
	assert.Equal(t, model.CategoryFonts, ClassifyByExtension(".WOFF2"))
	assert.Equal(t, model.CategoryOther, ClassifyByExtension(""))
	assert.Equal(t, model.CategoryOther, ClassifyByExtension(".unknown"))
}

func TestClassifyFileWithSource(t *testing.T) {
	e := NewEngine(nil)

	c, src := e.ClassifyFileWithSource("receipt.png", ".png")
	assert.Equal(t, model.CategoryDocuments, c)
	assert.Equal(t, model.SourceKeyword, src)

	c, src = e.ClassifyFileWithSource("track01.flac", ".flac")
	assert.Equal(t, model.CategoryAudio, c)
	assert.Equal(t, model.SourceExtension, src)
}
