package rules

import (
	"strings"

	"github.com/ppiankov/filesort/internal/model"
)

// KeywordRule maps a lowercase filename substring to a category
type KeywordRule struct {
	Keyword  string         `yaml:"keyword"`
	Category model.Category `yaml:"category"`
}

// DefaultKeywordRules are checked in declaration order; the first match wins
var DefaultKeywordRules = []KeywordRule{
	// Documents
	{"invoice", model.CategoryDocuments},
	{"receipt", model.CategoryDocuments},
	{"contract", model.CategoryDocuments},
	{"report", model.CategoryDocuments},
	{"resume", model.CategoryDocuments},
	{"cv", model.CategoryDocuments},
	{"letter", model.CategoryDocuments},
	{"statement", model.CategoryDocuments},

	// Images
	{"screenshot", model.CategoryImages},
	{"photo", model.CategoryImages},
	{"wallpaper", model.CategoryImages},
	{"banner", model.CategoryImages},
	{"logo", model.CategoryImages},
	{"icon", model.CategoryImages},

	// Videos
	{"video", model.CategoryVideos},
	{"movie", model.CategoryVideos},
	{"clip", model.CategoryVideos},
	{"recording", model.CategoryVideos},
	{"tutorial", model.CategoryVideos},

	// Audio
	{"song", model.CategoryAudio},
	{"music", model.CategoryAudio},
	{"podcast", model.CategoryAudio},
	{"audiobook", model.CategoryAudio},

	// Archives
	{"backup", model.CategoryArchives},
	{"archive", model.CategoryArchives},

	// Code
	{"script", model.CategoryCode},
	{"source", model.CategoryCode},
	{"config", model.CategoryCode},
}

// extensionCategories is the static extension table; keys include the leading dot
var extensionCategories = map[string]model.Category{
	// Images
	".jpg": model.CategoryImages, ".jpeg": model.CategoryImages, ".png": model.CategoryImages,
	".gif": model.CategoryImages, ".bmp": model.CategoryImages, ".svg": model.CategoryImages,
	".webp": model.CategoryImages, ".ico": model.CategoryImages, ".tif": model.CategoryImages,
	".tiff": model.CategoryImages, ".heic": model.CategoryImages, ".raw": model.CategoryImages,

	// Documents
	".pdf": model.CategoryDocuments, ".doc": model.CategoryDocuments, ".docx": model.CategoryDocuments,
	".txt": model.CategoryDocuments, ".rtf": model.CategoryDocuments, ".odt": model.CategoryDocuments,
	".xls": model.CategoryDocuments, ".xlsx": model.CategoryDocuments, ".ods": model.CategoryDocuments,
	".csv": model.CategoryDocuments, ".ppt": model.CategoryDocuments, ".pptx": model.CategoryDocuments,
	".odp": model.CategoryDocuments, ".md": model.CategoryDocuments, ".epub": model.CategoryDocuments,

	// Videos
	".mp4": model.CategoryVideos, ".mkv": model.CategoryVideos, ".avi": model.CategoryVideos,
	".mov": model.CategoryVideos, ".wmv": model.CategoryVideos, ".flv": model.CategoryVideos,
	".webm": model.CategoryVideos, ".m4v": model.CategoryVideos, ".mpeg": model.CategoryVideos,

	// Audio
	".mp3": model.CategoryAudio, ".wav": model.CategoryAudio, ".flac": model.CategoryAudio,
	".aac": model.CategoryAudio, ".m4a": model.CategoryAudio, ".ogg": model.CategoryAudio,
	".wma": model.CategoryAudio, ".opus": model.CategoryAudio,

	// Archives
	".zip": model.CategoryArchives, ".rar": model.CategoryArchives, ".7z": model.CategoryArchives,
	".tar": model.CategoryArchives, ".gz": model.CategoryArchives, ".bz2": model.CategoryArchives,
	".xz": model.CategoryArchives, ".tgz": model.CategoryArchives,

	// Code
	".py": model.CategoryCode, ".js": model.CategoryCode, ".ts": model.CategoryCode,
	".html": model.CategoryCode, ".css": model.CategoryCode, ".json": model.CategoryCode,
	".xml": model.CategoryCode, ".java": model.CategoryCode, ".c": model.CategoryCode,
	".cpp": model.CategoryCode, ".h": model.CategoryCode, ".go": model.CategoryCode,
	".rs": model.CategoryCode, ".rb": model.CategoryCode, ".php": model.CategoryCode,
	".yaml": model.CategoryCode, ".yml": model.CategoryCode, ".toml": model.CategoryCode,
	".sql": model.CategoryCode,

	// Executables
	".exe": model.CategoryExecutables, ".msi": model.CategoryExecutables, ".dmg": model.CategoryExecutables,
	".app": model.CategoryExecutables, ".bat": model.CategoryExecutables, ".sh": model.CategoryExecutables,
	".deb": model.CategoryExecutables, ".rpm": model.CategoryExecutables, ".apk": model.CategoryExecutables,
	".appimage": model.CategoryExecutables,

	// Fonts
	".ttf": model.CategoryFonts, ".otf": model.CategoryFonts, ".woff": model.CategoryFonts,
	".woff2": model.CategoryFonts,
}

// Engine classifies files by keyword rules with an extension fallback
type Engine struct {
	rules []KeywordRule
}

// NewEngine creates an engine over the given rules (nil means DefaultKeywordRules)
func NewEngine(rules []KeywordRule) *Engine {
	if rules == nil {
		rules = DefaultKeywordRules
	}

	normalized := make([]KeywordRule, 0, len(rules))
	for _, r := range rules {
		keyword := strings.ToLower(strings.TrimSpace(r.Keyword))
		if keyword == "" || !r.Category.Valid() {
			continue
		}
		normalized = append(normalized, KeywordRule{Keyword: keyword, Category: r.Category})
	}

	return &Engine{rules: normalized}
}

// ClassifyByRules returns the category of the first rule whose keyword occurs in filename
func (e *Engine) ClassifyByRules(filename string) (model.Category, bool) {
	lower := strings.ToLower(filename)

	for _, rule := range e.rules {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Category, true
		}
	}

	return "", false
}

// ClassifyFile applies keyword rules first, then the extension table
func (e *Engine) ClassifyFile(filename, extension string) model.Category {
	category, _ := e.ClassifyFileWithSource(filename, extension)
	return category
}

// ClassifyFileWithSource is ClassifyFile that also reports which table decided
func (e *Engine) ClassifyFileWithSource(filename, extension string) (model.Category, model.Source) {
	if category, ok := e.ClassifyByRules(filename); ok {
		return category, model.SourceKeyword
	}
	return ClassifyByExtension(extension), model.SourceExtension
}

// ClassifyByExtension looks up the extension (with or without the dot, any case).
// Unknown or empty extensions map to Other.
func ClassifyByExtension(extension string) model.Category {
	ext := NormalizeExtension(extension)
	if category, ok := extensionCategories[ext]; ok {
		return category
	}
	return model.CategoryOther
}

// NormalizeExtension lower-cases the extension and ensures a leading dot
func NormalizeExtension(extension string) string {
	ext := strings.ToLower(strings.TrimSpace(extension))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
