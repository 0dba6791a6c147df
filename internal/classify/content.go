package classify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// SnippetRunes is how much of a text file the content stage reads
const SnippetRunes = 500

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true,
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".py": true, ".js": true, ".html": true,
	".css": true, ".json": true, ".xml": true, ".csv": true, ".log": true,
}

// IsImageExtension reports whether the vision stage applies to ext
func IsImageExtension(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}

// IsTextExtension reports whether the content stage applies to ext
func IsTextExtension(ext string) bool {
	return textExtensions[strings.ToLower(ext)]
}

// ReadSnippet returns up to maxRunes characters from the start of a text file.
// Invalid UTF-8 is dropped and the result trimmed; an empty string means nothing usable.
func ReadSnippet(path string, maxRunes int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	buf, err := io.ReadAll(io.LimitReader(f, int64(maxRunes*utf8.UTFMax)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	text := strings.ToValidUTF8(string(buf), "")
	if utf8.RuneCountInString(text) > maxRunes {
		text = string([]rune(text)[:maxRunes])
	}

	return strings.TrimSpace(text), nil
}
