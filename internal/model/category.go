package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned when a value is not one of the known categories
var ErrInvalidCategory = errors.New("invalid category")

// Category is the semantic bucket a file is sorted into
type Category string

const (
	CategoryImages      Category = "Images"
	CategoryDocuments   Category = "Documents"
	CategoryVideos      Category = "Videos"
	CategoryAudio       Category = "Audio"
	CategoryArchives    Category = "Archives"
	CategoryCode        Category = "Code"
	CategoryExecutables Category = "Executables"
	CategoryFonts       Category = "Fonts"
	CategoryOther       Category = "Other"
)

// Categories lists every category in canonical order.
// The order is significant: score ties and free-text matches are resolved
// in favour of the category that appears first here.
var Categories = []Category{
	CategoryImages,
	CategoryDocuments,
	CategoryVideos,
	CategoryAudio,
	CategoryArchives,
	CategoryCode,
	CategoryExecutables,
	CategoryFonts,
	CategoryOther,
}

// Valid reports whether c is a member of the closed category set
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a user-supplied name into a Category (case-insensitive, exact name)
func ParseCategory(s string) (Category, error) {
	name := strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(name, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrInvalidCategory, s, strings.Join(CategoryNames(), ", "))
}

// CategoryNames returns the category names in canonical order
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return names
}
