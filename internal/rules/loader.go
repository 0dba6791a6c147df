package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/filesort/internal/model"
)

type ruleEntry struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// LoadFile reads user keyword rules from a YAML list of {keyword, category}
func LoadFile(path string) ([]KeywordRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML rule list
func Parse(data []byte) ([]KeywordRule, error) {
	var entries []ruleEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	rules := make([]KeywordRule, 0, len(entries))
	for i, entry := range entries {
		keyword := strings.ToLower(strings.TrimSpace(entry.Keyword))
		if keyword == "" {
			return nil, fmt.Errorf("rule %d: empty keyword", i+1)
		}
		category, err := model.ParseCategory(entry.Category)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, keyword, err)
		}
		rules = append(rules, KeywordRule{Keyword: keyword, Category: category})
	}

	return rules, nil
}

// Merge overlays user rules on base rules.
// A user rule for an existing keyword replaces that rule's category in place;
// new keywords are appended after the base rules in file order.
func Merge(base, user []KeywordRule) []KeywordRule {
	merged := make([]KeywordRule, len(base))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, r := range merged {
		index[r.Keyword] = i
	}

	for _, r := range user {
		if i, ok := index[r.Keyword]; ok {
			merged[i].Category = r.Category
			continue
		}
		index[r.Keyword] = len(merged)
		merged = append(merged, r)
	}

	return merged
}
