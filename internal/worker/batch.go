package worker

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/filesort/internal/model"
)

// Classifier decides a category for one file
type Classifier interface {
	ClassifyPath(ctx context.Context, path string) (*model.Classification, error)
}

// ClassifyJob represents one file to classify
type ClassifyJob struct {
	Index      int
	Path       string
	Classifier Classifier
}

// Execute executes the classify job
func (j *ClassifyJob) Execute(ctx context.Context) Result {
	classification, err := j.Classifier.ClassifyPath(ctx, j.Path)
	return &ClassifyResult{
		Index:          j.Index,
		Path:           j.Path,
		Classification: classification,
		Error:          err,
	}
}

// ClassifyResult represents the result of a classify job
type ClassifyResult struct {
	Index          int                   `json:"-"`
	Path           string                `json:"path"`
	Classification *model.Classification `json:"classification,omitempty"`
	Error          error                 `json:"-"`
}

// GetError returns the error from the classify result
func (r *ClassifyResult) GetError() error {
	return r.Error
}

// BatchProcessor classifies many files concurrently
type BatchProcessor struct {
	classifier  Classifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(classifier Classifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		classifier:  classifier,
		concurrency: concurrency,
	}
}

// ProcessPaths classifies paths concurrently; results follow input order
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ClassifyResult {
	if len(paths) == 0 {
		return []*ClassifyResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, path := range paths {
		job := &ClassifyJob{
			Index:      i,
			Path:       path,
			Classifier: b.classifier,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	ordered := make([]*ClassifyResult, len(paths))
	for _, result := range results {
		r := result.(*ClassifyResult)
		ordered[r.Index] = r
	}

	// jobs dropped by cancellation still get a result
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &ClassifyResult{Index: i, Path: paths[i], Error: err}
		}
	}

	return ordered
}

// ProcessDir classifies the regular files in dir
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string, recursive bool) ([]*ClassifyResult, error) {
	paths, err := ListFiles(dir, recursive)
	if err != nil {
		return nil, err
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ProcessFile reads paths from a file and classifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ClassifyResult, error) {
	paths, err := ReadPathsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ListFiles returns the regular files under dir in lexical order.
// Hidden files and directories are skipped.
func ListFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	// WalkDir does not follow a symlinked root
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			paths = append(paths, filepath.Join(dir, rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return paths, nil
}

// IsHidden reports whether a file name is a dot-file
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ReadPathsFromFile reads paths from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate paths
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
