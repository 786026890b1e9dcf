package paper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/studyhub/internal/logger"
)

var (
	ErrManifest       = errors.New("question bank manifest unavailable")
	ErrInvalidDataset = errors.New("invalid standard or subject")
)

const ManifestFile = "manifest.json"

// Bank is the read side of the question bank. storage.FSStore satisfies it.
type Bank interface {
	Get(key string) (io.ReadCloser, error)
}

// Manifest lists the chapter files of one subject, in load order.
type Manifest struct {
	Chapters []string `json:"chapters"`
}

// Loader builds subject pools from a Bank. It keeps no state between calls.
type Loader struct {
	Bank Bank
	Log  *logger.Logger
	// Parallel bounds concurrent chapter reads; <= 1 reads sequentially.
	Parallel int
}

func NewLoader(b Bank, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{Bank: b, Log: log, Parallel: 4}
}

// LoadPool returns every question of standard/subject in manifest order.
// Only a missing or malformed manifest is an error; bad chapters are skipped.
func (l *Loader) LoadPool(ctx context.Context, standard, subject string) ([]Question, error) {
	if !validSegment(standard) || !validSegment(subject) {
		return nil, fmt.Errorf("%w: %q/%q", ErrInvalidDataset, standard, subject)
	}
	base := path.Join(standard, subject)

	m, err := l.readManifest(base)
	if err != nil {
		return nil, err
	}

	chapters := make([][]Question, len(m.Chapters))
	g, gctx := errgroup.WithContext(ctx)
	if l.Parallel > 1 {
		g.SetLimit(l.Parallel)
	} else {
		g.SetLimit(1)
	}
	for i, file := range m.Chapters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			qs, err := l.readChapter(base, file)
			if err != nil {
				l.Log.Warn("skipping chapter", "standard", standard, "subject", subject, "file", file, "error", err)
				return nil
			}
			chapters[i] = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 0
	for _, c := range chapters {
		n += len(c)
	}
	pool := make([]Question, 0, n)
	for _, c := range chapters {
		pool = append(pool, c...)
	}
	return pool, nil
}

func (l *Loader) readManifest(base string) (Manifest, error) {
	rc, err := l.Bank.Get(path.Join(base, ManifestFile))
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %w", ErrManifest, base, err)
	}
	defer rc.Close()
	var m Manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %w", ErrManifest, base, err)
	}
	return m, nil
}

func (l *Loader) readChapter(base, file string) ([]Question, error) {
	if !validSegment(file) {
		return nil, fmt.Errorf("bad chapter name %q", file)
	}
	rc, err := l.Bank.Get(path.Join(base, file))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var raw []json.RawMessage
	if err := json.NewDecoder(rc).Decode(&raw); err != nil {
		return nil, err
	}
	qs := make([]Question, 0, len(raw))
	for i, r := range raw {
		var q Question
		if err := json.Unmarshal(r, &q); err != nil {
			l.Log.Warn("skipping question", "chapter", path.Join(base, file), "index", i, "error", err)
			continue
		}
		qs = append(qs, q)
	}
	return qs, nil
}

// validSegment reports whether s names a single entry inside a directory.
func validSegment(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
