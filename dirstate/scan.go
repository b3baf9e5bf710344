package dirstate

import (
	"context"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/sync/errgroup"

	"github.com/breezy-team/breezy-sub003/compact"
)

// file is a regular file found by the walk.
type file struct {
	rel  string // slash separated, relative to the root
	size int64
}

// Scan walks root and returns a State holding one entry per regular file
// that is not ignored. File contents are digested concurrently.
func Scan(ctx context.Context, root string, opts ...ScanOption) (*State, error) {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "scan")
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotDir, "scan %s", root)
	}

	m, err := newMatcher(root, c.ignoreFile, c.rules)
	if err != nil {
		return nil, err
	}

	files, err := walk(ctx, root, m)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"root":    root,
		"files":   len(files),
		"workers": c.workers,
	}).Debug("dirstate scan")

	entries := make([]Entry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := newEntry(root, f)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, e := range entries {
			if e.Key != nil {
				e.Key.Release()
				e.ID.Release()
			}
		}
		return nil, err
	}

	slices.SortFunc(entries, func(a, b Entry) int { return compact.Compare(a.Key, b.Key) })

	return &State{root: root, entries: entries}, nil
}

// walk lists the regular files under root, skipping ignored paths.
func walk(ctx context.Context, root string, m *matcher) ([]file, error) {
	var files []file

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if m.matches(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, file{rel: rel, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}

	return files, nil
}

// newEntry digests f and interns its key and identity.
func newEntry(root string, f file) (Entry, error) {
	rev, err := digestFile(filepath.Join(root, filepath.FromSlash(f.rel)))
	if err != nil {
		return Entry{}, err
	}

	dir, base := path.Split(f.rel)
	dir = strings.TrimSuffix(dir, "/")

	key, err := compact.Intern(dir, base)
	if err != nil {
		return Entry{}, err
	}
	id, err := compact.Intern(fileID(f.rel), rev)
	if err != nil {
		key.Release()
		return Entry{}, err
	}

	return Entry{Key: key, ID: id, Size: f.size}, nil
}

// digestFile returns the hex BLAKE2s-256 digest of the file contents.
func digestFile(name string) (string, error) {
	fh, err := os.Open(name)
	if err != nil {
		return "", errors.Wrap(err, "digest")
	}
	defer fh.Close()

	h, err := blake2s.New256(nil)
	if err != nil {
		return "", errors.Wrap(err, "digest")
	}
	if _, err := io.Copy(h, fh); err != nil {
		return "", errors.Wrapf(err, "digest %s", name)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// fileID derives a stable file id from the path: the lowercased basename
// followed by a short digest of the full path, so equal basenames in
// different directories get distinct ids.
func fileID(rel string) string {
	sum := blake2s.Sum256([]byte(rel))
	base := strings.ToLower(path.Base(rel))
	base = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return '_'
		}
		return r
	}, base)
	return base + "-" + hex.EncodeToString(sum[:8])
}
