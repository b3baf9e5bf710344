package dirstate

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnoreFile is the name of the per tree ignore file read by Scan.
const DefaultIgnoreFile = ".bzrignore"

// defaultRules always apply so control directories are never scanned.
var defaultRules = []string{
	".bzr",
	".git",
}

// matcher decides if a path relative to the scan root is skipped.
type matcher struct {
	ignorer *gitignore.GitIgnore
}

// newMatcher compiles the default rules, any extra rules and the ignore file
// under root if it exists.
func newMatcher(root, file string, extra []string) (*matcher, error) {
	rules := append(append([]string(nil), defaultRules...), extra...)

	if file == "" {
		return &matcher{ignorer: gitignore.CompileIgnoreLines(rules...)}, nil
	}

	path := filepath.Join(root, file)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &matcher{ignorer: gitignore.CompileIgnoreLines(rules...)}, nil
		}
		return nil, errors.Wrapf(err, "stat ignore file %s", path)
	}

	ignorer, err := gitignore.CompileIgnoreFileAndLines(path, rules...)
	if err != nil {
		return nil, errors.Wrapf(err, "compile ignore file %s", path)
	}
	return &matcher{ignorer: ignorer}, nil
}

// matches takes a slash separated path relative to the root.
func (m *matcher) matches(rel string) bool {
	if m == nil || m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(rel)
}
