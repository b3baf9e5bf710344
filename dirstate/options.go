package dirstate

import "runtime"

type config struct {
	workers    int
	ignoreFile string
	rules      []string
}

func defaultConfig() config {
	return config{
		workers:    runtime.GOMAXPROCS(0),
		ignoreFile: DefaultIgnoreFile,
	}
}

// ScanOption configures Scan.
type ScanOption func(*config)

// WithWorkers bounds the number of files digested at once. Values below one
// use a single worker.
func WithWorkers(n int) ScanOption {
	return func(c *config) { c.workers = max(n, 1) }
}

// WithIgnoreFile sets the ignore file name looked up in the scan root. An
// empty name disables the ignore file; the default rules still apply.
func WithIgnoreFile(name string) ScanOption {
	return func(c *config) { c.ignoreFile = name }
}

// WithIgnoreRules adds gitignore style rules on top of the ignore file.
func WithIgnoreRules(rules ...string) ScanOption {
	return func(c *config) { c.rules = append(c.rules, rules...) }
}
