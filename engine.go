package nxsearch

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Option configures an Engine at Open time. Indexes take their logger
// from the Engine that opens them.
type Option func(*Engine)

// WithLogger overrides the engine's structured logger. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine is the top-level handle over a base directory of indexes
// (§6.1, §6.5). It is safe for concurrent use by multiple goroutines
// for lifecycle operations; per-Index write operations are the
// caller's responsibility to serialize (§5).
type Engine struct {
	mu      sync.Mutex
	baseDir string
	log     *slog.Logger
	lastErr *Error
}

// Open constructs an Engine rooted at basedir, falling back to the
// NXS_BASEDIR environment variable when basedir is empty (§6.5).
func Open(basedir string, opts ...Option) (*Engine, error) {
	e := &Engine{log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if basedir == "" {
		basedir = os.Getenv("NXS_BASEDIR")
	}
	if basedir == "" {
		return nil, e.fail(errInvalid(nil, "no base directory given and NXS_BASEDIR is not set"))
	}
	e.baseDir = basedir
	if err := os.MkdirAll(filepath.Join(basedir, "data"), 0o755); err != nil {
		return nil, e.fail(errSystem(err, "mkdir %s", basedir))
	}
	e.log.Info("nxsearch engine opened", "basedir", basedir)
	return e, nil
}

// Close releases engine-level resources. Open indexes must be closed
// individually first.
func (e *Engine) Close() error {
	e.log.Info("nxsearch engine closed", "basedir", e.baseDir)
	return nil
}

// LastError returns the error of the most recently failed Engine call
// (Open, IndexCreate, IndexOpen, IndexDestroy), per the §7 propagation
// policy (`get_error`). Errors returned by Index methods (Add, Remove,
// Search, Close) are not recorded here.
func (e *Engine) LastError() *Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Engine) fail(err *Error) *Error {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	return err
}

func validateIndexName(name string) error {
	if name == "" {
		return errInvalid(nil, "empty index name")
	}
	if name == "." || name == ".." {
		return errInvalid(nil, "index name %q is reserved", name)
	}
	if strings.ContainsRune(name, '/') {
		return errInvalid(nil, "index name %q must not contain '/'", name)
	}
	for _, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
		if !ok {
			return errInvalid(nil, "index name %q contains invalid character %q", name, r)
		}
	}
	return nil
}
