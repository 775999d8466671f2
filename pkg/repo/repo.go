package repo

import (
	"errors"

	"go.uber.org/zap"

	"github.com/odvcencio/shale/pkg/object"
)

var (
	// ErrNotRepository is returned by Open when no .git directory encloses
	// the given path.
	ErrNotRepository = errors.New("not a git repository")
	// ErrUnsupportedFormat is returned by Open for a repository whose
	// core.repositoryformatversion is not 0.
	ErrUnsupportedFormat = errors.New("unsupported repository format")
)

// Repo represents an opened repository.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store

	logger *zap.Logger
}

// Option configures a Repo opened by Init or Open.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	storeOpts []object.StoreOption
}

// WithLogger sets the logger used by the repository and its store.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCacheSize sets the object store's read cache size.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, object.WithCacheSize(n))
	}
}

// WithCompressionLevel sets the zlib level for newly written objects.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, object.WithCompressionLevel(level))
	}
}

func newRepo(rootDir, gitDir string, opts []Option) *Repo {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	storeOpts := append([]object.StoreOption{object.WithLogger(o.logger.Named("store"))}, o.storeOpts...)
	return &Repo{
		RootDir: rootDir,
		GitDir:  gitDir,
		Store:   object.NewStore(gitDir, storeOpts...),
		logger:  o.logger,
	}
}
