package core

import "github.com/joeycumines/futurecore/executor"

// coreOptions holds configuration applied at Core construction.
type coreOptions struct {
	executor executor.Executor
	priority int
	logger   Logger
}

// Option configures a Core at construction time.
type Option interface {
	applyCore(*coreOptions)
}

type optionFunc func(*coreOptions)

func (f optionFunc) applyCore(o *coreOptions) { f(o) }

// WithExecutor binds the executor (and its priority hint) a Core
// should dispatch its callback on, equivalent to calling SetExecutor
// immediately after construction.
func WithExecutor(e executor.Executor, priority int) Option {
	return optionFunc(func(o *coreOptions) {
		o.executor = e
		o.priority = priority
	})
}

// WithLogger overrides the package-default Logger (see
// [SetStructuredLogger]) for a single Core.
func WithLogger(l Logger) Option {
	return optionFunc(func(o *coreOptions) {
		o.logger = l
	})
}

func resolveOptions(opts []Option) *coreOptions {
	cfg := &coreOptions{
		priority: -1,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyCore(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = getGlobalLogger()
	}
	return cfg
}
