package pipeline

import (
	"context"
	"log/slog"

	"github.com/consentbase/consentdb/pkg/types"
)

// CustomFn replaces the adapter call for a single-record write. A non-nil
// result is used as the operation's outcome and the adapter is skipped.
type CustomFn func(ctx context.Context, data types.Record) (types.Record, error)

// CustomManyFn replaces the adapter call for a many-record write.
type CustomManyFn func(ctx context.Context, change types.Record) ([]types.Record, error)

type config struct {
	custom      CustomFn
	customMany  CustomManyFn
	executeMain bool
}

// Option configures a single pipeline invocation.
type Option func(*config)

// WithCustom installs fn as the operation body. When executeMainFn is
// true and fn returns nil, the adapter call still runs as a fallback;
// when false, the adapter is never called.
func WithCustom(fn CustomFn, executeMainFn bool) Option {
	return func(c *config) {
		c.custom = fn
		c.executeMain = executeMainFn
	}
}

// WithCustomMany is WithCustom for UpdateManyWithHooks.
func WithCustomMany(fn CustomManyFn, executeMainFn bool) Option {
	return func(c *config) {
		c.customMany = fn
		c.executeMain = executeMainFn
	}
}

func buildConfig(opts []Option) config {
	cfg := config{executeMain: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Engine drives hook execution around an adapter's write operations.
type Engine struct {
	adapter types.Adapter
	reg     *Registry
	log     *slog.Logger
}

func NewEngine(adapter types.Adapter, reg *Registry, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{adapter: adapter, reg: reg, log: log}
}

// Adapter exposes the underlying adapter for reads, which bypass hooks.
func (e *Engine) Adapter() types.Adapter { return e.adapter }

// CreateWithHooks runs the create pipeline. It returns nil, nil when a
// before-hook aborts; callers must treat nil as "did not happen".
func (e *Engine) CreateWithHooks(ctx context.Context, model string, data types.Record, opts ...Option) (types.Record, error) {
	cfg := buildConfig(opts)
	hooks := e.reg.hooks(model, OpCreate)

	data, aborted, err := e.runBefore(ctx, hooks, data)
	if err != nil {
		return nil, err
	}
	if aborted {
		e.log.Debug("create aborted by hook", "model", model)
		return nil, nil
	}

	var result types.Record
	if cfg.custom != nil {
		result, err = cfg.custom(ctx, data)
		if err != nil {
			return nil, err
		}
	}
	if result == nil && cfg.executeMain {
		result, err = e.adapter.Create(ctx, model, data)
		if err != nil {
			return nil, err
		}
	}
	if result == nil {
		return nil, nil
	}
	if err := e.runAfter(ctx, hooks, result); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateWithHooks runs the update pipeline against the first record
// matching where. Nil without error means aborted or nothing matched.
func (e *Engine) UpdateWithHooks(ctx context.Context, model string, where types.Where, change types.Record, opts ...Option) (types.Record, error) {
	cfg := buildConfig(opts)
	hooks := e.reg.hooks(model, OpUpdate)

	change, aborted, err := e.runBefore(ctx, hooks, change)
	if err != nil {
		return nil, err
	}
	if aborted {
		e.log.Debug("update aborted by hook", "model", model)
		return nil, nil
	}

	var result types.Record
	if cfg.custom != nil {
		result, err = cfg.custom(ctx, change)
		if err != nil {
			return nil, err
		}
	}
	if result == nil && cfg.executeMain {
		result, err = e.adapter.Update(ctx, model, where, change)
		if err != nil {
			return nil, err
		}
	}
	if result == nil {
		return nil, nil
	}
	if err := e.runAfter(ctx, hooks, result); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateManyWithHooks runs the update pipeline against every record
// matching where. After-hooks run once per persisted record.
func (e *Engine) UpdateManyWithHooks(ctx context.Context, model string, where types.Where, change types.Record, opts ...Option) ([]types.Record, error) {
	cfg := buildConfig(opts)
	hooks := e.reg.hooks(model, OpUpdate)

	change, aborted, err := e.runBefore(ctx, hooks, change)
	if err != nil {
		return nil, err
	}
	if aborted {
		e.log.Debug("updateMany aborted by hook", "model", model)
		return nil, nil
	}

	var results []types.Record
	if cfg.customMany != nil {
		results, err = cfg.customMany(ctx, change)
		if err != nil {
			return nil, err
		}
	}
	if results == nil && cfg.executeMain {
		results, err = e.adapter.UpdateMany(ctx, model, where, change)
		if err != nil {
			return nil, err
		}
	}
	for _, record := range results {
		if err := e.runAfter(ctx, hooks, record); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// runBefore feeds data through the before-hooks sequentially. Hooks run
// in registration order because each may depend on the previous hook's
// transformation. Hook errors are not caught; they propagate as-is.
func (e *Engine) runBefore(ctx context.Context, hooks *hookSet, data types.Record) (types.Record, bool, error) {
	if hooks == nil {
		return data, false, nil
	}
	for _, h := range hooks.before {
		res, err := h(ctx, data)
		if err != nil {
			return nil, false, err
		}
		switch res.kind {
		case kindAbort:
			return nil, true, nil
		case kindTransform:
			data = res.data
		}
	}
	return data, false, nil
}

func (e *Engine) runAfter(ctx context.Context, hooks *hookSet, record types.Record) error {
	if hooks == nil {
		return nil
	}
	for _, h := range hooks.after {
		if err := h(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
