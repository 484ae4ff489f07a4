// Package hooks runs user scripts written in Tengo when the acquisition
// loop reports an event.
package hooks

import (
	"strconv"

	"github.com/glorpus-work/acquire/internal/logger"
	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
)

// Manager keeps one script per hook type. It implements acquire.HookRunner.
type Manager struct {
	executor *TengoExecutor
}

// NewHookManager returns an empty manager.
func NewHookManager() *Manager {
	return &Manager{executor: NewTengoExecutor()}
}

// Execute runs the hook of the given type, if one is loaded.
func (m *Manager) Execute(hookType HookType, ctx HookContext) error {
	return m.executor.Execute(hookType, ctx)
}

// AddHook adds or replaces a hook.
func (m *Manager) AddHook(hook Hook) error {
	if hook.Type == "" {
		return pkgerrors.ErrHookTypeEmpty
	}
	m.executor.AddScript(hook.Type, hook.Content)
	return nil
}

// RemoveHook removes the hook of the given type.
func (m *Manager) RemoveHook(hookType HookType) error {
	if hookType == "" {
		return pkgerrors.ErrHookTypeEmpty
	}
	m.executor.RemoveScript(hookType)
	return nil
}

// HasHook reports whether a hook of the given type is loaded.
func (m *Manager) HasHook(hookType HookType) bool {
	return m.executor.HasScript(hookType)
}

// Run executes the hook for an acquisition event. Known variables become
// context fields, the others are passed through as script globals.
func (m *Manager) Run(event string, vars map[string]interface{}) error {
	hookType := HookType(event)
	switch hookType {
	case PostFetch, PostUpdate, AuthFailure:
	default:
		return ErrUnsupportedHookEvent(event)
	}
	if !m.HasHook(hookType) {
		return nil
	}

	ctx := HookContext{Vars: make(map[string]interface{})}
	for k, v := range vars {
		switch k {
		case "session":
			ctx.Session, _ = v.(string)
		case "uri":
			ctx.URI, _ = v.(string)
		case "description":
			ctx.Description, _ = v.(string)
		case "dest_file":
			ctx.DestFile, _ = v.(string)
		case "kind":
			ctx.Kind, _ = v.(string)
		case "error":
			ctx.ErrorText, _ = v.(string)
		case "bytesFetched":
			switch n := v.(type) {
			case int64:
				ctx.Bytes = n
			case int:
				ctx.Bytes = int64(n)
			case string:
				ctx.Bytes, _ = strconv.ParseInt(n, 10, 64)
			}
		default:
			ctx.Vars[k] = v
		}
	}

	logger.Debug("Running hook", logger.Fields{"event": event, "uri": ctx.URI})
	return m.Execute(hookType, ctx)
}
