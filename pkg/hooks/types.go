package hooks

// HookType names the acquisition event a hook runs on.
type HookType string

// Supported hook types.
const (
	PostFetch   HookType = "post-fetch"
	PostUpdate  HookType = "post-update"
	AuthFailure HookType = "auth-failure"
)

// Hook is a hook script with the event it runs on.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext is what a hook script can see.
type HookContext struct {
	Session     string
	URI         string
	Description string
	DestFile    string
	Kind        string
	ErrorText   string
	Bytes       int64
	Vars        map[string]interface{}
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the hook of the given type, if any.
	Execute(hookType HookType, ctx HookContext) error

	AddHook(hook Hook) error
	RemoveHook(hookType HookType) error
	HasHook(hookType HookType) bool
}
