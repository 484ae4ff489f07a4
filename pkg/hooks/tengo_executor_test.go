package hooks_test

import (
	"testing"

	"github.com/glorpus-work/acquire/pkg/hooks"
	"github.com/stretchr/testify/assert"
)

func TestTengoExecutor(t *testing.T) {
	executor := hooks.NewTengoExecutor()
	ctx := hooks.HookContext{
		Session:  "0b7c",
		URI:      "http://deb.example.org/debian/pool/main/f/foo/foo_1.0_amd64.deb",
		DestFile: "/var/cache/acquire/archives/foo_1.0_amd64.deb",
		Kind:     "archive",
		Vars: map[string]interface{}{
			"customVar": "customValue",
		},
	}

	t.Run("Execute script with return value", func(t *testing.T) {
		script := `// This is a valid script that does nothing`
		executor.AddScript(hooks.PostFetch, script)

		err := executor.Execute(hooks.PostFetch, ctx)
		assert.NoError(t, err, "Execute should not return an error for valid script")
	})

	t.Run("Execute script with error", func(t *testing.T) {
		script := `
			// This will cause a runtime error because non-existent-function doesn't exist
			non_existent_function()
		`
		executor.AddScript(hooks.AuthFailure, script)

		err := executor.Execute(hooks.AuthFailure, ctx)
		assert.Error(t, err, "Execute should return an error for invalid script")
	})

	t.Run("Execute non-existent script", func(t *testing.T) {
		err := executor.Execute("non-existent-hooks", ctx)
		assert.NoError(t, err, "Execute should not return an error for non-existent hooks")
	})

	t.Run("HasScript check", func(t *testing.T) {
		hookType := hooks.HookType("test-hooks")
		assert.False(t, executor.HasScript(hookType), "Should not have script before adding")

		executor.AddScript(hookType, "// test script")
		assert.True(t, executor.HasScript(hookType), "Should have script after adding")

		executor.RemoveScript(hookType)
		assert.False(t, executor.HasScript(hookType), "Should not have script after removal")
	})

	t.Run("Context variables are accessible", func(t *testing.T) {
		script := `
			err := ""
			if session != "0b7c" || kind != "archive" || destFile == "" || customVar != "customValue" {
				err = "context not set"
			}
		`
		executor.AddScript(hooks.PostUpdate, script)

		err := executor.Execute(hooks.PostUpdate, ctx)
		assert.NoError(t, err, "Context variables should be accessible in script")
	})

	t.Run("Script can use stdlib modules", func(t *testing.T) {
		script := `
			text := import("text")
			times := import("times")
			err := ""
			if !text.has_suffix(uri, ".deb") || times.time_year(times.now()) < 2000 {
				err = "not an archive"
			}
		`
		executor.AddScript(hooks.PostFetch, script)

		err := executor.Execute(hooks.PostFetch, ctx)
		assert.NoError(t, err, "stdlib modules should be importable")
	})

	t.Run("Byte count is a plain integer", func(t *testing.T) {
		executor.AddScript(hooks.PostUpdate, `
			err := ""
			if bytesFetched + 1 != 2049 {
				err = "unexpected byte count"
			}
		`)

		withBytes := ctx
		withBytes.Bytes = 2048
		assert.NoError(t, executor.Execute(hooks.PostUpdate, withBytes))
	})
}
