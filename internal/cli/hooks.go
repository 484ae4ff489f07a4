package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/acquire/internal/logger"
	"github.com/glorpus-work/acquire/pkg/errors"
	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/glorpus-work/acquire/pkg/hooks"
	"github.com/spf13/cobra"
)

var hookTypes = []hooks.HookType{hooks.PostFetch, hooks.PostUpdate, hooks.AuthFailure}

// NewHooksCmd creates the hooks command with subcommands.
func NewHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage acquisition hooks",
		Long:  "List, create and try out the Tengo scripts run on post-fetch, post-update and auth-failure",
	}

	cmd.AddCommand(
		newHooksListCmd(),
		newHooksTemplateCmd(),
		newHooksRunCmd(),
	)

	return cmd
}

func newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which hooks are installed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, dir, err := loadHooks()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Hooks directory: %s\n", dir)
			for _, t := range hookTypes {
				state := "not installed"
				if manager.HasHook(t) {
					state = "installed"
				}
				_, _ = fmt.Fprintf(out, "  %-13s %s\n", t, state)
			}
			return nil
		},
	}
}

func newHooksTemplateCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "template TYPE",
		Short: "Print or install a hook template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType := hooks.HookType(args[0])
			if !knownHook(hookType) {
				return hooks.ErrUnsupportedHookEvent(args[0])
			}
			template := hooks.HookTemplate(hookType)
			if !write {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), template)
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Hooks.Dir, string(hookType)+".tengo")
			if fsutil.FileExists(path) {
				return fmt.Errorf("hook %s already exists", path)
			}
			if err := os.MkdirAll(cfg.Hooks.Dir, fsutil.DirModeDefault); err != nil {
				return errors.Wrap(err, "failed to create hooks directory")
			}
			if err := os.WriteFile(path, []byte(template+"\n"), fsutil.FileModeDefault); err != nil {
				return errors.Wrap(err, "failed to write hook")
			}
			logger.Success("Hook template written", logger.Fields{"path": path})
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "write the template into the hooks directory")
	return cmd
}

func newHooksRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run EVENT [KEY=VALUE...]",
		Short: "Run an installed hook with the given variables",
		Long: `Run the hook of EVENT once, outside of an acquisition session. Variables are
passed as KEY=VALUE pairs, for example uri=http://deb.example.org/debian kind=index.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := loadHooks()
			if err != nil {
				return err
			}
			vars := make(map[string]interface{}, len(args)-1)
			for _, arg := range args[1:] {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid variable %q, expected KEY=VALUE", arg)
				}
				vars[key] = value
			}
			if err := manager.Run(args[0], vars); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s hook finished\n", args[0])
			return nil
		},
	}
}

func loadHooks() (*hooks.Manager, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	manager := hooks.NewHookManager()
	if err := hooks.LoadHooksFromDir(manager, cfg.Hooks.Dir); err != nil {
		return nil, "", err
	}
	return manager, cfg.Hooks.Dir, nil
}

func knownHook(t hooks.HookType) bool {
	for _, known := range hookTypes {
		if t == known {
			return true
		}
	}
	return false
}
