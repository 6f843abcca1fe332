package plugins

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/danielolaszy/rh-issue/internal/plugin"
)

// openURL hands url to the desktop's browser launcher. The launcher is not
// waited for.
var openURL = func(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

func init() {
	register(func() plugin.Plugin {
		return &openIssue{meta: meta{
			name:     "open-issue",
			category: plugin.CategoryUtilities,
			help:     "Open an issue in the web browser",
			examples: []string{"rh-issue open-issue AAP-123"},
		}}
	})
}

type openIssue struct {
	meta
	local
}

func (c *openIssue) Arguments(spec *plugin.ArgSpec) {
	spec.Key("issue-key", "issue to open")
}

func (c *openIssue) Execute(ctx context.Context, env *plugin.Env, args *plugin.Args) bool {
	url := browseURL(env, args.String("issue-key"))
	if url == "" {
		env.Out.Fail("JIRA_URL is not set")
		return false
	}
	env.Out.Info("Opening %s", url)
	if err := openURL(url); err != nil {
		env.Out.Fail("could not start a browser: %v", err)
		return false
	}
	return true
}
