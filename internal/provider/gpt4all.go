package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/danielolaszy/rh-issue/internal/config"
	"github.com/danielolaszy/rh-issue/internal/logging"
)

const defaultGPT4AllModel = "Meta-Llama-3-8B-Instruct.Q4_0.gguf"

// GPT4All runs a locally installed model through the GPT4All command-line
// runner. The runner is an optional dependency: its absence is only detected,
// and reported, when Improve is called.
type GPT4All struct {
	binary string
	model  string

	// lookPath resolves binary; replaced in tests.
	lookPath func(string) (string, error)
}

func NewGPT4All(cfg config.AIConfig) *GPT4All {
	binary := cfg.GPT4AllBinary
	if binary == "" {
		binary = "gpt4all"
	}
	model := cfg.Model
	if model == "" {
		model = defaultGPT4AllModel
	}
	return &GPT4All{binary: binary, model: model, lookPath: exec.LookPath}
}

func (p *GPT4All) Improve(ctx context.Context, prompt, text string) (string, error) {
	path, err := p.lookPath(p.binary)
	if err != nil {
		return "", &Error{
			Dependency: p.binary,
			Hint:       "install the GPT4All command-line runner or point JIRA_AI_GPT4ALL_BINARY at it",
			Err:        err,
		}
	}

	logging.Debug("running local model", "binary", path, "model", p.model)

	cmd := exec.CommandContext(ctx, path, "--model", p.model)
	cmd.Stdin = strings.NewReader(prompt + "\n\n" + text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s failed: %w: %s", p.binary, err, msg)
		}
		return "", fmt.Errorf("%s failed: %w", p.binary, err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", errors.New("empty response from local model")
	}
	return out, nil
}
