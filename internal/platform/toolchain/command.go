package toolchain

import (
	"context"
	"os"
	"os/exec"
)

// CommandRunner runs a program to completion and returns its merged
// standard output and error. env, when non-nil, replaces the process
// environment. A non-zero exit status is reported only through the output;
// callers decide success by other means.
type CommandRunner func(ctx context.Context, dir string, env []string, name string, args ...string) (string, error)

// ExecRunner is the CommandRunner backed by os/exec.
func ExecRunner(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	out, err := cmd.CombinedOutput()
	if _, ok := err.(*exec.ExitError); ok {
		err = nil
	}
	return string(out), err
}

// Environ merges overlay on top of the current process environment.
func Environ(overlay map[string]string) []string {
	if len(overlay) == 0 {
		return nil
	}
	env := os.Environ()
	for k, v := range overlay {
		env = append(env, k+"="+v)
	}
	return env
}
