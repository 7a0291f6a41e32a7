package toolchain

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dontdude/regexbench/internal/domain"
)

// VSWherePath is the Visual Studio installer registry query tool.
var VSWherePath = `C:\Program Files (x86)\Microsoft Visual Studio\Installer\vswhere.exe`

type msvcEnvironment struct {
	clExe   string
	overlay map[string]string
}

func (r *Resolver) msvcEnvironment(ctx context.Context) (*msvcEnvironment, error) {
	if res := r.msvc.Load(); res != nil {
		return res.env, res.err
	}
	env, err := r.computeMSVC(ctx)
	res := &msvcResolution{env: env, err: err}
	if !r.msvc.CompareAndSwap(nil, res) {
		res = r.msvc.Load()
	}
	return res.env, res.err
}

// vcvarsCandidates asks vswhere for Visual Studio installations and keeps
// those that ship the host environment script.
func (r *Resolver) vcvarsCandidates(ctx context.Context) ([]string, error) {
	script, err := r.platform.vcvarsScript()
	if err != nil {
		return nil, err
	}
	out, err := r.run(ctx, r.tempDir, nil, VSWherePath, "-sort", "-prerelease", "-property", "installationPath")
	if err != nil {
		return nil, fmt.Errorf("query visual studio installations: %w", err)
	}

	var scripts []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		bat := filepath.Join(line, "VC", "Auxiliary", "Build", script+".bat")
		if info, err := os.Stat(bat); err == nil && !info.IsDir() {
			scripts = append(scripts, bat)
		}
	}
	return scripts, nil
}

// computeMSVC runs the picked vcvars script between two environment dumps
// and keeps every variable it added or changed, together with the cl.exe it
// put on PATH.
func (r *Resolver) computeMSVC(ctx context.Context) (*msvcEnvironment, error) {
	scripts, err := r.vcvarsCandidates(ctx)
	if err != nil {
		return nil, err
	}
	picked := r.pick(domain.FamilyMSVC, scripts)
	if picked == "" {
		return nil, domain.ErrToolchainUnavailable
	}

	dir, err := os.MkdirTemp(r.tempDir, "regex-vs")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	var (
		batFile    = filepath.Join(dir, "env.bat")
		beforeFile = filepath.Join(dir, "before.txt")
		afterFile  = filepath.Join(dir, "after.txt")
		clExeFile  = filepath.Join(dir, "cl.txt")
	)
	lines := []string{
		fmt.Sprintf(`set > "%s"`, beforeFile),
		fmt.Sprintf(`call "%s"`, picked),
		fmt.Sprintf(`set > "%s"`, afterFile),
		fmt.Sprintf(`where cl.exe > "%s"`, clExeFile),
	}
	if err := os.WriteFile(batFile, []byte(strings.Join(lines, "\r\n")+"\r\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write environment script: %w", err)
	}

	output, err := r.run(ctx, dir, nil, "cmd.exe", "/C", batFile)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", picked, err)
	}

	before, errBefore := readNonEmpty(beforeFile)
	after, errAfter := readNonEmpty(afterFile)
	where, errWhere := readNonEmpty(clExeFile)
	if err := errors.Join(errBefore, errAfter, errWhere); err != nil {
		return nil, fmt.Errorf("%s did not produce a compiler environment: %w\n%s", picked, err, output)
	}

	clExe := firstLine(where)
	if info, err := os.Stat(clExe); err != nil || info.IsDir() {
		return nil, fmt.Errorf("cl.exe reported at %q is not runnable", clExe)
	}
	return &msvcEnvironment{
		clExe:   clExe,
		overlay: DiffEnvironment(strings.Split(before, "\n"), strings.Split(after, "\n")),
	}, nil
}

// DiffEnvironment returns the variables of after that are new or whose
// value differs from before. Lines are KEY=VALUE; lines without '=' are
// ignored and both key and value are trimmed.
func DiffEnvironment(before, after []string) map[string]string {
	old := parseEnvLines(before)
	diff := make(map[string]string)
	for key, value := range parseEnvLines(after) {
		if prev, ok := old[key]; ok && prev == value {
			continue
		}
		diff[key] = value
	}
	return diff
}

func parseEnvLines(lines []string) map[string]string {
	env := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		env[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return env
}

func readNonEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s is empty", filepath.Base(path))
	}
	return string(data), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
