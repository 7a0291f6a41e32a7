package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontdude/regexbench/internal/domain"
)

// pickByName picks the first candidate whose file name is exactly name.
type pickByName struct {
	name string
}

func (p pickByName) Name() string { return "picker" }

func (p pickByName) PickCompiler(_ domain.CompilerFamily, candidates []string) string {
	for _, c := range candidates {
		if filepath.Base(c) == p.name {
			return c
		}
	}
	return ""
}

func touch(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
}

func fakePath(t *testing.T) (string, string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not meaningful on windows")
	}
	first := t.TempDir()
	second := t.TempDir()
	touch(t, filepath.Join(first, "gcc-ar"), 0o755)
	touch(t, filepath.Join(first, "clang-format"), 0o755)
	touch(t, filepath.Join(first, "clang"), 0o644)
	touch(t, filepath.Join(first, "gcc-13"), 0o755)
	touch(t, filepath.Join(second, "gcc"), 0o755)
	touch(t, filepath.Join(second, "clang++-20"), 0o755)
	touch(t, filepath.Join(second, "g++"), 0o755)
	pathList := strings.Join([]string{first, filepath.Join(first, "missing"), second}, string(os.PathListSeparator))
	return pathList, first, second
}

func unixResolver(pathList string, providers ...domain.Provider) *Resolver {
	return NewResolver(providers,
		WithPlatform(Platform{OS: "linux", Arch: "amd64"}),
		WithGetenv(func(key string) string {
			if key == "PATH" {
				return pathList
			}
			return ""
		}),
	)
}

func TestUnixCandidates(t *testing.T) {
	pathList, first, second := fakePath(t)
	r := unixResolver(pathList)

	assert.Equal(t, []string{
		filepath.Join(first, "gcc-13"),
		filepath.Join(second, "gcc"),
	}, r.unixCandidates(domain.LanguageC))

	assert.Equal(t, []string{
		filepath.Join(second, "clang++-20"),
		filepath.Join(second, "g++"),
	}, r.unixCandidates(domain.LanguageCpp))
}

func TestResolveFallsBackToFirstCandidate(t *testing.T) {
	pathList, first, _ := fakePath(t)
	r := unixResolver(pathList)

	desc, err := r.Resolve(context.Background(), domain.LanguageC)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "gcc-13"), desc.Path)
	assert.Equal(t, domain.FamilyUnix, desc.Family)
	assert.Equal(t, domain.LanguageC, desc.Language)
	assert.Nil(t, desc.Environ())
}

func TestResolveHonoursPickers(t *testing.T) {
	pathList, _, second := fakePath(t)
	r := unixResolver(pathList, pickByName{name: "nothing"}, pickByName{name: "g++"})

	desc, err := r.Resolve(context.Background(), domain.LanguageCpp)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "g++"), desc.Path)
}

func TestResolvePickerIsNotFooledBySimilarNames(t *testing.T) {
	pathList, _, second := fakePath(t)
	// clang++-20 is listed before g++ and contains "g++".
	r := unixResolver(pathList, pickByName{name: "g++"})

	desc, err := r.Resolve(context.Background(), domain.LanguageCpp)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "g++"), desc.Path)

	r = unixResolver(pathList, pickByName{name: "clang++-20"})
	desc, err = r.Resolve(context.Background(), domain.LanguageCpp)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "clang++-20"), desc.Path)
}

func TestResolveIsCached(t *testing.T) {
	pathList, _, _ := fakePath(t)
	r := unixResolver(pathList)

	a, err := r.Resolve(context.Background(), domain.LanguageCpp)
	require.NoError(t, err)
	b, err := r.Resolve(context.Background(), domain.LanguageCpp)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.EqualValues(t, 1, r.Discoveries())

	_, err = r.Resolve(context.Background(), domain.LanguageC)
	require.NoError(t, err)
	assert.EqualValues(t, 2, r.Discoveries())
}

func TestResolveConcurrentCallersConverge(t *testing.T) {
	pathList, _, _ := fakePath(t)
	r := unixResolver(pathList)

	const callers = 16
	got := make([]*Descriptor, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			desc, err := r.Resolve(context.Background(), domain.LanguageCpp)
			assert.NoError(t, err)
			got[i] = desc
		}()
	}
	wg.Wait()

	for _, desc := range got {
		assert.Same(t, got[0], desc)
	}
}

func TestResolveFailureIsCachedAndNamesHook(t *testing.T) {
	r := unixResolver(t.TempDir())

	_, err := r.Resolve(context.Background(), domain.LanguageCpp)
	require.ErrorIs(t, err, domain.ErrToolchainUnavailable)
	var tcErr *domain.ToolchainError
	require.ErrorAs(t, err, &tcErr)
	assert.Equal(t, "CompilerPicker", tcErr.Hook)

	_, err = r.Resolve(context.Background(), domain.LanguageCpp)
	require.ErrorIs(t, err, domain.ErrToolchainUnavailable)
	assert.EqualValues(t, 1, r.Discoveries())
}

func TestDiffEnvironment(t *testing.T) {
	before := []string{"PATH=C:\\bin", "FOO=1", "garbage", "SAME = x "}
	after := []string{"PATH=C:\\bin;C:\\vc", "FOO=1", "INCLUDE=C:\\inc", "SAME=x", "EMPTY="}

	assert.Equal(t, map[string]string{
		"PATH":    "C:\\bin;C:\\vc",
		"INCLUDE": "C:\\inc",
		"EMPTY":   "",
	}, DiffEnvironment(before, after))
}

var redirect = regexp.MustCompile(`> "([^"]+)"`)

// fakeWindows simulates vswhere and cmd.exe running a vcvars script.
func fakeWindows(t *testing.T, install, clExe string) CommandRunner {
	return func(_ context.Context, _ string, _ []string, name string, args ...string) (string, error) {
		switch name {
		case VSWherePath:
			return filepath.Join(t.TempDir(), "not-installed") + "\r\n" + install + "\r\n", nil
		case "cmd.exe":
			script, err := os.ReadFile(args[1])
			require.NoError(t, err)
			targets := redirect.FindAllStringSubmatch(string(script), -1)
			require.Len(t, targets, 3)
			require.NoError(t, os.WriteFile(targets[0][1], []byte("PATH=C:\\bin\r\nUSER=me\r\n"), 0o644))
			require.NoError(t, os.WriteFile(targets[1][1], []byte("PATH=C:\\bin;C:\\vc\r\nUSER=me\r\nLIB=C:\\lib\r\n"), 0o644))
			require.NoError(t, os.WriteFile(targets[2][1], []byte(clExe+"\r\nC:\\other\\cl.exe\r\n"), 0o644))
			return "vcvars ok", nil
		}
		t.Fatalf("unexpected command %s", name)
		return "", nil
	}
}

func TestResolveMSVC(t *testing.T) {
	install := t.TempDir()
	touch(t, filepath.Join(install, "VC", "Auxiliary", "Build", "vcvars64.bat"), 0o644)
	clExe := filepath.Join(install, "cl.exe")
	touch(t, clExe, 0o755)

	r := NewResolver(nil,
		WithPlatform(Platform{OS: "windows", Arch: "amd64"}),
		WithCommandRunner(fakeWindows(t, install, clExe)),
		WithTempDir(t.TempDir()),
	)

	desc, err := r.Resolve(context.Background(), domain.LanguageCpp)
	require.NoError(t, err)
	assert.Equal(t, clExe, desc.Path)
	assert.Equal(t, domain.FamilyMSVC, desc.Family)
	assert.Equal(t, map[string]string{"PATH": "C:\\bin;C:\\vc", "LIB": "C:\\lib"}, desc.Env)

	c, err := r.Resolve(context.Background(), domain.LanguageC)
	require.NoError(t, err)
	assert.Equal(t, clExe, c.Path)
	assert.Equal(t, domain.LanguageC, c.Language)
}

func TestResolveMSVCWithoutInstallations(t *testing.T) {
	r := NewResolver(nil,
		WithPlatform(Platform{OS: "windows", Arch: "arm64"}),
		WithCommandRunner(func(context.Context, string, []string, string, ...string) (string, error) {
			return "", nil
		}),
	)
	_, err := r.Resolve(context.Background(), domain.LanguageC)
	assert.ErrorIs(t, err, domain.ErrToolchainUnavailable)
}

func TestPlatform(t *testing.T) {
	assert.Equal(t, ".so", Platform{OS: "linux"}.LibraryExt())
	assert.Equal(t, ".dylib", Platform{OS: "darwin"}.LibraryExt())
	assert.Equal(t, ".dll", Platform{OS: "windows"}.LibraryExt())
	assert.Equal(t, domain.FamilyMSVC, Platform{OS: "windows"}.Family())
	assert.Equal(t, domain.FamilyUnix, Platform{OS: "freebsd"}.Family())

	script, err := Platform{Arch: "arm64"}.vcvarsScript()
	require.NoError(t, err)
	assert.Equal(t, "vcvarsamd64_arm64", script)
	_, err = Platform{Arch: "386"}.vcvarsScript()
	assert.Error(t, err)
}
