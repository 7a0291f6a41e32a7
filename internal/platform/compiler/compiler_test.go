package compiler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontdude/regexbench/internal/domain"
	"github.com/dontdude/regexbench/internal/platform/toolchain"
)

func fakeResolver(t *testing.T, providers ...domain.Provider) (*toolchain.Resolver, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not meaningful on windows")
	}
	bin := t.TempDir()
	gxx := filepath.Join(bin, "g++")
	require.NoError(t, os.WriteFile(gxx, []byte("#!/bin/sh\n"), 0o755))
	r := toolchain.NewResolver(providers,
		toolchain.WithPlatform(toolchain.Platform{OS: "linux", Arch: "amd64"}),
		toolchain.WithGetenv(func(string) string { return bin }),
	)
	return r, gxx
}

func argAfter(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

// writesArtifact pretends to be a compiler that honours -o.
func writesArtifact(t *testing.T, seen *[]string) toolchain.CommandRunner {
	return func(_ context.Context, dir string, env []string, name string, args ...string) (string, error) {
		*seen = append([]string{name}, args...)
		out := argAfter(args, "-o")
		require.NotEmpty(t, out)
		assert.Equal(t, dir, filepath.Dir(out))
		require.NoError(t, os.WriteFile(out, []byte("ELF"), 0o644))
		return "", nil
	}
}

func TestCompileSuccess(t *testing.T) {
	resolver, gxx := fakeResolver(t)
	var seen []string
	c := New(resolver, nil, WithDir(t.TempDir()), WithCommandRunner(writesArtifact(t, &seen)))

	art, err := c.Compile(context.Background(), "int x;", Cpp17)
	require.NoError(t, err)
	assert.Equal(t, ".so", filepath.Ext(art.Path))
	assert.Equal(t, ".cpp", filepath.Ext(art.Source))
	assert.Equal(t, gxx, art.Compiler)

	src, err := os.ReadFile(art.Source)
	require.NoError(t, err)
	assert.Equal(t, "int x;", string(src))

	require.NotEmpty(t, seen)
	assert.Equal(t, gxx, seen[0])
	for _, flag := range []string{"-shared", "-std=c++17", "-O2", "-DNDEBUG", "-fPIC", art.Source} {
		assert.Contains(t, seen, flag)
	}
	assert.Equal(t, art.Path, argAfter(seen, "-o"))
}

func TestCompileExtensionsToken(t *testing.T) {
	resolver, _ := fakeResolver(t)
	var seen []string
	c := New(resolver, nil, WithDir(t.TempDir()), WithCommandRunner(writesArtifact(t, &seen)))

	_, err := c.Compile(context.Background(), "", Cpp20.WithExtensions())
	require.NoError(t, err)
	assert.Contains(t, seen, "-std=gnu++20")
}

func TestCompileFailureReturnsDiagnostic(t *testing.T) {
	resolver, _ := fakeResolver(t)
	c := New(resolver, nil, WithDir(t.TempDir()), WithCommandRunner(
		func(context.Context, string, []string, string, ...string) (string, error) {
			return "regex.cpp:1:1: error: expected unqualified-id", nil
		}))

	art, err := c.Compile(context.Background(), "garbage", Cpp17)
	assert.Nil(t, art)
	require.ErrorIs(t, err, domain.ErrCompileFailure)
	var ce *domain.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Diagnostic, "expected unqualified-id")
}

func TestCompileIgnoresExitStatusWhenArtifactExists(t *testing.T) {
	resolver, _ := fakeResolver(t)
	c := New(resolver, nil, WithDir(t.TempDir()), WithCommandRunner(
		func(_ context.Context, _ string, _ []string, _ string, args ...string) (string, error) {
			require.NoError(t, os.WriteFile(argAfter(args, "-o"), nil, 0o644))
			return "warning: wrapper exited with status 3", nil
		}))

	_, err := c.Compile(context.Background(), "", Cpp17)
	assert.NoError(t, err)
}

type flagRewriter struct{}

func (flagRewriter) Name() string { return "flags" }

func (flagRewriter) AdjustCompilerOptions(family domain.CompilerFamily, _ string, args []string) []string {
	if family != domain.FamilyUnix {
		return nil
	}
	out := slices.DeleteFunc(slices.Clone(args), func(a string) bool { return a == "-O2" })
	return append(out, "-O3", "-march=native")
}

func TestCompileAppliesFlagAdjusters(t *testing.T) {
	resolver, _ := fakeResolver(t)
	var seen []string
	c := New(resolver, []domain.Provider{flagRewriter{}}, WithDir(t.TempDir()), WithCommandRunner(writesArtifact(t, &seen)))

	_, err := c.Compile(context.Background(), "", Cpp17)
	require.NoError(t, err)
	assert.NotContains(t, seen, "-O2")
	assert.Contains(t, seen, "-O3")
	assert.Contains(t, seen, "-march=native")
}

func TestCompileUnsupportedStandard(t *testing.T) {
	resolver, _ := fakeResolver(t)
	c := New(resolver, nil, WithDir(t.TempDir()), WithCommandRunner(
		func(context.Context, string, []string, string, ...string) (string, error) {
			t.Fatal("compiler must not run")
			return "", nil
		}))

	_, err := c.Compile(context.Background(), "", LanguageVersion{Language: domain.LanguageCpp, Revision: 7})
	assert.ErrorIs(t, err, domain.ErrUnsupportedStandard)
}

type fakeContainer struct {
	req ContainerRequest
}

func (f *fakeContainer) RunCompiler(_ context.Context, req ContainerRequest) (string, error) {
	f.req = req
	out := argAfter(req.Command, "-o")
	return "", os.WriteFile(filepath.Join(req.HostDir, filepath.Base(out)), nil, 0o644)
}

func emptyResolver(t *testing.T) *toolchain.Resolver {
	return toolchain.NewResolver(nil,
		toolchain.WithPlatform(toolchain.Platform{OS: "linux", Arch: "amd64"}),
		toolchain.WithGetenv(func(string) string { return t.TempDir() }),
	)
}

func TestCompileFallsBackToContainer(t *testing.T) {
	ct := &fakeContainer{}
	c := New(emptyResolver(t), nil, WithDir(t.TempDir()), WithContainer(ct))

	art, err := c.Compile(context.Background(), "int x;", C11)
	require.NoError(t, err)
	assert.Equal(t, "container:gcc", art.Compiler)
	assert.Equal(t, domain.LanguageC, ct.req.Language)
	assert.Equal(t, "gcc", ct.req.Command[0])
	assert.Contains(t, ct.req.Command, "-std=c11")
	assert.Contains(t, ct.req.Command, ContainerWorkDir+"/regex.c")
	assert.Equal(t, ContainerWorkDir+"/regex.so", argAfter(ct.req.Command, "-o"))
}

func TestCompileWithoutToolchain(t *testing.T) {
	c := New(emptyResolver(t), nil, WithDir(t.TempDir()))
	_, err := c.Compile(context.Background(), "", Cpp17)
	assert.ErrorIs(t, err, domain.ErrToolchainUnavailable)
}

func TestCleanupRemovesScratch(t *testing.T) {
	resolver, _ := fakeResolver(t)
	var seen []string
	c := New(resolver, nil, WithDir(t.TempDir()), WithCommandRunner(writesArtifact(t, &seen)))

	art, err := c.Compile(context.Background(), "", Cpp17)
	require.NoError(t, err)
	c.Cleanup()
	_, err = os.Stat(art.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Dir(art.Source))
	assert.True(t, os.IsNotExist(err))
}

func TestMSVCArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"/nologo", "/std:c++20", "/GL", "/O2", "/EHsc", "/DNDEBUG", "/LD", `C:\tmp\regex.cpp`},
		msvcArgs("c++20", `C:\tmp\regex.cpp`))
}
