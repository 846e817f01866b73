// SPDX-License-Identifier: MPL-2.0

package binfmt

import (
	"errors"
	"slices"
	"testing"

	"github.com/vipsbundle/vipsbundle/internal/testutil"
	"github.com/vipsbundle/vipsbundle/internal/toolexec"
)

const readelfOutput = `
Dynamic section at offset 0x2d4dd8 contains 36 entries:
  Tag        Type                         Name/Value
 0x0000000000000001 (NEEDED)             Shared library: [libglib-2.0.so.0]
 0x0000000000000001 (NEEDED)             Shared library: [libc.so.6]
 0x000000000000000e (SONAME)             Library soname: [libvips.so.42]
 0x000000000000001d (RUNPATH)            Library runpath: [/home/linuxbrew/.linuxbrew/lib]
`

func TestELF_ListDependenciesUsesLoaderTrace(t *testing.T) {
	t.Parallel()

	logger, _ := testutil.NewLogger()
	exec := testutil.NewFakeExecutor()
	trace := testutil.FakeTrace{
		"/out/libvips.so.42": {"/home/linuxbrew/.linuxbrew/lib/libglib-2.0.so.0", "/lib/x86_64-linux-gnu/libc.so.6"},
	}

	deps, err := NewELF(exec, logger, trace.Trace).ListDependencies(t.Context(), "/out/libvips.so.42")
	if err != nil {
		t.Fatalf("ListDependencies() error = %v", err)
	}
	if !slices.Equal(deps, trace["/out/libvips.so.42"]) {
		t.Errorf("deps = %v", deps)
	}
	if len(exec.Calls()) != 0 {
		t.Errorf("readelf should not run when the trace succeeds: %v", exec.Calls())
	}
}

func failingTrace(string) ([]string, error) {
	return nil, errors.New("not a dynamic executable")
}

func TestParseReadelfNeeded(t *testing.T) {
	t.Parallel()

	want := []string{"libglib-2.0.so.0", "libc.so.6"}
	if got := parseReadelfNeeded(readelfOutput); !slices.Equal(got, want) {
		t.Errorf("parseReadelfNeeded() = %v, want %v", got, want)
	}
}

func TestELF_ListDependenciesFallsBackToReadelf(t *testing.T) {
	t.Parallel()

	logger, _ := testutil.NewLogger()
	exec := testutil.NewFakeExecutor().
		On(testutil.FakeResponse{Stdout: readelfOutput}, "readelf", "-d", "/out/libvips.so.42")

	deps, err := NewELF(exec, logger, failingTrace).ListDependencies(t.Context(), "/out/libvips.so.42")
	if err != nil {
		t.Fatalf("ListDependencies() error = %v", err)
	}
	if !slices.Equal(deps, []string{"libglib-2.0.so.0", "libc.so.6"}) {
		t.Errorf("deps = %v", deps)
	}
}

func TestELF_ListDependenciesBothFail(t *testing.T) {
	t.Parallel()

	logger, _ := testutil.NewLogger()
	exec := testutil.NewFakeExecutor().Missing("readelf")

	_, err := NewELF(exec, logger, failingTrace).ListDependencies(t.Context(), "/out/libvips.so.42")
	if !errors.Is(err, toolexec.ErrToolNotFound) {
		t.Errorf("error = %v, want ErrToolNotFound", err)
	}
}

func TestELF_Rewrite(t *testing.T) {
	t.Parallel()

	logger, _ := testutil.NewLogger()
	exec := testutil.NewFakeExecutor()

	if err := NewELF(exec, logger, nil).Rewrite(t.Context(), "/out/lib/libvips.so.42", "/out/lib"); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if !exec.Called("patchelf", "--set-rpath", "$ORIGIN", "/out/lib/libvips.so.42") {
		t.Errorf("patchelf not invoked as expected: %v", exec.Calls())
	}
}

func TestELF_BundleRelative(t *testing.T) {
	t.Parallel()

	e := &ELF{}
	if !e.BundleRelative("/out/lib/libglib-2.0.so.0", "/out/lib/") {
		t.Error("sibling path should be bundle-relative")
	}
	if e.BundleRelative("/home/linuxbrew/.linuxbrew/lib/libglib-2.0.so.0", "/out/lib") {
		t.Error("prefix path should not be bundle-relative")
	}
	if e.BundleRelative("libglib-2.0.so.0", "/out/lib") {
		t.Error("unresolved bare name should not be bundle-relative")
	}
}

func TestLibraryPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		want   Patterns
	}{
		{&ELF{}, Patterns{Root: []string{"libvips.so", "libvips.so.*"}, Siblings: "libvips*.so*", Binaries: "*.so*"}},
		{&MachO{}, Patterns{Root: []string{"libvips.dylib", "libvips.*.dylib"}, Siblings: "libvips*.dylib", Binaries: "*.dylib"}},
		{DLL{}, Patterns{Root: []string{"libvips-*.dll", "libvips*.dll"}, Siblings: "libvips*.dll", Binaries: "*.dll"}},
	}

	for _, tt := range tests {
		t.Run(tt.format.Name(), func(t *testing.T) {
			t.Parallel()

			got := tt.format.LibraryPatterns("libvips")
			if !slices.Equal(got.Root, tt.want.Root) || got.Siblings != tt.want.Siblings || got.Binaries != tt.want.Binaries {
				t.Errorf("LibraryPatterns() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
