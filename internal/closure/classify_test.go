// SPDX-License-Identifier: MPL-2.0

package closure

import "testing"

func TestClassifier(t *testing.T) {
	t.Parallel()

	c := Classifier{
		SystemRoots:      []string{"/lib", "/usr/lib", "/System"},
		AlwaysBundle:     []string{"libstdc++", "libgcc_s"},
		ControlledPrefix: "/home/linuxbrew/.linuxbrew",
	}

	tests := []struct {
		path       string
		system     bool
		controlled bool
		skip       bool
	}{
		{"/lib/x86_64-linux-gnu/libc.so.6", true, false, true},
		{"/lib64/ld-linux-x86-64.so.2", false, false, false},
		{"/usr/lib/libstdc++.so.6", true, false, false},
		{"/usr/lib/gcc/libgcc_s.so.1", true, false, false},
		{"/System/Library/Frameworks/Foundation.framework/Foundation", true, false, true},
		{"/home/linuxbrew/.linuxbrew/lib/libglib-2.0.so.0", false, true, false},
		{"/home/linuxbrew/.linuxbrew-other/lib/libz.so.1", false, false, false},
		{"/usr/library/libfoo.so", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := c.IsSystem(tt.path); got != tt.system {
				t.Errorf("IsSystem() = %v, want %v", got, tt.system)
			}
			if got := c.IsControlled(tt.path); got != tt.controlled {
				t.Errorf("IsControlled() = %v, want %v", got, tt.controlled)
			}
			if got := c.ShouldSkip(tt.path); got != tt.skip {
				t.Errorf("ShouldSkip() = %v, want %v", got, tt.skip)
			}
		})
	}
}

func TestEnumStrings(t *testing.T) {
	t.Parallel()

	if OriginUnresolved.String() != "unresolved" || StatusSkipped.String() != "skipped" {
		t.Error("unexpected enum names")
	}
	if Origin(42).String() != "unknown" || CopyStatus(42).String() != "unknown" {
		t.Error("out-of-range values should render as unknown")
	}
}
