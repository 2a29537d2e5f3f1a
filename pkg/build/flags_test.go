// SPDX-License-Identifier: MIT
package build

import "testing"

func TestInitializeDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() with development defaults: %v", err)
	}

	flags := GetBuildFlags()
	if flags.Name == "" {
		t.Error("expected non-empty build name")
	}
	if flags.Version == "" {
		t.Error("expected non-empty build version")
	}
}
