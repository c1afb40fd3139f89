// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package version

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, preRel, build string
	}{
		{"beta", "beta", "beta"},
		{"rc.1", "rc1", "rc.1"},
		{"a+b c_d", "abcd", "abcd"},
		{"x-y", "x-y", "x-y"},
		{"", "", ""},
	}
	for _, test := range tests {
		require.Equal(t, test.preRel, cleanTag(test.in, false), test.in)
		require.Equal(t, test.build, cleanTag(test.in, true), test.in)
	}
}

// TestString checks the assembled version.  It changes the package level
// build variables so it does not run in parallel.
func TestString(t *testing.T) {
	oldPre, oldBuild := PreRelease, BuildMetadata
	defer func() {
		PreRelease, BuildMetadata = oldPre, oldBuild
	}()

	base := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
	tests := []struct {
		preRel, build, want string
	}{
		{"", "", base},
		{"beta", "", base + "-beta"},
		{"", "abc.1", base + "+abc.1"},
		{"rc1", "dev", base + "-rc1+dev"},
		{"!!", "??", base},
	}
	for _, test := range tests {
		PreRelease, BuildMetadata = test.preRel, test.build
		require.Equal(t, test.want, String())
	}

	PreRelease, BuildMetadata = "", ""
	require.Equal(t, "poolreplay version "+base, Full("poolreplay"))
}
