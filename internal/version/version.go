// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version holds the release of the alloyd tools.
package version

import (
	"fmt"
	"strings"
)

// Release of the tools in semantic versioning form.
const (
	Major uint = 0
	Minor uint = 3
	Patch uint = 1
)

// PreRelease and BuildMetadata are set at link time, for example
//
//	go build -ldflags "-X github.com/alloyproject/alloyd/internal/version.PreRelease=rc1"
//
// Characters not allowed in their part of a semantic version are dropped.
var (
	PreRelease    = "pre"
	BuildMetadata = "dev"
)

// tagAllowed reports whether r may appear in a pre-release tag.  Build
// metadata additionally allows dots.
func tagAllowed(r rune, build bool) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r == '-':
		return true
	case r == '.':
		return build
	}
	return false
}

// cleanTag strips tag of the characters its version part does not allow.
func cleanTag(tag string, build bool) string {
	return strings.Map(func(r rune) rune {
		if tagAllowed(r, build) {
			return r
		}
		return -1
	}, tag)
}

// String returns the release as MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
func String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", Major, Minor, Patch)
	if pre := cleanTag(PreRelease, false); pre != "" {
		b.WriteString("-" + pre)
	}
	if build := cleanTag(BuildMetadata, true); build != "" {
		b.WriteString("+" + build)
	}
	return b.String()
}

// Full returns the banner printed by the --version option of app.
func Full(app string) string {
	return app + " version " + String()
}
