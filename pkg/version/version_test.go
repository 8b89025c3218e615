// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package version

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBuildInfoPrint(t *testing.T) {
	var buf bytes.Buffer
	BuildInfo{GoVersion: "go1.22.3", Commit: "abc", Modified: "true"}.Print(&buf)
	assert.Equal(t, "GoVersion: go1.22.3\nGitCommit: abc\nGitTreeState: dirty\n", buf.String())

	buf.Reset()
	BuildInfo{}.Print(&buf)
	assert.Empty(t, buf.String())
}

func TestBuildInfoCollector(t *testing.T) {
	c := NewBuildInfoCollector()
	assert.Equal(t, 1, testutil.CollectAndCount(c, "ksnoop_build_info"))
}
