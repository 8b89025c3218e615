// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "specs.yaml")
	data := "specs:\n  - \"ip_send_skb(skb->len > 128)\"\n  - tcp_sendmsg(size, return)\n"
	require.NoError(t, os.WriteFile(fname, []byte(data), 0o644))

	specs, err := ReadFile(fname)
	require.NoError(t, err)
	assert.Equal(t, []string{"ip_send_skb(skb->len > 128)", "tcp_sendmsg(size, return)"}, specs)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFile(t *testing.T) {
	specs, err := ParseFile([]byte(`{"specs": ["schedule"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"schedule"}, specs)

	_, err = ParseFile([]byte("spec:\n  - schedule\n"))
	assert.ErrorIs(t, err, ErrInvalidSyntax)

	_, err = ParseFile([]byte("specs: [unterminated"))
	assert.ErrorIs(t, err, ErrInvalidSyntax)
}
