// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package ksyms

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = "ffff0000 T foo\n" +
	"ffff1000 t bar\t[mymod]\n" +
	"ffff2000 t bar\t[othermod]\n" +
	"ffff3000 T baz_not_quite\n"

func TestResolveAddress(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		addr    uint64
		module  string
		wantErr error
	}{
		{name: "core kernel", symbol: "foo", addr: 0xffff0000},
		{name: "module", symbol: "bar", addr: 0xffff1000, module: "mymod"},
		{name: "missing", symbol: "baz", wantErr: ErrSymbolNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, mod, err := ResolveAddress(strings.NewReader(testTable), tt.symbol)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, addr)
			assert.Equal(t, tt.module, mod)
		})
	}
}

func TestResolveAddressMalformed(t *testing.T) {
	table := "ffff0000 T foo\nffff1000 bar\nffff2000 T wanted\n"
	_, _, err := ResolveAddress(strings.NewReader(table), "wanted")
	assert.ErrorIs(t, err, ErrMalformedTable)

	// lines before the match are all that is read
	addr, _, err := ResolveAddress(strings.NewReader(table), "foo")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xffff0000), addr)

	_, _, err = ResolveAddress(strings.NewReader("zzzz T foo\n"), "foo")
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestAddressesResolve(t *testing.T) {
	addrs, err := ReadAddresses(strings.NewReader(testTable))
	require.NoError(t, err)
	assert.Equal(t, 3, addrs.Len())

	tests := []struct {
		name    string
		symbol  string
		addr    uint64
		module  string
		wantErr error
	}{
		{name: "core kernel", symbol: "foo", addr: 0xffff0000},
		{name: "first module wins", symbol: "bar", addr: 0xffff1000, module: "mymod"},
		{name: "missing", symbol: "baz", wantErr: ErrSymbolNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, mod, err := addrs.Resolve(tt.symbol)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, addr)
			assert.Equal(t, tt.module, mod)
		})
	}
}

func TestReadAddressesMalformed(t *testing.T) {
	// a bad line anywhere fails the table, not only lookups past it
	_, err := ReadAddresses(strings.NewReader("ffff0000 T foo\nffff1000 bar\n"))
	assert.ErrorIs(t, err, ErrMalformedTable)

	_, err = ReadAddresses(strings.NewReader("zzzz T foo\n"))
	assert.ErrorIs(t, err, ErrMalformedTable)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device gone")
}

func TestReadError(t *testing.T) {
	_, err := ReadAddresses(failingReader{})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, _, err = ResolveAddress(failingReader{}, "foo")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrSymbolNotFound)
}

func TestReadAddressesProcFS(t *testing.T) {
	procfs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(procfs, "kallsyms"), []byte(testTable), 0o644))

	addrs, err := ReadAddressesProcFS(procfs)
	require.NoError(t, err)
	addr, mod, err := addrs.Resolve("bar")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xffff1000), addr)
	assert.Equal(t, "mymod", mod)

	_, err = ReadAddressesProcFS(t.TempDir())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewKsyms(t.TempDir())
	assert.ErrorIs(t, err, ErrUnavailable)
}
