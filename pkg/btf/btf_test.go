// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

//go:build !windows
// +build !windows

package btf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cilium/ksnoop/pkg/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBtfFiles = []struct {
	btf     string
	create  string
	wantbtf string
	err     error
}{
	{"", "", defaults.DefaultBTFFile, nil},
	{defaults.DefaultBTFFile, "", defaults.DefaultBTFFile, nil},
	{"invalid-btf-file", "", "", fmt.Errorf("BTF file 'invalid-btf-file' does not exist should fail")},
	{"valid-btf-file", "valid-btf-file", "valid-btf-file", nil},
}

func setupfiles() func(*testing.T, string, ...string) {
	return func(t *testing.T, param string, files ...string) {
		for _, f := range files {
			if param == "create" {
				h, e := os.Create(f)
				assert.NoError(t, e)
				h.Close()
			} else if param == "remove" {
				os.Remove(f)
			}
		}
	}
}

func TestFindBTF(t *testing.T) {
	tmpdir := t.TempDir()
	t.Setenv("KSNOOP_BTF", "")

	handlefiles := setupfiles()
	for _, test := range testBtfFiles {
		if test.create != "" {
			handlefiles(t, "create", test.create, filepath.Join(tmpdir, test.create))
			defer handlefiles(t, "remove", test.create, filepath.Join(tmpdir, test.create))
		}

		_, err := os.Stat(defaults.DefaultBTFFile)
		if err != nil && test.wantbtf == defaults.DefaultBTFFile {
			continue
		}

		btf, err := FindBTF(tmpdir, test.btf)
		if test.err != nil {
			assert.Errorf(t, err, "FindBTF() on '%s'  -  want:%v  -  got:no error", test.btf, test.err)
			continue
		}
		assert.NoErrorf(t, err, "FindBTF() on '%s'  - want:no error  -  got:%v", test.btf, err)
		assert.Equalf(t, test.wantbtf, btf, "FindBTF() on '%s'  -  want:'%s'  -  got:'%s'", test.btf, test.wantbtf, btf)
	}
}

func TestFindBTFEnv(t *testing.T) {
	tmpdir := t.TempDir()
	fname := filepath.Join(tmpdir, "vmlinux")
	require.NoError(t, os.WriteFile(fname, nil, 0o644))

	t.Setenv("KSNOOP_BTF", fname)
	got, err := FindBTF(tmpdir, "")
	require.NoError(t, err)
	assert.Equal(t, fname, got)

	t.Setenv("KSNOOP_BTF", filepath.Join(tmpdir, "missing"))
	_, err = FindBTF(tmpdir, "")
	assert.Error(t, err)
}

func TestHandleLoadFailure(t *testing.T) {
	tmpdir := t.TempDir()
	fname := filepath.Join(tmpdir, "garbage")
	require.NoError(t, os.WriteFile(fname, []byte("not btf"), 0o644))

	h := NewHandle(fname)
	_, err := h.Spec()
	require.Error(t, err)
	assert.True(t, IsSystemError(err))

	// the failure is cached, the file is not parsed again
	require.NoError(t, os.Remove(fname))
	_, err2 := h.Spec()
	assert.Equal(t, err, err2)

	_, err = h.DB("nf_tables")
	assert.True(t, IsSystemError(err))
}

func TestHandleKernel(t *testing.T) {
	if _, err := os.Stat(defaults.DefaultBTFFile); err != nil {
		t.Skipf("%q not found", defaults.DefaultBTFFile)
	}

	h := NewHandle(defaults.DefaultBTFFile)

	// concurrent first use must load once and hand out the same spec
	var wg sync.WaitGroup
	specs := make([]interface{}, 8)
	for i := range specs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := h.Spec()
			assert.NoError(t, err)
			specs[i] = s
		}(i)
	}
	wg.Wait()
	for _, s := range specs {
		assert.Same(t, specs[0], s)
	}

	db, err := h.DB("")
	require.NoError(t, err)
	fn, err := ExtractFunc(db, "do_sys_openat2")
	if err != nil {
		t.Skipf("do_sys_openat2 not in kernel BTF: %v", err)
	}
	assert.GreaterOrEqual(t, fn.DeclaredArgs, 3)
	v, ok := fn.Lookup("filename")
	require.True(t, ok)
	assert.True(t, v.Flags.Has(FlagPointer))
}
