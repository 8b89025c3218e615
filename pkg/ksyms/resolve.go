// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package ksyms

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrMalformedTable = errors.New("malformed symbol table")
	// ErrUnavailable means the symbol table could not be read at all.
	ErrUnavailable = errors.New("symbol table unavailable")
)

// parseLine splits one kallsyms line: "ADDRESS TYPE NAME[\t[MODULE]]".
func parseLine(txt string) (ksym, error) {
	fields := strings.Fields(txt)
	if len(fields) < 3 {
		return ksym{}, fmt.Errorf("%w: %q", ErrMalformedTable, txt)
	}

	addr, err := strconv.ParseUint(fields[0], 16, 64)
	if err != nil {
		return ksym{}, fmt.Errorf("%w: bad address in %q: %w", ErrMalformedTable, txt, err)
	}

	sym := ksym{
		addr: addr,
		ty:   fields[1],
		name: fields[2],
	}
	if len(fields) > 3 {
		sym.module = strings.TrimSuffix(strings.TrimPrefix(fields[3], "["), "]")
	}
	return sym, nil
}

// ResolveAddress scans a kallsyms formatted stream and returns the address and
// owning module of the first symbol called name. An empty module means the
// symbol belongs to the kernel image. Duplicate names in different modules
// are not disambiguated.
func ResolveAddress(r io.Reader, name string) (uint64, string, error) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		sym, err := parseLine(s.Text())
		if err != nil {
			return 0, "", err
		}
		if sym.name == name {
			return sym.addr, sym.module, nil
		}
	}
	if err := s.Err(); err != nil {
		return 0, "", fmt.Errorf("%w: reading symbol table: %w", ErrUnavailable, err)
	}
	return 0, "", fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
}

type address struct {
	addr   uint64
	module string
}

// Addresses indexes a kallsyms table by symbol name. Only the first
// occurrence of a name is kept, so duplicates in different modules are not
// disambiguated. An empty module means the kernel image.
type Addresses struct {
	byName map[string]address
}

// ReadAddresses indexes a kallsyms formatted stream so that many names can be
// resolved from one read. Resolve gives the same answers as ResolveAddress,
// but any line that cannot be parsed fails the whole table.
func ReadAddresses(r io.Reader) (*Addresses, error) {
	a := &Addresses{byName: make(map[string]address)}
	s := bufio.NewScanner(r)
	for s.Scan() {
		sym, err := parseLine(s.Text())
		if err != nil {
			return nil, err
		}
		if _, ok := a.byName[sym.name]; !ok {
			a.byName[sym.name] = address{addr: sym.addr, module: sym.module}
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading symbol table: %w", ErrUnavailable, err)
	}
	return a, nil
}

// ReadAddressesProcFS is ReadAddresses over procfs/kallsyms.
func ReadAddressesProcFS(procfs string) (*Addresses, error) {
	f, err := openKallsyms(procfs)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAddresses(f)
}

// Resolve returns the address and owning module of the symbol called name.
func (a *Addresses) Resolve(name string) (uint64, string, error) {
	sym, ok := a.byName[name]
	if !ok {
		return 0, "", fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return sym.addr, sym.module, nil
}

func (a *Addresses) Len() int {
	return len(a.byName)
}

func openKallsyms(procfs string) (*os.File, error) {
	f, err := os.Open(filepath.Join(procfs, "kallsyms"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return f, nil
}
