// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package ksyms

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/cilium/ksnoop/pkg/defaults"
	"github.com/cilium/ksnoop/pkg/logger"

	mapset "github.com/deckarep/golang-set/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrNoSymbols = errors.New("no symbols found")

type ksym struct {
	addr   uint64
	name   string
	ty     string
	module string
}

func (s *ksym) isFunction() bool {
	switch s.ty {
	case "t", "T", "w", "W":
		return true
	}
	return false
}

// Location is a kernel text address expressed relative to the function
// containing it.
type Location struct {
	Function string
	Module   string
	Offset   uint64
}

func (l *Location) String() string {
	if l.Module != "" {
		return fmt.Sprintf("%s+0x%x [%s]", l.Function, l.Offset, l.Module)
	}
	return fmt.Sprintf("%s+0x%x", l.Function, l.Offset)
}

type cachedLocation struct {
	loc *Location
	err error
}

// Table is an address ordered snapshot of the kernel symbol table.
type Table struct {
	syms  []ksym
	cache *lru.Cache[uint64, cachedLocation]
}

// NewKsyms reads procfs/kallsyms into a Table.
func NewKsyms(procfs string) (*Table, error) {
	f, err := openKallsyms(procfs)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadKsyms(f)
}

// ReadKsyms builds a Table from a kallsyms formatted stream. Unlike
// ReadAddresses, lines that cannot be parsed are skipped.
func ReadKsyms(r io.Reader) (*Table, error) {
	log := logger.Subsys("ksyms")
	t := &Table{}
	sorted := true

	s := bufio.NewScanner(r)
	for s.Scan() {
		sym, err := parseLine(s.Text())
		if err != nil {
			log.WithError(err).Debug("skipping kallsyms line")
			continue
		}
		// kptr_restrict hides addresses from unprivileged readers
		if sym.addr == 0 && sym.isFunction() {
			return nil, fmt.Errorf("function %s reported at address 0, insufficient permissions?", sym.name)
		}
		if n := len(t.syms); n > 0 && t.syms[n-1].addr > sym.addr {
			sorted = false
		}
		t.syms = append(t.syms, sym)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading symbol table: %w", err)
	}
	if len(t.syms) == 0 {
		return nil, ErrNoSymbols
	}

	if !sorted {
		slices.SortStableFunc(t.syms, func(a, b ksym) int {
			switch {
			case a.addr < b.addr:
				return -1
			case a.addr > b.addr:
				return 1
			}
			return 0
		})
	}

	cache, err := lru.New[uint64, cachedLocation](defaults.DefaultKsymsCacheSize)
	if err != nil {
		log.WithError(err).Info("symbolizing without cache")
	} else {
		t.cache = cache
	}
	log.Debugf("read %d symbols", len(t.syms))
	return t, nil
}

// Symbolize returns the function containing addr.
func (t *Table) Symbolize(addr uint64) (*Location, error) {
	if t.cache == nil {
		return t.symbolize(addr)
	}
	if c, ok := t.cache.Get(addr); ok {
		return c.loc, c.err
	}
	loc, err := t.symbolize(addr)
	t.cache.Add(addr, cachedLocation{loc: loc, err: err})
	return loc, err
}

func (t *Table) symbolize(addr uint64) (*Location, error) {
	// index of the first symbol above addr
	i := sort.Search(len(t.syms), func(i int) bool { return t.syms[i].addr > addr })
	if i == 0 {
		return nil, fmt.Errorf("%w: 0x%x is below the first symbol %s", ErrSymbolNotFound, addr, t.syms[0].name)
	}

	sym := &t.syms[i-1]
	if !sym.isFunction() {
		return nil, fmt.Errorf("%w: 0x%x falls in non-function symbol %s", ErrSymbolNotFound, addr, sym.name)
	}
	return &Location{
		Function: sym.name,
		Module:   sym.module,
		Offset:   addr - sym.addr,
	}, nil
}

// Modules returns the sorted names of the modules owning symbols.
func (t *Table) Modules() []string {
	mods := mapset.NewThreadUnsafeSet[string]()
	for i := range t.syms {
		if m := t.syms[i].module; m != "" {
			mods.Add(m)
		}
	}
	out := mods.ToSlice()
	slices.Sort(out)
	return out
}
