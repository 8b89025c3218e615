// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/cilium/ebpf/btf"
	"github.com/cilium/ksnoop/pkg/defaults"
	"github.com/cilium/ksnoop/pkg/logger"
	"github.com/cilium/ksnoop/pkg/logger/logfields"
	"github.com/sirupsen/logrus"

	"golang.org/x/sys/unix"
)

// TypeDB is the read-only type database the resolvers query. *btf.Spec
// implements it.
type TypeDB interface {
	TypeByID(id btf.TypeID) (btf.Type, error)
	TypeID(typ btf.Type) (btf.TypeID, error)
	TypeByName(name string, typ interface{}) error
}

// Source hands out the type database of vmlinux (module == "") or of a
// loaded kernel module.
type Source interface {
	DB(module string) (TypeDB, error)
}

var _ TypeDB = (*btf.Spec)(nil)

func btfFileExists(file string) error {
	_, err := os.Stat(file)
	return err
}

// FindBTF picks the vmlinux BTF file to use. An explicit path wins, then the
// KSNOOP_BTF environment variable, then the kernel exposed BTF and finally
// files shipped under lib.
func FindBTF(lib, btf string) (string, error) {
	log := logger.Subsys("btf")
	if btf == "" {
		// Alternative to auto-discovery and/or command line argument we
		// can also set via environment variable.
		ksnoopBtfEnv := os.Getenv("KSNOOP_BTF")
		if ksnoopBtfEnv != "" {
			if _, err := os.Stat(ksnoopBtfEnv); err != nil {
				return btf, err
			}
			return ksnoopBtfEnv, nil
		}

		var uname unix.Utsname
		err := unix.Uname(&uname)
		if err != nil {
			return btf, fmt.Errorf("kernel version lookup (uname -r) failing, use '--btf' to set a BTF file manually: %w", err)
		}
		kernelVersion := unix.ByteSliceToString(uname.Release[:])

		if _, err := os.Stat(defaults.DefaultBTFFile); err == nil {
			log.WithField(logfields.BTFFile, defaults.DefaultBTFFile).Debug("BTF discovery: default kernel btf file found")
			return defaults.DefaultBTFFile, nil
		}
		log.WithField(logfields.BTFFile, defaults.DefaultBTFFile).Debug("BTF discovery: default kernel btf file does not exist")

		runFile := path.Join(lib, "metadata", "vmlinux-"+kernelVersion)
		if _, err := os.Stat(runFile); err == nil {
			log.WithField(logfields.BTFFile, runFile).Debug("BTF discovery: candidate btf file found")
			return runFile, nil
		}
		log.WithField(logfields.BTFFile, runFile).Debug("BTF discovery: candidate btf file does not exist")

		runFile = path.Join(lib, "btf")
		if _, err := os.Stat(runFile); err == nil {
			log.WithField(logfields.BTFFile, runFile).Debug("BTF discovery: candidate btf file found")
			return runFile, nil
		}
		log.WithField(logfields.BTFFile, runFile).Debug("BTF discovery: candidate btf file does not exist")

		return btf, fmt.Errorf("kernel %q BTF search failed, use --btf to specify a BTF file", kernelVersion)
	}
	if err := btfFileExists(btf); err != nil {
		return btf, fmt.Errorf("user specified BTF does not exist: %w", err)
	}
	log.WithField(logfields.BTFFile, btf).Debug("BTF file: user specified btf file found")
	return btf, nil
}

// Handle is a lazily loaded, shared BTF database. The vmlinux spec is parsed
// on first use and never modified afterwards, so one Handle can serve any
// number of concurrent readers.
type Handle struct {
	path      string
	moduleDir string

	once sync.Once
	spec *btf.Spec
	err  error

	mu      sync.Mutex
	modules map[string]*btf.Spec
}

// NewHandle returns a handle over the BTF file at path. Nothing is read until
// the first query.
func NewHandle(path string) *Handle {
	return &Handle{
		path:      path,
		moduleDir: defaults.DefaultModuleBTFDir,
		modules:   make(map[string]*btf.Spec),
	}
}

// SetModuleDir overrides where split module BTF is looked up.
func (h *Handle) SetModuleDir(dir string) {
	h.moduleDir = dir
}

// Spec returns the vmlinux spec, loading it on first call.
func (h *Handle) Spec() (*btf.Spec, error) {
	h.once.Do(func() {
		logger.Subsys("btf").WithField(logfields.BTFFile, h.path).Debug("loading BTF")
		h.spec, h.err = btf.LoadSpec(h.path)
		if h.err != nil {
			h.err = fmt.Errorf("%w: %s: %w", ErrUnavailable, h.path, h.err)
		}
	})
	return h.spec, h.err
}

// ModuleSpec returns the split BTF of a kernel module on top of the vmlinux
// spec. Each module is loaded at most once.
func (h *Handle) ModuleSpec(module string) (*btf.Spec, error) {
	base, err := h.Spec()
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if spec, ok := h.modules[module]; ok {
		return spec, nil
	}

	fname := filepath.Join(h.moduleDir, module)
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("%w: module %s: %w", ErrUnavailable, module, err)
	}
	defer f.Close()

	spec, err := btf.LoadSplitSpecFromReader(f, base)
	if err != nil {
		return nil, fmt.Errorf("%w: module %s: %w", ErrUnavailable, module, err)
	}
	logger.Subsys("btf").WithFields(logrus.Fields{
		logfields.Module:  module,
		logfields.BTFFile: fname,
	}).Debug("loaded module BTF")
	h.modules[module] = spec
	return spec, nil
}

// DB implements Source.
func (h *Handle) DB(module string) (TypeDB, error) {
	var spec *btf.Spec
	var err error
	if module == "" {
		spec, err = h.Spec()
	} else {
		spec, err = h.ModuleSpec(module)
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// IsSystemError reports whether err means the type database itself could not
// be loaded, as opposed to a lookup failing in a loaded database.
func IsSystemError(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
