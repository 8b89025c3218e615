// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"fmt"
	"strings"

	"github.com/cilium/ksnoop/pkg/btf"
	"github.com/cilium/ksnoop/pkg/defaults"
	"github.com/cilium/ksnoop/pkg/ksyms"
	"github.com/cilium/ksnoop/pkg/logger"
	"github.com/cilium/ksnoop/pkg/logger/logfields"
	"github.com/cilium/ksnoop/pkg/metrics/resolvermetrics"

	mapset "github.com/deckarep/golang-set/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

// SymbolLookup returns the address of a kernel function and the module
// owning it, "" for vmlinux.
type SymbolLookup func(name string) (uint64, string, error)

// SymbolTable loads a view of the kernel symbol table. Resolve loads it once
// per call, ResolveAll once per batch.
type SymbolTable func() (SymbolLookup, error)

// ProcFSSymbols reads procfs/kallsyms each time the table is loaded.
func ProcFSSymbols(procfs string) SymbolTable {
	return func() (SymbolLookup, error) {
		addrs, err := ksyms.ReadAddressesProcFS(procfs)
		if err != nil {
			return nil, err
		}
		return addrs.Resolve, nil
	}
}

type Options struct {
	// Symbols locates functions. When nil, every function is looked up in
	// vmlinux BTF and its address is left at 0.
	Symbols SymbolTable
	// CacheSize is the number of function signatures kept. Zero means
	// defaults.DefaultSignatureCacheSize.
	CacheSize int
}

type sigKey struct {
	module string
	name   string
}

// Resolver turns textual trace specifications into bound Traces. It is safe
// for concurrent use.
type Resolver struct {
	src     btf.Source
	symbols SymbolTable
	cache   *lru.Cache[sigKey, *btf.Func]
	// extracting concurrently requested signatures once
	inflight singleflight.Group
	log      logrus.FieldLogger
}

func NewResolver(src btf.Source, opts Options) (*Resolver, error) {
	size := opts.CacheSize
	if size == 0 {
		size = defaults.DefaultSignatureCacheSize
	}
	cache, err := lru.New[sigKey, *btf.Func](size)
	if err != nil {
		return nil, fmt.Errorf("signature cache: %w", err)
	}
	return &Resolver{
		src:     src,
		symbols: opts.Symbols,
		cache:   cache,
		log:     logger.Subsys("tracespec"),
	}, nil
}

// Info returns the signature of the function called name, with its address
// and module filled in when symbols are available. The result is shared and
// must not be modified.
func (r *Resolver) Info(name string) (*btf.Func, error) {
	lookup, err := r.loadSymbols()
	if err != nil {
		return nil, err
	}
	return r.info(lookup, name)
}

func (r *Resolver) loadSymbols() (SymbolLookup, error) {
	if r.symbols == nil {
		return nil, nil
	}
	return r.symbols()
}

func (r *Resolver) info(lookup SymbolLookup, name string) (*btf.Func, error) {
	var addr uint64
	var module string
	if lookup != nil {
		var err error
		addr, module, err = lookup(name)
		if err != nil {
			return nil, err
		}
	}

	key := sigKey{module: module, name: name}
	if fn, ok := r.cache.Get(key); ok {
		resolvermetrics.SignatureCacheInc(resolvermetrics.CacheHit)
		return fn, nil
	}
	resolvermetrics.SignatureCacheInc(resolvermetrics.CacheMiss)

	v, err, _ := r.inflight.Do(module+"/"+name, func() (interface{}, error) {
		return r.extract(key, addr)
	})
	if err != nil {
		return nil, err
	}
	return v.(*btf.Func), nil
}

func (r *Resolver) extract(key sigKey, addr uint64) (*btf.Func, error) {
	db, err := r.src.DB(key.module)
	if err != nil {
		return nil, err
	}
	fn, err := btf.ExtractFunc(db, key.name)
	if err != nil {
		return nil, err
	}
	fn.Address = addr
	fn.Module = key.module

	r.log.WithFields(logrus.Fields{
		logfields.Function: key.name,
		logfields.Module:   key.module,
	}).Debugf("extracted signature with %d of %d arguments", len(fn.Args), fn.DeclaredArgs)
	if fn.Truncated() {
		r.log.WithField(logfields.Function, key.name).Warnf("only the first %d arguments can be traced", btf.MaxArgs)
	}

	r.cache.Add(key, fn)
	return fn, nil
}

// ResolveSpec binds an already parsed specification.
func (r *Resolver) ResolveSpec(spec *Spec) (*Trace, error) {
	lookup, err := r.loadSymbols()
	if err != nil {
		return nil, err
	}
	return r.resolveSpec(lookup, spec)
}

func (r *Resolver) resolveSpec(lookup SymbolLookup, spec *Spec) (*Trace, error) {
	fn, err := r.info(lookup, spec.Func)
	if err != nil {
		return nil, err
	}
	db, err := r.src.DB(fn.Module)
	if err != nil {
		return nil, err
	}
	return BindAll(db, fn, spec)
}

func (r *Resolver) resolve(lookup SymbolLookup, text string) (*Trace, error) {
	spec, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return r.resolveSpec(lookup, spec)
}

// record accounts for the outcome of one specification.
func (r *Resolver) record(text string, trace *Trace, err error) {
	log := r.log.WithField(logfields.Spec, text)
	if err != nil {
		et := errorType(err)
		resolvermetrics.ResolutionInc(&et)
		log.WithError(err).Debug("resolution failed")
		return
	}
	resolvermetrics.ResolutionInc(nil)
	resolvermetrics.ValuesBoundAdd(len(trace.Values))
	log.WithField(logfields.Function, trace.Target()).Debugf("resolved %d values", len(trace.Values))
}

// Resolve parses and binds one specification such as
// "ip_send_skb(skb->len > 128, return)".
func (r *Resolver) Resolve(text string) (*Trace, error) {
	lookup, err := r.loadSymbols()
	var trace *Trace
	if err == nil {
		trace, err = r.resolve(lookup, text)
	}
	r.record(text, trace, err)
	if err != nil {
		return nil, err
	}
	return trace, nil
}

// ResolveAll resolves every specification in texts. Specifications that fail
// are left out of the result and their errors combined. A function may only
// be traced once. The symbol table is loaded once for the whole batch.
// Failing to read it or to load BTF aborts immediately since no
// specification could succeed.
func (r *Resolver) ResolveAll(texts []string) ([]*Trace, error) {
	lookup, err := r.loadSymbols()
	if err != nil {
		r.record(strings.Join(texts, " "), nil, err)
		return nil, err
	}

	var errs error
	traces := make([]*Trace, 0, len(texts))
	seen := mapset.NewThreadUnsafeSet[string]()

	for _, text := range texts {
		trace, err := r.resolve(lookup, text)
		if err == nil && !seen.Add(trace.Func.Name) {
			err = fmt.Errorf("%w: %s", ErrDuplicateFunc, trace.Func.Name)
		}
		r.record(text, trace, err)
		if err != nil {
			if isSystemError(err) {
				return nil, err
			}
			errs = multierr.Append(errs, fmt.Errorf("%q: %w", text, err))
			continue
		}
		traces = append(traces, trace)
	}
	return traces, errs
}

// PlanOptions apply to every trace of a plan.
type PlanOptions struct {
	// Stack chains the traces: each one only fires while all functions
	// listed before it are on the call stack.
	Stack bool
	// Pid restricts every trace to one process, 0 for all.
	Pid uint32
}

// ResolvePlan is ResolveAll with opts applied to the resulting traces. In
// stack mode the traces form a single chain, so at least two functions are
// required and any failed specification fails the whole plan.
func (r *Resolver) ResolvePlan(texts []string, opts PlanOptions) ([]*Trace, error) {
	if opts.Stack && len(texts) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrStackTooShort, len(texts))
	}

	traces, err := r.ResolveAll(texts)
	if err != nil && opts.Stack {
		return nil, err
	}
	for _, t := range traces {
		t.FilterPid = opts.Pid
		if opts.Stack {
			t.Flags |= TraceStack
		}
	}
	return traces, err
}
