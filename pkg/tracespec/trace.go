// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"fmt"
	"strings"

	"github.com/cilium/ksnoop/pkg/btf"
)

// TraceFlags say at which probe points a trace needs to run.
type TraceFlags uint32

const (
	// TraceEntry is set when an argument must be read at function entry.
	TraceEntry TraceFlags = 1 << iota
	// TraceReturn is set when the return value is captured.
	TraceReturn
	// TraceStack is set when the trace is one link of a call chain and only
	// fires while the functions before it are on the stack.
	TraceStack
)

func (f TraceFlags) String() string {
	var s []string
	if f&TraceEntry != 0 {
		s = append(s, "entry")
	}
	if f&TraceReturn != 0 {
		s = append(s, "return")
	}
	if f&TraceStack != 0 {
		s = append(s, "stack")
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "|")
}

func (f TraceFlags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Trace is a fully bound trace specification, ready to be attached. Traces
// are immutable once returned by a Resolver.
type Trace struct {
	Func   btf.Func    `json:"func"`
	Values []btf.Value `json:"values"`
	Flags  TraceFlags  `json:"flags"`

	// FilterPid restricts the trace to one process, 0 for all.
	FilterPid uint32 `json:"filter_pid,omitempty"`
}

// Target is the attach point, "func" or "func [module]".
func (t *Trace) Target() string {
	if t.Func.Module == "" {
		return t.Func.Name
	}
	return fmt.Sprintf("%s [%s]", t.Func.Name, t.Func.Module)
}

// HasPredicates reports whether any value filters the trace.
func (t *Trace) HasPredicates() bool {
	for i := range t.Values {
		if t.Values[i].HasPredicate() {
			return true
		}
	}
	return false
}

// BindAll binds every ArgSpec of spec against fn. A spec without arguments
// captures every captured argument and the return value. Nothing is
// returned unless all of them bind.
func BindAll(db btf.TypeDB, fn *btf.Func, spec *Spec) (*Trace, error) {
	trace := &Trace{Func: *fn}

	if len(spec.Args) == 0 {
		trace.Values = make([]btf.Value, 0, len(fn.Args)+1)
		trace.Values = append(trace.Values, fn.Args...)
		trace.Values = append(trace.Values, fn.Return)
		if len(fn.Args) > 0 {
			trace.Flags |= TraceEntry
		}
		trace.Flags |= TraceReturn
		return trace, nil
	}

	trace.Values = make([]btf.Value, 0, len(spec.Args))
	for _, arg := range spec.Args {
		val, err := Bind(db, fn, arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name, err)
		}
		if val.IsReturn() {
			trace.Flags |= TraceReturn
		} else {
			trace.Flags |= TraceEntry
		}
		trace.Values = append(trace.Values, val)
	}
	return trace, nil
}
