// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"strconv"
	"strings"

	"github.com/cilium/ebpf/btf"
)

const (
	// MaxArgs is the number of function arguments a Func captures.
	MaxArgs = 5

	// ReturnArg is the BaseArg of the return value.
	ReturnArg = -1

	// ReturnName is how the return value is referred to in trace specs.
	ReturnName = "return"
)

// Flags describe how a Value is read and compared.
type Flags uint32

const (
	FlagPointer Flags = 1 << iota
	FlagMember
	FlagPredicateEq
	FlagPredicateNotEq
	FlagPredicateGt
	FlagPredicateLt

	FlagPredicateMask = FlagPredicateEq | FlagPredicateNotEq | FlagPredicateGt | FlagPredicateLt
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagPointer, "ptr"},
	{FlagMember, "member"},
	{FlagPredicateEq, "eq"},
	{FlagPredicateNotEq, "noteq"},
	{FlagPredicateGt, "gt"},
	{FlagPredicateLt, "lt"},
}

func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

func (f Flags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// TypeRef names a type in the database. Unknown types have Valid unset.
type TypeRef struct {
	ID    btf.TypeID
	Valid bool
}

// UnknownType is the TypeRef of anything that could not be resolved.
var UnknownType = TypeRef{}

func Known(id btf.TypeID) TypeRef {
	return TypeRef{ID: id, Valid: true}
}

func (r TypeRef) String() string {
	if !r.Valid {
		return "unknown"
	}
	return strconv.FormatUint(uint64(r.ID), 10)
}

func (r TypeRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Value is an offset-exact reference to an argument, the return value or a
// member of either, optionally carrying a comparison predicate.
type Value struct {
	Name      string  `json:"name"`
	Type      TypeRef `json:"type_id"`
	Size      uint32  `json:"size"`
	Offset    uint32  `json:"offset"`
	BaseArg   int     `json:"base_arg"`
	Flags     Flags   `json:"flags"`
	Predicate int64   `json:"predicate,omitempty"`
}

func (v *Value) IsReturn() bool {
	return v.BaseArg == ReturnArg
}

func (v *Value) HasPredicate() bool {
	return v.Flags&FlagPredicateMask != 0
}

// Comparable reports whether the value fits a register-width comparison.
func (v *Value) Comparable() bool {
	return v.Flags.Has(FlagPointer) || (v.Size >= 1 && v.Size <= 8)
}

// Func is a resolved function signature. A Func handed out by this package
// is never modified; copies may set Address and Module.
type Func struct {
	Name         string     `json:"name"`
	TypeID       btf.TypeID `json:"type_id"`
	Args         []Value    `json:"args"`
	DeclaredArgs int        `json:"declared_args"`
	Return       Value      `json:"return"`
	Address      uint64     `json:"address"`
	Module       string     `json:"module,omitempty"`

	btf *btf.Func
}

// BTF returns the function type the signature was extracted from.
func (f *Func) BTF() *btf.Func {
	return f.btf
}

// Truncated reports whether the function declares more arguments than were
// captured.
func (f *Func) Truncated() bool {
	return f.DeclaredArgs > len(f.Args)
}

// Lookup finds a captured argument, or the return value, by name.
func (f *Func) Lookup(name string) (Value, bool) {
	if name == ReturnName {
		return f.Return, true
	}
	for _, arg := range f.Args {
		if arg.Name == name {
			return arg, true
		}
	}
	return Value{}, false
}

// Declares reports whether name is a parameter of the prototype, captured or
// not.
func (f *Func) Declares(name string) bool {
	if f.btf == nil {
		_, ok := f.Lookup(name)
		return ok
	}
	proto, ok := f.btf.Type.(*btf.FuncProto)
	if !ok {
		return false
	}
	for _, p := range proto.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}
