// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"fmt"

	"github.com/cilium/ksnoop/pkg/btf"
)

// Bind resolves one ArgSpec against the signature fn. The result is
// offset-exact: Offset is counted from the address the argument points to
// when a member is named, and BaseArg says which argument (or ReturnArg)
// the offset applies to. fn is never modified.
func Bind(db btf.TypeDB, fn *btf.Func, spec ArgSpec) (btf.Value, error) {
	name := spec.Name()
	if len(name) > MaxValueNameLen {
		return btf.Value{}, fmt.Errorf("%w: value name %q is %d bytes, at most %d are allowed",
			ErrNameTooLong, name, len(name), MaxValueNameLen)
	}

	arg, ok := fn.Lookup(spec.Arg)
	if !ok {
		if fn.Declares(spec.Arg) {
			return btf.Value{}, fmt.Errorf("%w: %s is not among the first %d arguments of %s",
				ErrTooManyArguments, spec.Arg, btf.MaxArgs, fn.Name)
		}
		return btf.Value{}, fmt.Errorf("%w: %s in %s", ErrArgNotFound, spec.Arg, fn.Name)
	}

	val := btf.Value{
		Name:    name,
		BaseArg: arg.BaseArg,
	}

	if spec.Member != "" {
		if !arg.Type.Valid {
			return btf.Value{}, fmt.Errorf("%w: %s has no known type", btf.ErrNotARecord, spec.Arg)
		}
		hit, err := btf.FindMemberPath(db, spec.Member, arg.Type.ID)
		if err != nil {
			return btf.Value{}, fmt.Errorf("%s: %w", name, err)
		}
		val.Type = hit.Type
		val.Size = hit.Size
		val.Offset = hit.Offset
		val.Flags = hit.Flags
	} else {
		val.Type = arg.Type
		val.Size = arg.Size
		val.Flags = arg.Flags
	}

	if err := ParseEnumPredicate(db, spec.Predicate, &val); err != nil {
		return btf.Value{}, fmt.Errorf("%s: %w", name, err)
	}
	return val, nil
}
