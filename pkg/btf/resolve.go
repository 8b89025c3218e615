// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"github.com/cilium/ebpf/btf"
)

// maxTypeWalk bounds qualifier and pointer chains. Real chains are a
// handful of entries long; anything longer is a cycle or a corrupt blob.
const maxTypeWalk = 64

type resolvedType struct {
	ref     TypeRef
	size    uint32
	pointer bool
}

// resolveType strips qualifiers and pointers starting at id. Pointer levels
// collapse into a single flag, so int ** and int * resolve identically.
func resolveType(db TypeDB, id btf.TypeID) resolvedType {
	var res resolvedType

	for i := 0; i < maxTypeWalk; i++ {
		typ, err := db.TypeByID(id)
		if err != nil {
			return resolvedType{pointer: res.pointer}
		}

		var next btf.Type
		switch t := typ.(type) {
		case *btf.Const:
			next = t.Type
		case *btf.Volatile:
			next = t.Type
		case *btf.Restrict:
			next = t.Type
		case *btf.Pointer:
			res.pointer = true
			next = t.Target
		case *btf.Void:
			return resolvedType{pointer: res.pointer}
		default:
			if target, ok := typeTagTarget(typ); ok {
				next = target
				break
			}
			res.ref = Known(id)
			if size, err := btf.Sizeof(typ); err == nil && size > 0 {
				res.size = uint32(size)
			}
			return res
		}

		if id, err = db.TypeID(next); err != nil {
			return resolvedType{pointer: res.pointer}
		}
	}

	return resolvedType{pointer: res.pointer}
}

// ResolveValue builds the Value of something named name whose type is id.
// It never fails: unresolvable chains yield an unknown type of size 0.
func ResolveValue(db TypeDB, name string, id btf.TypeID) Value {
	res := resolveType(db, id)
	val := Value{
		Name: name,
		Type: res.ref,
		Size: res.size,
	}
	if res.pointer {
		val.Flags |= FlagPointer
	}
	return val
}

func resolveTypeValue(db TypeDB, name string, typ btf.Type) Value {
	if _, ok := typ.(*btf.Void); ok || typ == nil {
		return Value{Name: name}
	}
	id, err := db.TypeID(typ)
	if err != nil {
		return Value{Name: name}
	}
	return ResolveValue(db, name, id)
}
