// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

// Package btftest provides an in-memory type database for tests, built from
// cilium/ebpf btf types.
package btftest

import (
	"fmt"
	"reflect"

	"github.com/cilium/ebpf/btf"
)

// DB assigns IDs to types in the order they are added. ID 0 is void, as in
// kernel BTF.
type DB struct {
	types []btf.Type
	ids   map[btf.Type]btf.TypeID
}

// New returns a database holding types and everything they reference.
func New(types ...btf.Type) *DB {
	db := &DB{
		types: []btf.Type{(*btf.Void)(nil)},
		ids:   make(map[btf.Type]btf.TypeID),
	}
	for _, typ := range types {
		db.Add(typ)
	}
	return db
}

// Add registers typ, and the types it refers to, and returns its ID.
func (db *DB) Add(typ btf.Type) btf.TypeID {
	if _, ok := typ.(*btf.Void); ok || typ == nil {
		return 0
	}
	if id, ok := db.ids[typ]; ok {
		return id
	}

	id := btf.TypeID(len(db.types))
	db.types = append(db.types, typ)
	db.ids[typ] = id

	switch t := typ.(type) {
	case *btf.Pointer:
		db.Add(t.Target)
	case *btf.Const:
		db.Add(t.Type)
	case *btf.Volatile:
		db.Add(t.Type)
	case *btf.Restrict:
		db.Add(t.Type)
	case *btf.Typedef:
		db.Add(t.Type)
	case *btf.Array:
		db.Add(t.Index)
		db.Add(t.Type)
	case *btf.Struct:
		for _, m := range t.Members {
			db.Add(m.Type)
		}
	case *btf.Union:
		for _, m := range t.Members {
			db.Add(m.Type)
		}
	case *btf.Func:
		db.Add(t.Type)
	case *btf.FuncProto:
		db.Add(t.Return)
		for _, p := range t.Params {
			db.Add(p.Type)
		}
	}
	return id
}

// ID returns the ID of a registered type and panics otherwise.
func (db *DB) ID(typ btf.Type) btf.TypeID {
	id, err := db.TypeID(typ)
	if err != nil {
		panic(err)
	}
	return id
}

func (db *DB) TypeByID(id btf.TypeID) (btf.Type, error) {
	if int(id) >= len(db.types) {
		return nil, fmt.Errorf("type ID %d: %w", id, btf.ErrNotFound)
	}
	return db.types[id], nil
}

func (db *DB) TypeID(typ btf.Type) (btf.TypeID, error) {
	if _, ok := typ.(*btf.Void); ok {
		return 0, nil
	}
	id, ok := db.ids[typ]
	if !ok {
		return 0, fmt.Errorf("type %v: %w", typ, btf.ErrNotFound)
	}
	return id, nil
}

// TypeByName mirrors (*btf.Spec).TypeByName: typ must be a pointer to a
// variable of a concrete type such as *btf.Func.
func (db *DB) TypeByName(name string, typ interface{}) error {
	ptr := reflect.ValueOf(typ)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("%T is not a non-nil pointer", typ)
	}
	want := ptr.Elem().Type()

	var found btf.Type
	for _, t := range db.types[1:] {
		if reflect.TypeOf(t) != want || t.TypeName() != name {
			continue
		}
		if found != nil {
			return fmt.Errorf("type %s: %w", name, btf.ErrMultipleMatches)
		}
		found = t
	}
	if found == nil {
		return fmt.Errorf("type %s: %w", name, btf.ErrNotFound)
	}
	ptr.Elem().Set(reflect.ValueOf(found))
	return nil
}

// Int returns a signed integer type of the given size.
func Int(name string, size uint32) *btf.Int {
	return &btf.Int{Name: name, Size: size, Encoding: btf.Signed}
}

// Uint returns an unsigned integer type of the given size.
func Uint(name string, size uint32) *btf.Int {
	return &btf.Int{Name: name, Size: size}
}

// Member is a shorthand for a member at a byte offset.
func Member(name string, typ btf.Type, offset uint32) btf.Member {
	return btf.Member{Name: name, Type: typ, Offset: btf.Bits(offset * 8)}
}

// Func declares a global function with the given return type and
// parameters.
func Func(name string, ret btf.Type, params ...btf.FuncParam) *btf.Func {
	if ret == nil {
		ret = (*btf.Void)(nil)
	}
	return &btf.Func{
		Name:    name,
		Type:    &btf.FuncProto{Return: ret, Params: params},
		Linkage: btf.GlobalFunc,
	}
}

// Param is a shorthand for a named function parameter.
func Param(name string, typ btf.Type) btf.FuncParam {
	return btf.FuncParam{Name: name, Type: typ}
}
