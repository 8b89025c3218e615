// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"fmt"
	"strings"

	"github.com/cilium/ebpf/btf"
)

// maxAnonDepth bounds recursion into nested anonymous structs and unions.
const maxAnonDepth = 16

// MemberHit is a member located inside a record. Offset is relative to the
// start of the record the search began at.
type MemberHit struct {
	Offset uint32
	Type   TypeRef
	Size   uint32
	Flags  Flags
}

// record returns the members of typ once typedefs and qualifiers are
// stripped, and a printable name for error messages.
func record(typ btf.Type) ([]btf.Member, string, bool) {
	switch t := btf.UnderlyingType(typ).(type) {
	case *btf.Struct:
		return t.Members, "struct " + t.Name, true
	case *btf.Union:
		return t.Members, "union " + t.Name, true
	}
	return nil, "", false
}

func anonRecord(typ btf.Type) ([]btf.Member, bool) {
	switch t := typ.(type) {
	case *btf.Struct:
		return t.Members, true
	case *btf.Union:
		return t.Members, true
	}
	return nil, false
}

// FindMember looks for a member called name in the struct or union id,
// descending into anonymous members as if their fields were declared
// directly in the enclosing record.
func FindMember(db TypeDB, name string, id btf.TypeID) (MemberHit, error) {
	typ, err := db.TypeByID(id)
	if err != nil {
		return MemberHit{}, fmt.Errorf("%w: type %d: %w", ErrNotARecord, id, err)
	}
	members, recName, ok := record(typ)
	if !ok {
		return MemberHit{}, fmt.Errorf("%w: %s", ErrNotARecord, TypeString(typ))
	}

	hit, found, err := findMember(db, name, members, 0)
	if err != nil {
		return MemberHit{}, err
	}
	if !found {
		return MemberHit{}, fmt.Errorf("%w: %s in %s", ErrMemberNotFound, name, recName)
	}
	return hit, nil
}

// findMember returns the first match in declaration order. A miss inside an
// anonymous member is not an error; the search carries on with its siblings.
func findMember(db TypeDB, name string, members []btf.Member, depth int) (MemberHit, bool, error) {
	if depth > maxAnonDepth {
		return MemberHit{}, false, nil
	}

	for _, m := range members {
		if m.Name == "" {
			inner, ok := anonRecord(m.Type)
			if !ok {
				continue
			}
			hit, found, err := findMember(db, name, inner, depth+1)
			if err != nil {
				return MemberHit{}, false, err
			}
			if found {
				hit.Offset += uint32(m.Offset) / 8
				return hit, true, nil
			}
			continue
		}

		if m.Name != name {
			continue
		}
		if m.BitfieldSize != 0 || m.Offset%8 != 0 {
			return MemberHit{}, false, fmt.Errorf("%w: %s", ErrBitfield, name)
		}

		val := resolveTypeValue(db, name, m.Type)
		return MemberHit{
			Offset: uint32(m.Offset) / 8,
			Type:   val.Type,
			Size:   val.Size,
			Flags:  val.Flags | FlagMember,
		}, true, nil
	}

	return MemberHit{}, false, nil
}

// FindMemberPath resolves a dotted path such as "sk_common.skc_family"
// through embedded records. Offsets of every step add up; a path cannot go
// through a pointer member.
func FindMemberPath(db TypeDB, path string, id btf.TypeID) (MemberHit, error) {
	parts := strings.Split(path, ".")

	var offset uint32
	for i, part := range parts {
		if part == "" {
			return MemberHit{}, fmt.Errorf("%w: empty component in %q", ErrMemberNotFound, path)
		}

		hit, err := FindMember(db, part, id)
		if err != nil {
			return MemberHit{}, err
		}
		offset += hit.Offset

		if i == len(parts)-1 {
			hit.Offset = offset
			return hit, nil
		}
		if hit.Flags.Has(FlagPointer) {
			return MemberHit{}, fmt.Errorf("%w: %s in %q", ErrPointerMember, part, path)
		}
		if !hit.Type.Valid {
			return MemberHit{}, fmt.Errorf("%w: %s has unknown type", ErrNotARecord, part)
		}
		id = hit.Type.ID
	}

	// not reached, strings.Split never returns an empty slice
	return MemberHit{}, fmt.Errorf("%w: %q", ErrMemberNotFound, path)
}
