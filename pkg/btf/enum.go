// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"fmt"

	"github.com/cilium/ebpf/btf"
)

func enumOf(db TypeDB, ref TypeRef) (*btf.Enum, error) {
	if !ref.Valid {
		return nil, fmt.Errorf("%w: unknown type", ErrNotAnEnum)
	}
	typ, err := db.TypeByID(ref.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: type %d: %w", ErrNotAnEnum, ref.ID, err)
	}
	en, ok := btf.UnderlyingType(typ).(*btf.Enum)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAnEnum, TypeString(typ))
	}
	return en, nil
}

// EnumValue returns the numeric value of the enumerator name declared by the
// enum ref refers to. Typedefs of enums are followed.
func EnumValue(db TypeDB, ref TypeRef, name string) (int64, error) {
	en, err := enumOf(db, ref)
	if err != nil {
		return 0, err
	}
	for _, v := range en.Values {
		if v.Name == name {
			return int64(v.Value), nil
		}
	}
	return 0, fmt.Errorf("%w: %s in %s", ErrEnumValueNotFound, name, TypeString(en))
}
