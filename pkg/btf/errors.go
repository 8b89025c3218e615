// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import "errors"

var (
	// ErrUnavailable means the BTF database could not be loaded at all.
	ErrUnavailable = errors.New("BTF unavailable")

	ErrFuncNotFound   = errors.New("function not found")
	ErrNotAFunction   = errors.New("not a function")
	ErrNotARecord     = errors.New("not a struct or union")
	ErrMemberNotFound = errors.New("member not found")
	// ErrPointerMember is returned when a member path would need to follow a
	// pointer, which a single offset from the argument cannot express.
	ErrPointerMember = errors.New("member path traverses a pointer")
	ErrBitfield      = errors.New("bitfield members are not supported")

	ErrNotAnEnum         = errors.New("not an enum")
	ErrEnumValueNotFound = errors.New("enum value not found")
)
