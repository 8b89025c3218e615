// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cilium/ksnoop/pkg/btf"
)

var predicateOps = []struct {
	op    string
	flags btf.Flags
}{
	// two character operators first, ">=" must not be read as ">"
	{"==", btf.FlagPredicateEq},
	{"!=", btf.FlagPredicateNotEq},
	{">=", btf.FlagPredicateGt | btf.FlagPredicateEq},
	{"<=", btf.FlagPredicateLt | btf.FlagPredicateEq},
	{">", btf.FlagPredicateGt},
	{"<", btf.FlagPredicateLt},
}

// splitPredicate separates "OP IMMEDIATE" into its operator flags and the
// immediate text.
func splitPredicate(text string) (btf.Flags, string, error) {
	for _, p := range predicateOps {
		imm, ok := strings.CutPrefix(text, p.op)
		if !ok {
			continue
		}
		imm = strings.TrimSpace(imm)
		if imm == "" || strings.ContainsAny(imm, " \t") {
			break
		}
		return p.flags, imm, nil
	}
	return 0, "", fmt.Errorf("%w: predicate %q", ErrInvalidSyntax, text)
}

func applyPredicate(v *btf.Value, flags btf.Flags, imm int64) error {
	if !v.Comparable() {
		return fmt.Errorf("%w: predicate on %s of %d bytes", ErrUnsupported, v.Name, v.Size)
	}
	v.Flags = v.Flags&^btf.FlagPredicateMask | flags
	v.Predicate = imm
	return nil
}

// ParsePredicate attaches "OP IMMEDIATE" to v, where OP is one of ==, !=, >,
// >=, < and <= and IMMEDIATE is a signed decimal integer. Empty text leaves v
// alone. v is only modified on success.
func ParsePredicate(text string, v *btf.Value) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	flags, immText, err := splitPredicate(text)
	if err != nil {
		return err
	}
	imm, err := strconv.ParseInt(immText, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: predicate value %q: %w", ErrInvalidSyntax, immText, err)
	}
	return applyPredicate(v, flags, imm)
}

// ParseEnumPredicate is ParsePredicate where the immediate may also be the
// name of an enumerator of v's type.
func ParseEnumPredicate(db btf.TypeDB, text string, v *btf.Value) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	flags, immText, err := splitPredicate(text)
	if err != nil {
		return err
	}
	if !isNameStart(immText[0]) {
		return ParsePredicate(text, v)
	}

	imm, err := btf.EnumValue(db, v.Type, immText)
	if errors.Is(err, btf.ErrNotAnEnum) {
		return fmt.Errorf("%w: predicate value %q on non-enum %s", ErrInvalidSyntax, immText, v.Name)
	} else if err != nil {
		return err
	}
	return applyPredicate(v, flags, imm)
}
