// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"errors"

	"github.com/cilium/ksnoop/pkg/btf"
	"github.com/cilium/ksnoop/pkg/ksyms"
	"github.com/cilium/ksnoop/pkg/metrics/resolvermetrics"
)

var (
	ErrInvalidSyntax = errors.New("invalid syntax")
	// ErrUnsupported is returned for well formed requests the resolver
	// cannot express, such as a predicate on a struct value.
	ErrUnsupported      = errors.New("unsupported")
	ErrArgNotFound      = errors.New("argument not found")
	ErrTooManyArguments = errors.New("too many arguments")
	ErrNameTooLong      = errors.New("name too long")
	ErrDuplicateFunc    = errors.New("function traced more than once")
	ErrStackTooShort    = errors.New("stack mode needs at least two functions")
)

// isSystemError reports failures of the host, such as unreadable BTF or
// kallsyms, as opposed to failures of one specification.
func isSystemError(err error) bool {
	return btf.IsSystemError(err) ||
		errors.Is(err, ksyms.ErrUnavailable) ||
		errors.Is(err, ksyms.ErrMalformedTable)
}

func errorType(err error) resolvermetrics.ErrorType {
	switch {
	case isSystemError(err):
		return resolvermetrics.ErrorSystem
	case errors.Is(err, ErrInvalidSyntax):
		return resolvermetrics.ErrorSyntax
	case errors.Is(err, ErrTooManyArguments), errors.Is(err, ErrNameTooLong):
		return resolvermetrics.ErrorLimit
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrDuplicateFunc), errors.Is(err, btf.ErrPointerMember),
		errors.Is(err, btf.ErrBitfield), errors.Is(err, btf.ErrNotARecord),
		errors.Is(err, btf.ErrNotAnEnum):
		return resolvermetrics.ErrorUnsupported
	case errors.Is(err, btf.ErrFuncNotFound), errors.Is(err, btf.ErrNotAFunction),
		errors.Is(err, btf.ErrMemberNotFound), errors.Is(err, ErrArgNotFound),
		errors.Is(err, btf.ErrEnumValueNotFound), errors.Is(err, ksyms.ErrSymbolNotFound):
		return resolvermetrics.ErrorNotFound
	}
	return resolvermetrics.ErrorOther
}
