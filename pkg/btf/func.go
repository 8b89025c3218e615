// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"errors"
	"fmt"

	"github.com/cilium/ebpf/btf"
)

// ExtractFunc builds the signature of the function called name. At most
// MaxArgs arguments are captured; DeclaredArgs always holds the real arity.
func ExtractFunc(db TypeDB, name string) (*Func, error) {
	var fn *btf.Func

	err := db.TypeByName(name, &fn)
	if errors.Is(err, btf.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrFuncNotFound, name)
	} else if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}

	proto, ok := fn.Type.(*btf.FuncProto)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no prototype", ErrNotAFunction, name)
	}

	var protoID btf.TypeID
	if id, err := db.TypeID(proto); err == nil {
		protoID = id
	}

	nargs := min(len(proto.Params), MaxArgs)
	ret := &Func{
		Name:         name,
		TypeID:       protoID,
		Args:         make([]Value, 0, nargs),
		DeclaredArgs: len(proto.Params),
		btf:          fn,
	}

	for i := 0; i < nargs; i++ {
		param := proto.Params[i]
		val := resolveTypeValue(db, param.Name, param.Type)
		val.BaseArg = i
		ret.Args = append(ret.Args, val)
	}

	ret.Return = resolveTypeValue(db, ReturnName, proto.Return)
	ret.Return.BaseArg = ReturnArg

	return ret, nil
}
