// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"fmt"
	"strings"

	"github.com/cilium/ebpf/btf"
)

// TypeString renders typ roughly the way it would be declared in C.
func TypeString(typ btf.Type) string {
	return declString(typ, "")
}

// declString renders typ as the declaration of name, which may be empty.
func declString(typ btf.Type, name string) string {
	switch t := typ.(type) {
	case nil, *btf.Void:
		return joinDecl("void", name)
	case *btf.Int:
		return joinDecl(t.Name, name)
	case *btf.Float:
		return joinDecl(t.Name, name)
	case *btf.Typedef:
		return joinDecl(t.Name, name)
	case *btf.Struct:
		return joinDecl(tagged("struct", t.Name), name)
	case *btf.Union:
		return joinDecl(tagged("union", t.Name), name)
	case *btf.Enum:
		return joinDecl(tagged("enum", t.Name), name)
	case *btf.Fwd:
		return joinDecl(tagged(t.Kind.String(), t.Name), name)
	case *btf.Pointer:
		if proto, ok := t.Target.(*btf.FuncProto); ok {
			return protoString(proto, "(*"+name+")")
		}
		return declString(t.Target, "*"+name)
	case *btf.Const:
		return qualified("const", t.Type, name)
	case *btf.Volatile:
		return qualified("volatile", t.Type, name)
	case *btf.Restrict:
		return declString(t.Type, joinDecl("restrict", name))
	case *btf.Array:
		return declString(t.Type, fmt.Sprintf("%s[%d]", name, t.Nelems))
	case *btf.FuncProto:
		return protoString(t, name)
	}
	if target, ok := typeTagTarget(typ); ok {
		return declString(target, name)
	}
	return joinDecl(typ.TypeName(), name)
}

// qualified puts a qualifier in front of base types and after the star of
// pointers, so both "const char *" and "char *const" come out right.
func qualified(qual string, typ btf.Type, name string) string {
	if _, ok := typ.(*btf.Pointer); ok {
		return declString(typ, joinDecl(qual, name))
	}
	return qual + " " + declString(typ, name)
}

func tagged(kind, name string) string {
	if name == "" {
		return kind + " {...}"
	}
	return kind + " " + name
}

func joinDecl(base, name string) string {
	if name == "" {
		return base
	}
	return base + " " + name
}

func protoString(proto *btf.FuncProto, name string) string {
	params := make([]string, 0, len(proto.Params))
	for _, p := range proto.Params {
		params = append(params, declString(p.Type, p.Name))
	}
	if len(params) == 0 {
		params = append(params, "void")
	}
	return declString(proto.Return, name+"("+strings.Join(params, ", ")+")")
}

// FuncString renders the C prototype of fn, for instance
// "int ip_send_skb(struct net *net, struct sk_buff *skb)".
func FuncString(fn *btf.Func) string {
	proto, ok := fn.Type.(*btf.FuncProto)
	if !ok {
		return fn.Name + "(?)"
	}
	return protoString(proto, fn.Name)
}
