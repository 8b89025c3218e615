// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"reflect"

	"github.com/cilium/ebpf/btf"
)

var ebpfBTFPkg = reflect.TypeOf(btf.Int{}).PkgPath()

// typeTagTarget returns the type annotated by a BTF type tag such as
// __user or __rcu. cilium/ebpf does not export the tag kind, only its Type
// field, so the tag is recognised by name.
func typeTagTarget(typ btf.Type) (btf.Type, bool) {
	v := reflect.ValueOf(typ)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, false
	}
	st := v.Elem()
	if st.Kind() != reflect.Struct || st.Type().Name() != "typeTag" || st.Type().PkgPath() != ebpfBTFPkg {
		return nil, false
	}
	field := st.FieldByName("Type")
	if !field.IsValid() || !field.CanInterface() {
		return nil, false
	}
	target, ok := field.Interface().(btf.Type)
	return target, ok && target != nil
}
