// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btf

import (
	"testing"

	"github.com/cilium/ebpf/btf"
	"github.com/cilium/ksnoop/pkg/btf/btftest"
	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	char := btftest.Int("char", 1)
	i32 := btftest.Int("int", 4)
	sk := &btf.Struct{Name: "sock"}

	tests := []struct {
		typ  btf.Type
		want string
	}{
		{i32, "int"},
		{(*btf.Void)(nil), "void"},
		{&btf.Pointer{Target: sk}, "struct sock *"},
		{&btf.Pointer{Target: &btf.Const{Type: char}}, "const char *"},
		{&btf.Const{Type: &btf.Pointer{Target: char}}, "char *const"},
		{&btf.Pointer{Target: &btf.Pointer{Target: char}}, "char **"},
		{&btf.Union{}, "union {...}"},
		{&btf.Enum{Name: "tcp_state", Size: 4}, "enum tcp_state"},
		{&btf.Array{Type: i32, Nelems: 4}, "int [4]"},
		{&btf.Pointer{Target: &btf.FuncProto{Return: i32, Params: []btf.FuncParam{{Type: &btf.Pointer{Target: (*btf.Void)(nil)}}}}}, "int (*)(void *)"},
		{&btf.Typedef{Name: "u32", Type: i32}, "u32"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeString(tt.typ))
		})
	}
}

func TestFuncString(t *testing.T) {
	i32 := btftest.Int("int", 4)
	fn := btftest.Func("ip_send_skb", i32,
		btftest.Param("net", &btf.Pointer{Target: &btf.Struct{Name: "net"}}),
		btftest.Param("skb", &btf.Pointer{Target: &btf.Struct{Name: "sk_buff"}}),
	)
	assert.Equal(t, "int ip_send_skb(struct net *net, struct sk_buff *skb)", FuncString(fn))

	noArgs := btftest.Func("schedule", nil)
	assert.Equal(t, "void schedule(void)", FuncString(noArgs))
}
