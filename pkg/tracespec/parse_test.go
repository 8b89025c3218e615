// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package tracespec

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want *Spec
	}{
		{"schedule", &Spec{Func: "schedule"}},
		{"  schedule  ", &Spec{Func: "schedule"}},
		{"f(p->c > 8, n)", &Spec{Func: "f", Args: []ArgSpec{
			{Arg: "p", Member: "c", Predicate: ">8"},
			{Arg: "n"},
		}}},
		{"ip_send_skb(skb->len>=128,return)", &Spec{Func: "ip_send_skb", Args: []ArgSpec{
			{Arg: "skb", Member: "len", Predicate: ">=128"},
			{Arg: "return"},
		}}},
		{"tcp_set_state(sk -> __sk_common . skc_state == TCP_CLOSE)", &Spec{Func: "tcp_set_state", Args: []ArgSpec{
			{Arg: "sk", Member: "__sk_common.skc_state", Predicate: "==TCP_CLOSE"},
		}}},
		{"f(x != -1, y < 0, z <= 10)", &Spec{Func: "f", Args: []ArgSpec{
			{Arg: "x", Predicate: "!=-1"},
			{Arg: "y", Predicate: "<0"},
			{Arg: "z", Predicate: "<=10"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		text  string
		token string
	}{
		{"", "end of"},
		{"f(", "end of"},
		{"f()", `")"`},
		{"f(a", "end of"},
		{"f(a b)", `"b"`},
		{"f(a,)", `")"`},
		{"f(a->)", `")"`},
		{"f(a->b.)", `")"`},
		{"f(a >)", `")"`},
		{"f(a > >)", `">"`},
		{"f(a) g", `"g"`},
		{"f g", `"g"`},
		{"f(a ? 5)", `"?"`},
		{"1f", `"1f"`},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.ErrorIs(t, err, ErrInvalidSyntax)
			assert.Contains(t, err.Error(), tt.token)
		})
	}
}

func TestParseLimits(t *testing.T) {
	_, err := Parse(strings.Repeat("f", MaxFuncNameLen))
	assert.NoError(t, err)

	_, err = Parse(strings.Repeat("f", MaxFuncNameLen+1))
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = Parse("f(a, b, c, d, e, return)")
	assert.NoError(t, err)

	_, err = Parse("f(a, b, c, d, e, g, return)")
	assert.ErrorIs(t, err, ErrTooManyArguments)
}

func TestSpecString(t *testing.T) {
	spec, err := Parse("f( p->a.b>8 ,n )")
	require.NoError(t, err)
	assert.Equal(t, "f(p->a.b >8, n)", spec.String())
	assert.Equal(t, "p->a.b", spec.Args[0].Name())

	again, err := Parse(spec.String())
	require.NoError(t, err)
	assert.Equal(t, spec, again)
}
