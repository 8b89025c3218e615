// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package encoder

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/cilium/ksnoop/pkg/btf"
	"github.com/cilium/ksnoop/pkg/btf/btftest"
	"github.com/cilium/ksnoop/pkg/tracespec"
)

func testTrace() *tracespec.Trace {
	return &tracespec.Trace{
		Func: btf.Func{
			Name:         "ip_send_skb",
			Address:      0xffffffff81000000,
			DeclaredArgs: 2,
		},
		Values: []btf.Value{
			{
				Name:      "skb->len",
				Type:      btf.Known(7),
				Size:      4,
				Offset:    0x70,
				Flags:     btf.FlagMember | btf.FlagPredicateGt,
				Predicate: 128,
			},
			{
				Name:    "return",
				Type:    btf.Known(3),
				Size:    4,
				BaseArg: btf.ReturnArg,
			},
		},
		Flags: tracespec.TraceEntry | tracespec.TraceReturn,
	}
}

func TestCompactEncoder_Trace(t *testing.T) {
	var buf bytes.Buffer
	p := NewCompactEncoder(&buf, Never)

	require.NoError(t, p.Encode(testTrace()))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "🔎 ip_send_skb @0xffffffff81000000 entry|return", lines[0])
	assert.Equal(t, "    skb->len                 arg0+0x70 size=4 flags=member|gt > 128", lines[1])
	assert.Equal(t, "    return                   return size=4 flags=none", lines[2])
}

func TestCompactEncoder_TracePlan(t *testing.T) {
	trace := testTrace()
	trace.Flags |= tracespec.TraceStack
	trace.FilterPid = 1234

	p := NewCompactEncoder(nil, Never)
	first, _, _ := strings.Cut(p.TraceToString(trace), "\n")
	assert.Equal(t, "🔎 ip_send_skb @0xffffffff81000000 entry|return|stack pid=1234", first)
}

func TestCompactEncoder_Func(t *testing.T) {
	i32 := btftest.Int("int", 4)
	db := btftest.New(btftest.Func("f", i32,
		btftest.Param("a", i32), btftest.Param("b", i32), btftest.Param("c", i32),
		btftest.Param("d", i32), btftest.Param("e", i32), btftest.Param("g", i32)))
	fn, err := btf.ExtractFunc(db, "f")
	require.NoError(t, err)
	fn.Module = "mymod"

	p := NewCompactEncoder(nil, Never)
	assert.Equal(t,
		"🔧 f [mymod] int f(int a, int b, int c, int d, int e, int g) (first 5 of 6 arguments traceable)",
		p.FuncToString(fn))

	assert.Equal(t, "🔧 bare bare()", p.FuncToString(&btf.Func{Name: "bare"}))
}

func TestCompactEncoder_Invalid(t *testing.T) {
	var buf bytes.Buffer
	for _, enc := range []ObjectEncoder{NewCompactEncoder(&buf, Never), NewJSONEncoder(&buf), NewYAMLEncoder(&buf)} {
		assert.ErrorIs(t, enc.Encode("nope"), ErrInvalidObject)
	}
	assert.Empty(t, buf.String())
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(&buf, FormatJSON, Never)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(testTrace()))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "entry|return", got["flags"])
	values := got["values"].([]interface{})
	require.Len(t, values, 2)
	first := values[0].(map[string]interface{})
	assert.Equal(t, "skb->len", first["name"])
	assert.Equal(t, "member|gt", first["flags"])
	assert.Equal(t, "7", first["type_id"])
	assert.Equal(t, float64(128), first["predicate"])
}

func TestYAMLEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(&buf, FormatYAML, Never)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(testTrace()))
	require.True(t, strings.HasPrefix(buf.String(), "---\n"))

	var got struct {
		Func struct {
			Name string `json:"name"`
		} `json:"func"`
		Values []struct {
			Name    string `json:"name"`
			BaseArg int    `json:"base_arg"`
		} `json:"values"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(strings.TrimPrefix(buf.String(), "---\n")), &got))
	assert.Equal(t, "ip_send_skb", got.Func.Name)
	require.Len(t, got.Values, 2)
	assert.Equal(t, btf.ReturnArg, got.Values[1].BaseArg)
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New(nil, "xml", Never)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
