// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package encoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/cilium/ksnoop/pkg/btf"
	"github.com/cilium/ksnoop/pkg/logger"
	"github.com/cilium/ksnoop/pkg/tracespec"
)

var (
	ErrInvalidObject = errors.New("invalid object")
	ErrUnknownFormat = errors.New("unknown output format")
)

// ObjectEncoder writes resolved traces (*tracespec.Trace) and function
// signatures (*btf.Func).
type ObjectEncoder interface {
	Encode(v interface{}) error
}

// ColorMode defines color mode flags for compact output.
type ColorMode string

const (
	Always ColorMode = "always" // always enable colored output.
	Never  ColorMode = "never"  // disable colored output.
	Auto   ColorMode = "auto"   // automatically enable / disable colored output based on terminal settings.
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// New returns the encoder for format.
func New(w io.Writer, format string, colorMode ColorMode) (ObjectEncoder, error) {
	switch format {
	case FormatText, "":
		return NewCompactEncoder(w, colorMode), nil
	case FormatJSON:
		return NewJSONEncoder(w), nil
	case FormatYAML:
		return NewYAMLEncoder(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// CompactEncoder prints one header line per trace or function followed by
// one line per bound value.
type CompactEncoder struct {
	Writer  io.Writer
	Colorer *Colorer
}

// NewCompactEncoder initializes and returns a pointer to CompactEncoder.
func NewCompactEncoder(w io.Writer, colorMode ColorMode) *CompactEncoder {
	return &CompactEncoder{
		Writer:  w,
		Colorer: NewColorer(colorMode),
	}
}

// Encode implements ObjectEncoder.Encode.
func (p *CompactEncoder) Encode(v interface{}) error {
	var str string
	switch obj := v.(type) {
	case *tracespec.Trace:
		str = p.TraceToString(obj)
	case *btf.Func:
		str = p.FuncToString(obj)
	default:
		return fmt.Errorf("%w: %T", ErrInvalidObject, v)
	}
	logger.GetLogger().WithField("object", fmt.Sprintf("%T", v)).Debug("Encoding object")
	_, err := fmt.Fprintln(p.Writer, str)
	return err
}

// TraceToString renders the attach plan of a trace.
func (p *CompactEncoder) TraceToString(trace *tracespec.Trace) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 %s %s", p.Colorer.Target(&trace.Func), trace.Flags)
	if trace.FilterPid != 0 {
		fmt.Fprintf(&sb, " pid=%d", trace.FilterPid)
	}
	for i := range trace.Values {
		v := &trace.Values[i]
		line := fmt.Sprintf("    %-24s %s size=%d flags=%s %s",
			v.Name, p.Colorer.Location(v), v.Size, v.Flags, p.Colorer.Predicate(v))
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(line, " "))
	}
	return sb.String()
}

// FuncToString renders a function prototype with its attach point.
func (p *CompactEncoder) FuncToString(fn *btf.Func) string {
	proto := fn.Name + "()"
	if fn.BTF() != nil {
		proto = btf.FuncString(fn.BTF())
	}
	str := fmt.Sprintf("🔧 %s %s", p.Colorer.Target(fn), proto)
	if fn.Truncated() {
		str += p.Colorer.Yellow.Sprintf(" (first %d of %d arguments traceable)", len(fn.Args), fn.DeclaredArgs)
	}
	return str
}

// JSONEncoder writes one JSON object per line.
type JSONEncoder struct {
	enc *json.Encoder
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{enc: json.NewEncoder(w)}
}

// Encode implements ObjectEncoder.Encode.
func (e *JSONEncoder) Encode(v interface{}) error {
	switch v.(type) {
	case *tracespec.Trace, *btf.Func:
	default:
		return fmt.Errorf("%w: %T", ErrInvalidObject, v)
	}
	return e.enc.Encode(v)
}

// YAMLEncoder writes a stream of YAML documents.
type YAMLEncoder struct {
	Writer io.Writer
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{Writer: w}
}

// Encode implements ObjectEncoder.Encode.
func (e *YAMLEncoder) Encode(v interface{}) error {
	switch v.(type) {
	case *tracespec.Trace, *btf.Func:
	default:
		return fmt.Errorf("%w: %T", ErrInvalidObject, v)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.Writer, "---\n%s", out)
	return err
}
