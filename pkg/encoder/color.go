// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package encoder

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/cilium/ksnoop/pkg/btf"
)

type Colorer struct {
	Colors  []*color.Color
	Red     *color.Color
	Green   *color.Color
	Blue    *color.Color
	Cyan    *color.Color
	Magenta *color.Color
	Yellow  *color.Color
}

func NewColorer(when ColorMode) *Colorer {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	blue := color.New(color.FgBlue)
	cyan := color.New(color.FgCyan)
	magenta := color.New(color.FgMagenta)
	yellow := color.New(color.FgYellow)

	c := &Colorer{
		Red:     red,
		Green:   green,
		Blue:    blue,
		Cyan:    cyan,
		Magenta: magenta,
		Yellow:  yellow,
	}

	c.Colors = []*color.Color{
		red, green, blue,
		cyan, magenta, yellow,
	}
	switch when {
	case Always:
		c.enable()
	case Never:
		c.disable()
	case Auto:
		c.auto()
	}
	return c
}

func (c *Colorer) auto() {
	for _, v := range c.Colors {
		if color.NoColor { // NoColor is global and set dynamically
			v.DisableColor()
		} else {
			v.EnableColor()
		}
	}
}

func (c *Colorer) enable() {
	for _, v := range c.Colors {
		v.EnableColor()
	}
}

func (c *Colorer) disable() {
	for _, v := range c.Colors {
		v.DisableColor()
	}
}

// Target renders an attach point, the module in yellow when there is one.
func (c *Colorer) Target(fn *btf.Func) string {
	name := c.Magenta.Sprint(fn.Name)
	if fn.Module != "" {
		name = fmt.Sprintf("%s %s", name, c.Yellow.Sprintf("[%s]", fn.Module))
	}
	if fn.Address != 0 {
		name = fmt.Sprintf("%s %s", name, c.Blue.Sprintf("@0x%x", fn.Address))
	}
	return name
}

// Location renders where a value is read from: the argument register or the
// return value, plus the member offset.
func (c *Colorer) Location(v *btf.Value) string {
	base := fmt.Sprintf("arg%d", v.BaseArg)
	if v.IsReturn() {
		base = btf.ReturnName
	}
	if v.Flags.Has(btf.FlagMember) {
		base = fmt.Sprintf("%s+0x%x", base, v.Offset)
	}
	return c.Cyan.Sprint(base)
}

// Predicate renders the comparison attached to v, or "" when there is none.
func (c *Colorer) Predicate(v *btf.Value) string {
	if !v.HasPredicate() {
		return ""
	}
	return c.Red.Sprintf("%s %d", predicateOp(v.Flags), v.Predicate)
}

func predicateOp(f btf.Flags) string {
	switch f & btf.FlagPredicateMask {
	case btf.FlagPredicateEq:
		return "=="
	case btf.FlagPredicateNotEq:
		return "!="
	case btf.FlagPredicateGt:
		return ">"
	case btf.FlagPredicateGt | btf.FlagPredicateEq:
		return ">="
	case btf.FlagPredicateLt:
		return "<"
	case btf.FlagPredicateLt | btf.FlagPredicateEq:
		return "<="
	}
	return "?"
}
