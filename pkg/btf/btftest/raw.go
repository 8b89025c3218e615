// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Tetragon

package btftest

import (
	"bytes"
	"encoding/binary"

	"github.com/cilium/ebpf/btf"
)

// BTF kinds from include/uapi/linux/btf.h.
const (
	kindInt     = 1
	kindPointer = 2
	kindFunc    = 12
	kindProto   = 13
	kindTypeTag = 18
)

const (
	btfMagic      = 0xeb9f
	btfHeaderLen  = 24
	intSigned     = 1 << 24
	funcLinkageGl = 1
)

// rawWriter encodes raw (sectionless) BTF, the format of
// /sys/kernel/btf/vmlinux.
type rawWriter struct {
	types   bytes.Buffer
	strings bytes.Buffer
}

func newRawWriter() *rawWriter {
	w := &rawWriter{}
	w.strings.WriteByte(0)
	return w
}

func (w *rawWriter) str(s string) uint32 {
	if s == "" {
		return 0
	}
	off := uint32(w.strings.Len())
	w.strings.WriteString(s)
	w.strings.WriteByte(0)
	return off
}

func (w *rawWriter) typ(name string, kind, vlen uint32, sizeType uint32, extra ...uint32) {
	for _, v := range append([]uint32{w.str(name), kind<<24 | vlen, sizeType}, extra...) {
		binary.Write(&w.types, binary.LittleEndian, v)
	}
}

func (w *rawWriter) bytes() []byte {
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, struct {
		Magic     uint16
		Version   uint8
		Flags     uint8
		HdrLen    uint32
		TypeOff   uint32
		TypeLen   uint32
		StringOff uint32
		StringLen uint32
	}{
		Magic:     btfMagic,
		Version:   1,
		HdrLen:    btfHeaderLen,
		TypeLen:   uint32(w.types.Len()),
		StringOff: uint32(w.types.Len()),
		StringLen: uint32(w.strings.Len()),
	})
	out.Write(w.types.Bytes())
	out.Write(w.strings.Bytes())
	return out.Bytes()
}

// TypeTagSpec parses raw BTF declaring
//
//	[1] int (signed, 4 bytes)
//	[2] char (signed, 1 byte)
//	[3] type_tag "user" -> [2]
//	[4] pointer -> [3]                  char __user *
//	[5] func_proto int (char __user *buf)
//	[6] func copy_from_user_str [5]
//
// cilium/ebpf only creates type tag nodes while parsing BTF, so tests that
// need them go through the real parser.
func TypeTagSpec() (*btf.Spec, error) {
	w := newRawWriter()
	w.typ("int", kindInt, 0, 4, intSigned|32)
	w.typ("char", kindInt, 0, 1, intSigned|8)
	w.typ("user", kindTypeTag, 0, 2)
	w.typ("", kindPointer, 0, 3)
	w.typ("", kindProto, 1, 1, w.str("buf"), 4)
	w.typ("copy_from_user_str", kindFunc, funcLinkageGl, 5)
	return btf.LoadSpecFromReader(bytes.NewReader(w.bytes()))
}
