// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package types holds the elaborated type model (§3.2): the polymorphic,
// reference-counted Declaration objects that back a trace's type system.
package types

// ByteOrder is the wire byte order of an integer or float declaration.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// Kind discriminates the concrete shape a Declaration carries.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindEnum
	KindStruct
	KindUntaggedVariant
	KindVariant
	KindArray
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "floating_point"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindUntaggedVariant:
		return "untagged variant"
	case KindVariant:
		return "variant"
	case KindArray:
		return "array"
	case KindSequence:
		return "sequence"
	default:
		return "<unknown kind>"
	}
}

// Definition is the runtime-instance hook materialized when a Struct
// declaration is installed at a top level (packet.context, event.header,
// event.context, event.fields — see §4.7). The elaborator only needs to be
// able to invoke it and chain definition scopes through it; the definition
// scope implementation itself belongs to the out-of-scope playback
// subsystem (§1), so it is modeled here as an opaque interface the decoder
// implements.
type Definition interface {
	// Name is the label this definition reports. The definitions built in
	// this package report their declaration kind (e.g. "struct"); the
	// elaborator's top-level scope wrapper reports a contextual label such
	// as "stream.packet.context" or "event.context". The event.fields
	// definition is created without a contextual label.
	Name() string
}

// DefinitionScope is the chain of materialized definitions an instantiate
// hook is threaded through. It is supplied by the (out of scope) decoder;
// the elaborator only plumbs it along, never inspects it.
type DefinitionScope interface {
	// Parent returns the enclosing definition scope, or nil at the root.
	Parent() DefinitionScope
}

// Declaration is a polymorphic, shared, reference-counted type object. Every
// concrete declaration kind embeds declHeader, which carries the reference
// count and the common alignment/instantiate machinery described in §3.2.
//
// Unlike the source this is ported from (which walks is-a relationships via
// container_of on a C struct), Go expresses the same "is-a" relationship as
// a closed set of concrete pointer types satisfying this interface — a
// type switch on Kind() replaces the cast (§9).
type Declaration interface {
	Kind() Kind
	AlignBits() uint32
	// Instantiate materializes a runtime definition of this declaration,
	// chained to parent. offsetBits/index are decoder-assigned placement
	// hints threaded through unexamined, per §4.7/§6.3.
	Instantiate(parent DefinitionScope, offsetBits uint64, index uint64) Definition

	// Ref/Release implement the shared-ownership discipline of §3.2/§5:
	// every strong holder of a Declaration must Ref it on acquisition (if
	// it intends to outlive the scope/builder that handed it over) and
	// Release it exactly once when done. Declarations with no outstanding
	// references are eligible for collection by the host runtime's normal
	// GC; Ref/Release here track logical ownership, not memory, matching
	// the "scope-bound ownership" re-architecture of §9.
	Ref()
	Release()
	refCount() int32
}

// declHeader is embedded by every concrete Declaration.
type declHeader struct {
	kind    Kind
	align   uint32
	onRef   int32
	onFinal func()
}

func (h *declHeader) Kind() Kind        { return h.kind }
func (h *declHeader) AlignBits() uint32 { return h.align }
func (h *declHeader) Ref()              { h.onRef++ }
func (h *declHeader) refCount() int32   { return h.onRef }

func (h *declHeader) Release() {
	h.onRef--
	if h.onRef == 0 && h.onFinal != nil {
		h.onFinal()
		h.onFinal = nil
	}
}

// defaultAlign implements §3.2's alignment default rule: 1 bit when
// sizeBits is not a multiple of 8, 8 bits otherwise. explicit, when
// non-zero, always wins.
func defaultAlign(sizeBits uint32, explicit uint32) uint32 {
	if explicit != 0 {
		return explicit
	}
	if sizeBits%8 != 0 {
		return 1
	}
	return 8
}

// Integer is the Declaration for CTF's «integer { ... }» type (§3.2).
type Integer struct {
	declHeader
	SizeBits  uint32
	ByteOrder ByteOrder
	Signed    bool
}

// NewInteger constructs an Integer declaration with the §3.2 alignment
// default applied when explicitAlign is 0.
func NewInteger(sizeBits uint32, order ByteOrder, signed bool, explicitAlign uint32) *Integer {
	return &Integer{
		declHeader: declHeader{kind: KindInteger, align: defaultAlign(sizeBits, explicitAlign), onRef: 1},
		SizeBits:   sizeBits,
		ByteOrder:  order,
		Signed:     signed,
	}
}

func (i *Integer) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "integer", parent: parent}
}

// Float is the Declaration for CTF's «floating_point { ... }» type (§3.2).
type Float struct {
	declHeader
	MantDig   uint32
	ExpDig    uint32
	ByteOrder ByteOrder
}

// NewFloat constructs a Float declaration with the §3.2 alignment default
// applied (based on mantDig+expDig) when explicitAlign is 0.
func NewFloat(mantDig, expDig uint32, order ByteOrder, explicitAlign uint32) *Float {
	return &Float{
		declHeader: declHeader{kind: KindFloat, align: defaultAlign(mantDig+expDig, explicitAlign), onRef: 1},
		MantDig:    mantDig,
		ExpDig:     expDig,
		ByteOrder:  order,
	}
}

func (f *Float) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "floating_point", parent: parent}
}

// Encoding is the text encoding of a String declaration.
type Encoding int

const (
	UTF8 Encoding = iota
	ASCII
)

// String is the Declaration for CTF's «string { ... }» type (§3.2). It has
// byte alignment regardless of encoding.
type String struct {
	declHeader
	Encoding Encoding
}

// NewString constructs a String declaration. Default encoding is UTF8.
func NewString(encoding Encoding) *String {
	return &String{declHeader: declHeader{kind: KindString, align: 8, onRef: 1}, Encoding: encoding}
}

func (s *String) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "string", parent: parent}
}

// instance is the trivial Definition used by the declaration kinds whose
// runtime materialization has no elaborator-visible state; the decoder
// (out of scope, §1) is expected to replace it with a richer type that
// still satisfies Definition.
type instance struct {
	name   string
	parent DefinitionScope
}

func (i *instance) Name() string { return i.name }
