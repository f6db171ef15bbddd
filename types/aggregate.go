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

package types

import "github.com/efficios/ctfmeta/name"

// Field is one (name, declaration) entry in a Struct or UntaggedVariant,
// with insertion order preserved exactly as encountered in the AST (§3.2,
// §4.5, testable property 1).
type Field struct {
	Name name.ID
	Decl Declaration
}

// Struct is the Declaration for CTF's «struct { ... }» type (§3.2). It owns
// an inner declaration scope for the typedefs/typealiases local to its
// body; that scope is opaque to package types (it is *scope.Scope, and
// types cannot import scope without an import cycle) so it is threaded
// through as an interface satisfied by *scope.Scope.
type Struct struct {
	declHeader
	Fields     []Field
	InnerScope Releasable
}

// Releasable is satisfied by *scope.Scope; Struct/UntaggedVariant hold
// their inner scope behind this interface purely to avoid an import cycle
// between types and scope.
type Releasable interface {
	Free()
}

// NewStruct creates an empty struct with the given inner scope. When the
// struct's last reference is released, it releases its own references on
// its fields and frees its inner scope in turn (§5: containers release
// what they hold).
func NewStruct(inner Releasable) *Struct {
	s := &Struct{InnerScope: inner}
	s.kind = KindStruct
	s.align = 1
	s.onRef = 1
	s.onFinal = func() {
		for _, f := range s.Fields {
			f.Decl.Release()
		}
		if s.InnerScope != nil {
			s.InnerScope.Free()
		}
	}
	return s
}

// AddField appends a field and sets the struct's alignment to 8: once any
// field exists the struct is byte aligned, whatever its fields' own
// alignments; an empty struct keeps alignment 1.
func (s *Struct) AddField(n name.ID, d Declaration) {
	d.Ref()
	s.Fields = append(s.Fields, Field{Name: n, Decl: d})
	s.align = 8
}

// HasField reports whether n is already a field name, per the uniqueness
// invariant §3.2/§8 enforces at the builder level.
func (s *Struct) HasField(n name.ID) bool {
	for _, f := range s.Fields {
		if f.Name == n {
			return true
		}
	}
	return false
}

func (s *Struct) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "struct", parent: parent}
}

// UntaggedVariant is the Declaration for a CTF «variant { ... }» body
// before it has been paired with a tag selector (§3.2, GLOSSARY). Its
// shape mirrors Struct exactly: an ordered field list plus an inner scope.
type UntaggedVariant struct {
	declHeader
	Fields     []Field
	InnerScope Releasable
}

func NewUntaggedVariant(inner Releasable) *UntaggedVariant {
	v := &UntaggedVariant{InnerScope: inner}
	v.kind = KindUntaggedVariant
	v.align = 1
	v.onRef = 1
	v.onFinal = func() {
		for _, f := range v.Fields {
			f.Decl.Release()
		}
		if v.InnerScope != nil {
			v.InnerScope.Free()
		}
	}
	return v
}

func (v *UntaggedVariant) AddField(n name.ID, d Declaration) {
	d.Ref()
	v.Fields = append(v.Fields, Field{Name: n, Decl: d})
	v.align = 8
}

func (v *UntaggedVariant) HasField(n name.ID) bool {
	for _, f := range v.Fields {
		if f.Name == n {
			return true
		}
	}
	return false
}

func (v *UntaggedVariant) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "untagged variant", parent: parent}
}

// Variant binds an UntaggedVariant to the path of the field that selects
// which member is active at decode time (§3.2).
type Variant struct {
	declHeader
	Untagged *UntaggedVariant
	Choice   name.ID // the qualified tag selector path, interned as one name
}

// NewVariant takes its own strong reference on untagged; per §4.5 the
// caller releases its own (now redundant) reference on untagged after this
// call returns.
func NewVariant(untagged *UntaggedVariant, choice name.ID) *Variant {
	untagged.Ref()
	v := &Variant{Untagged: untagged, Choice: choice}
	v.kind = KindVariant
	v.align = untagged.AlignBits()
	v.onRef = 1
	v.onFinal = func() { untagged.Release() }
	return v
}

func (v *Variant) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "variant", parent: parent}
}

// Array is the Declaration for a CTF fixed-length array declarator,
// «sub[N]» where N is a constant (§3.2, §4.3). Its alignment equals its
// element's (§8 invariant 3).
type Array struct {
	declHeader
	Length  uint64
	Element Declaration
}

func NewArray(length uint64, element Declaration) *Array {
	element.Ref()
	a := &Array{Length: length, Element: element}
	a.kind = KindArray
	a.align = element.AlignBits()
	a.onRef = 1
	a.onFinal = func() { element.Release() }
	return a
}

func (a *Array) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "array", parent: parent}
}

// Sequence is the Declaration for a CTF variable-length array declarator,
// «sub[len_field]» where len_field resolves to an Integer (§3.2, §4.3). Its
// alignment equals its element's (§8 invariant 3); the length type's
// alignment plays no part in this, matching the source.
type Sequence struct {
	declHeader
	LengthType *Integer
	Element    Declaration
}

func NewSequence(lengthType *Integer, element Declaration) *Sequence {
	lengthType.Ref()
	element.Ref()
	s := &Sequence{LengthType: lengthType, Element: element}
	s.kind = KindSequence
	s.align = element.AlignBits()
	s.onRef = 1
	s.onFinal = func() {
		lengthType.Release()
		element.Release()
	}
	return s
}

func (s *Sequence) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "sequence", parent: parent}
}
