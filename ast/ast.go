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

// Package ast holds the set of types produced by the CTF metadata parser
// (out of scope for this module — see §6.1) and consumed by package
// elaborate. It is a pure data contract: no node type carries behavior.
package ast

// Node is implemented by every AST node type. It exists only so that
// functions that want to accept "any AST node" have a type to spell.
type Node interface {
	isNode()
}

// Pos is the optional source location carried by a node, preserved from
// the parser when present. A zero Pos means "unknown".
type Pos struct {
	File   string
	Line   int
	Column int
}

// Root is the top of the AST tree: one parsed metadata document.
type Root struct {
	Pos   Pos
	Decls []Node // root-level typedefs, typealiases, and anonymous specifiers
	Trace []*Trace
	Stream []*Stream
	Event []*Event
}

func (*Root) isNode() {}

// Typedef declares one or more aliases in the form
// «typedef <specifiers> <declarators>;».
type Typedef struct {
	Pos         Pos
	Specifiers  []Node
	Declarators []*Declarator
}

func (*Typedef) isNode() {}

// Typealias declares a single alias in the form
// «typealias <target> := <alias>;».
type Typealias struct {
	Pos    Pos
	Target TypeAndDeclarator
	Alias  TypeAndDeclarator
}

func (*Typealias) isNode() {}

// TypeAndDeclarator pairs a specifier list with an (optional) declarator,
// the shape used on both sides of a typealias.
type TypeAndDeclarator struct {
	Specifiers  []Node
	Declarators []*Declarator // typealias target/alias only ever has one meaningful slot; see §9 open question
}

// FieldDeclaration declares one or more fields inside an aggregate body,
// in the form «<specifiers> <declarators>;».
type FieldDeclaration struct {
	Pos         Pos
	Specifiers  []Node
	Declarators []*Declarator
}

func (*FieldDeclaration) isNode() {}

// Pointer is one pointer qualifier level in a declarator.
type Pointer struct {
	Const bool
}

// Declarator is either an identifier declarator (optionally pointer
// qualified) or a nested array/sequence declarator, per §6.1.
type Declarator struct {
	Pos Pos

	// Identifier form.
	Name        string // empty means anonymous
	Pointers    []Pointer
	BitfieldLen Node // non-nil => Unsupported("gcc bitfields"), see §4.3 step 1

	// Nested form: set when this declarator is «sub[length]».
	LengthList []*UnaryExpression
	Sub        *Declarator
}

func (d *Declarator) isNode() {}

// IsNested reports whether this is a «sub[length]» declarator rather than a
// plain identifier declarator.
func (d *Declarator) IsNested() bool {
	return d.Sub != nil || d.LengthList != nil
}

// Link describes how a unary expression in a dotted/arrow path chains to
// its predecessor.
type Link int

const (
	LinkNone Link = iota
	LinkDot
	LinkArrow
	LinkDotDotDot
)

// UnaryExpressionKind discriminates the payload carried by UnaryExpression.
type UnaryExpressionKind int

const (
	UnsignedConstant UnaryExpressionKind = iota
	SignedConstant
	StringLiteral
)

// UnaryExpression is one token of a dotted path or a CTF expression
// right-hand side, per §6.1.
type UnaryExpression struct {
	Pos    Pos
	Kind   UnaryExpressionKind
	Link   Link
	UValue uint64
	SValue int64
	SText  string
}

func (*UnaryExpression) isNode() {}

// CtfExpression is a «left = right» or «left := right» assignment inside a
// trace/stream/event body, e.g. «byte_order = be» or «stream_id = 0».
type CtfExpression struct {
	Pos   Pos
	Left  []*UnaryExpression
	Right []*UnaryExpression
}

func (*CtfExpression) isNode() {}

// TypeSpecifierKind discriminates what a TypeSpecifier carries: an
// integer/float/string/struct/variant/enum type, or a type alias identifier.
type TypeSpecifierKind int

const (
	SpecInteger TypeSpecifierKind = iota
	SpecFloatingPoint
	SpecString
	SpecStruct
	SpecVariant
	SpecEnum
	SpecIdentifier // a plain type-alias identifier, e.g. "uint32_t"
)

// TypeSpecifier is the tagged union of declaration-specifier list entries
// described in §6.1.
type TypeSpecifier struct {
	Pos Pos
	Kind TypeSpecifierKind

	// SpecIdentifier
	IDValue string

	// SpecInteger / SpecFloatingPoint / SpecString: attribute expressions,
	// each of the form name = value, modeled as CtfExpression with a single
	// element on each side.
	Attrs []*CtfExpression

	// SpecStruct / SpecVariant / SpecEnum
	Name     string // optional tag name
	HasBody  bool
	Decls    []Node // typedef/typealias/field-declaration children
	Choice   string // SpecVariant only: tag selector path, empty if untagged

	// SpecEnum only
	Container    []Node // specifier list for the underlying integer type
	Enumerators  []*Enumerator
}

func (*TypeSpecifier) isNode() {}

// Enumerator is one «name = v» or «name = a ... b» entry in an enum body.
type Enumerator struct {
	Pos    Pos
	Name   string
	Values []*UnaryExpression // length 1 (single value) or 2 (range)
}
