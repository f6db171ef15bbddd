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

package elaborate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efficios/ctfmeta/ast"
	"github.com/efficios/ctfmeta/name"
	"github.com/efficios/ctfmeta/scope"
	"github.com/efficios/ctfmeta/types"
)

// --- small AST-building helpers shared across this file ---

func key(s string) []*ast.UnaryExpression {
	return []*ast.UnaryExpression{{Kind: ast.StringLiteral, SText: s}}
}

func unsigned(v uint64) []*ast.UnaryExpression {
	return []*ast.UnaryExpression{{Kind: ast.UnsignedConstant, UValue: v}}
}

func str(s string) []*ast.UnaryExpression {
	return []*ast.UnaryExpression{{Kind: ast.StringLiteral, SText: s}}
}

func attr(name string, value []*ast.UnaryExpression) *ast.CtfExpression {
	return &ast.CtfExpression{Left: key(name), Right: value}
}

func identSpec(name string) []ast.Node {
	return []ast.Node{&ast.TypeSpecifier{Kind: ast.SpecIdentifier, IDValue: name}}
}

func u32AliasDecl() *ast.Typealias {
	return &ast.Typealias{
		Target: ast.TypeAndDeclarator{
			Specifiers: []ast.Node{&ast.TypeSpecifier{
				Kind: ast.SpecInteger,
				Attrs: []*ast.CtfExpression{
					attr("size", unsigned(32)),
					attr("signed", unsigned(0)),
					attr("align", unsigned(32)),
				},
			}},
		},
		Alias: ast.TypeAndDeclarator{
			Specifiers:  identSpec("uint32_t"),
			Declarators: []*ast.Declarator{{}},
		},
	}
}

func traceBlock() *ast.Trace {
	return &ast.Trace{Children: []ast.Node{
		&ast.CtfExpression{Left: key("major"), Right: unsigned(1)},
		&ast.CtfExpression{Left: key("minor"), Right: unsigned(8)},
		&ast.CtfExpression{Left: key("uuid"), Right: str("11111111-2222-3333-4444-555555555555")},
		&ast.CtfExpression{Left: key("word_size"), Right: unsigned(64)},
	}}
}

func newElaborator() *elaborator {
	return &elaborator{names: name.New(), bo: types.LittleEndian}
}

// --- S1: integer alias + struct ---

func TestS1IntegerAliasAndStruct(t *testing.T) {
	c := &Context{Names: name.New()}
	root := &ast.Root{
		Decls: []ast.Node{
			u32AliasDecl(),
			&ast.TypeSpecifier{
				Kind:    ast.SpecStruct,
				Name:    "hdr",
				HasBody: true,
				Decls: []ast.Node{&ast.FieldDeclaration{
					Specifiers:  identSpec("uint32_t"),
					Declarators: []*ast.Declarator{{Name: "magic"}, {Name: "version"}},
				}},
			},
		},
		Trace: []*ast.Trace{traceBlock()},
	}

	tr, err := c.ConstructMetadata(root, types.LittleEndian)
	require.NoError(t, err)

	alias, ok := tr.RootScope.LookupTypeAlias(c.Names.Intern("uint32_t"))
	require.True(t, ok)
	i, ok := alias.(*types.Integer)
	require.True(t, ok)
	assert.EqualValues(t, 32, i.SizeBits)
	assert.False(t, i.Signed)
	assert.EqualValues(t, 32, i.AlignBits())
	assert.Equal(t, types.LittleEndian, i.ByteOrder)

	hdr, ok := tr.RootScope.LookupStruct(c.Names.Intern("hdr"))
	require.True(t, ok)
	require.Len(t, hdr.Fields, 2)
	assert.Equal(t, "magic", c.Names.Lookup(hdr.Fields[0].Name))
	assert.Equal(t, "version", c.Names.Lookup(hdr.Fields[1].Name))
	assert.Same(t, i, hdr.Fields[0].Decl)
	assert.Same(t, i, hdr.Fields[1].Decl)

	assert.EqualValues(t, 1, tr.Major)
	assert.EqualValues(t, 8, tr.Minor)
	assert.EqualValues(t, 64, tr.WordSize)
}

// --- S2: enum on unsigned container ---

func TestS2EnumRanges(t *testing.T) {
	c := &Context{Names: name.New()}
	u8 := &ast.Typealias{
		Target: ast.TypeAndDeclarator{Specifiers: []ast.Node{&ast.TypeSpecifier{
			Kind: ast.SpecInteger,
			Attrs: []*ast.CtfExpression{
				attr("size", unsigned(8)),
				attr("signed", unsigned(0)),
			},
		}}},
		Alias: ast.TypeAndDeclarator{Specifiers: identSpec("uint8_t"), Declarators: []*ast.Declarator{{}}},
	}
	stateEnum := &ast.TypeSpecifier{
		Kind:      ast.SpecEnum,
		Name:      "state",
		HasBody:   true,
		Container: identSpec("uint8_t"),
		Enumerators: []*ast.Enumerator{
			{Name: "IDLE", Values: []*ast.UnaryExpression{{Kind: ast.UnsignedConstant, UValue: 0}}},
			{Name: "RUN", Values: []*ast.UnaryExpression{
				{Kind: ast.UnsignedConstant, UValue: 1}, {Kind: ast.UnsignedConstant, UValue: 3},
			}},
			{Name: "ERR", Values: []*ast.UnaryExpression{{Kind: ast.UnsignedConstant, UValue: 255}}},
		},
	}
	root := &ast.Root{Decls: []ast.Node{u8, stateEnum}, Trace: []*ast.Trace{traceBlock()}}

	tr, err := c.ConstructMetadata(root, types.LittleEndian)
	require.NoError(t, err)

	en, ok := tr.RootScope.LookupEnum(c.Names.Intern("state"))
	require.True(t, ok)
	require.Len(t, en.Ranges, 3)
	assert.Equal(t, types.EnumRange{Start: 0, End: 0, Name: c.Names.Intern("IDLE")}, en.Ranges[0])
	assert.Equal(t, types.EnumRange{Start: 1, End: 3, Name: c.Names.Intern("RUN")}, en.Ranges[1])
	assert.Equal(t, types.EnumRange{Start: 255, End: 255, Name: c.Names.Intern("ERR")}, en.Ranges[2])
}

// --- S3: variant with tag ---

func TestS3VariantWithTag(t *testing.T) {
	c := &Context{Names: name.New()}
	u32 := u32AliasDecl()
	evStruct := &ast.TypeSpecifier{
		Kind:    ast.SpecStruct,
		Name:    "ev",
		HasBody: true,
		Decls: []ast.Node{
			&ast.FieldDeclaration{Specifiers: identSpec("uint32_t"), Declarators: []*ast.Declarator{{Name: "tag"}}},
			&ast.FieldDeclaration{
				Specifiers: []ast.Node{&ast.TypeSpecifier{
					Kind:    ast.SpecVariant,
					HasBody: true,
					Choice:  "tag",
					Decls: []ast.Node{
						&ast.FieldDeclaration{Specifiers: identSpec("uint32_t"), Declarators: []*ast.Declarator{{Name: "a"}}},
						&ast.FieldDeclaration{Specifiers: []ast.Node{&ast.TypeSpecifier{Kind: ast.SpecString}}, Declarators: []*ast.Declarator{{Name: "b"}}},
					},
				}},
				Declarators: []*ast.Declarator{{Name: "payload"}},
			},
		},
	}
	root := &ast.Root{Decls: []ast.Node{u32, evStruct}, Trace: []*ast.Trace{traceBlock()}}

	tr, err := c.ConstructMetadata(root, types.LittleEndian)
	require.NoError(t, err)

	ev, ok := tr.RootScope.LookupStruct(c.Names.Intern("ev"))
	require.True(t, ok)
	require.Len(t, ev.Fields, 2)
	assert.Equal(t, "tag", c.Names.Lookup(ev.Fields[0].Name))
	assert.Equal(t, "payload", c.Names.Lookup(ev.Fields[1].Name))

	v, ok := ev.Fields[1].Decl.(*types.Variant)
	require.True(t, ok)
	assert.Equal(t, c.Names.Intern("tag"), v.Choice)
	require.Len(t, v.Untagged.Fields, 2)
	assert.Equal(t, "a", c.Names.Lookup(v.Untagged.Fields[0].Name))
	assert.Equal(t, "b", c.Names.Lookup(v.Untagged.Fields[1].Name))
	_, isString := v.Untagged.Fields[1].Decl.(*types.String)
	assert.True(t, isString)
}

// --- S4: missing mandatory trace field ---

func TestS4MissingMandatoryTraceField(t *testing.T) {
	c := &Context{Names: name.New()}
	root := &ast.Root{Trace: []*ast.Trace{{Children: []ast.Node{
		&ast.CtfExpression{Left: key("major"), Right: unsigned(1)},
		&ast.CtfExpression{Left: key("minor"), Right: unsigned(8)},
		&ast.CtfExpression{Left: key("word_size"), Right: unsigned(64)},
	}}}}

	_, err := c.ConstructMetadata(root, types.LittleEndian)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindMissingMandatory, e.Kind)
	assert.Contains(t, e.Message, "uuid")
}

// --- S5: pointer without a pre-aliased pointer type ---

func TestS5PointerWithoutAlias(t *testing.T) {
	c := &Context{Names: name.New()}
	root := &ast.Root{
		Decls: []ast.Node{&ast.TypeSpecifier{
			Kind:    ast.SpecStruct,
			Name:    "s",
			HasBody: true,
			Decls: []ast.Node{&ast.FieldDeclaration{
				Specifiers:  identSpec("int"),
				Declarators: []*ast.Declarator{{Name: "p", Pointers: []ast.Pointer{{}}}},
			}},
		}},
		Trace: []*ast.Trace{traceBlock()},
	}

	_, err := c.ConstructMetadata(root, types.LittleEndian)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindUndefined, e.Kind)
}

// --- S6: duplicate field in the same aggregate ---

func TestS6DuplicateField(t *testing.T) {
	c := &Context{Names: name.New()}
	u32 := u32AliasDecl()
	root := &ast.Root{
		Decls: []ast.Node{u32, &ast.TypeSpecifier{
			Kind:    ast.SpecStruct,
			Name:    "s",
			HasBody: true,
			Decls: []ast.Node{&ast.FieldDeclaration{
				Specifiers:  identSpec("uint32_t"),
				Declarators: []*ast.Declarator{{Name: "x"}, {Name: "x"}},
			}},
		}},
		Trace: []*ast.Trace{traceBlock()},
	}

	_, err := c.ConstructMetadata(root, types.LittleEndian)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindAlreadyDefined, e.Kind)
}

// --- boundary cases called out in §8 ---

func TestIntegerAlignDivisibleByEightDefaultsToEight(t *testing.T) {
	e := newElaborator()
	spec := &ast.TypeSpecifier{Attrs: []*ast.CtfExpression{attr("size", unsigned(32))}}
	d, err := e.buildInteger(spec)
	require.NoError(t, err)
	assert.EqualValues(t, 8, d.AlignBits())
}

func TestFloatAlignNotDivisibleByEightDefaultsToOne(t *testing.T) {
	e := newElaborator()
	spec := &ast.TypeSpecifier{Attrs: []*ast.CtfExpression{
		attr("exp_dig", unsigned(5)),
		attr("mant_dig", unsigned(10)), // 15 bits total, not a multiple of 8
	}}
	d, err := e.buildFloat(spec)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.AlignBits())
}

func TestEnumeratorRangeLengthThreeIsInvalidStructure(t *testing.T) {
	e := newElaborator()
	en := &ast.Enumerator{Name: "bad", Values: []*ast.UnaryExpression{
		{Kind: ast.UnsignedConstant, UValue: 1},
		{Kind: ast.UnsignedConstant, UValue: 2},
		{Kind: ast.UnsignedConstant, UValue: 3},
	}}
	_, _, err := e.enumeratorRange(en, false, 0, false)
	require.Error(t, err)
	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, KindInvalidStructure, ee.Kind)
}

func TestByteOrderStringXYZIsInvalidAttribute(t *testing.T) {
	e := newElaborator()
	spec := &ast.TypeSpecifier{Attrs: []*ast.CtfExpression{
		attr("size", unsigned(32)),
		attr("byte_order", str("XYZ")),
	}}
	_, err := e.buildInteger(spec)
	require.Error(t, err)
	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, KindInvalidAttribute, ee.Kind)
}

func TestMalformedUUIDIsParseValue(t *testing.T) {
	c := &Context{Names: name.New()}
	root := &ast.Root{Trace: []*ast.Trace{{Children: []ast.Node{
		&ast.CtfExpression{Left: key("major"), Right: unsigned(1)},
		&ast.CtfExpression{Left: key("minor"), Right: unsigned(8)},
		&ast.CtfExpression{Left: key("word_size"), Right: unsigned(64)},
		&ast.CtfExpression{Left: key("uuid"), Right: str("not-a-uuid")},
	}}}}

	_, err := c.ConstructMetadata(root, types.LittleEndian)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindParseValue, e.Kind)
}

// --- reference-ownership regression: every declSpecifierVisit path returns
// an owned reference (not a borrowed one), the invariant resolveDeclarator
// depends on.

func TestLookupTypeSpecifierReturnsOwnedReference(t *testing.T) {
	e := newElaborator()
	sc := scope.New(nil)
	alias := types.NewInteger(32, types.LittleEndian, false, 0)
	require.NoError(t, sc.RegisterTypeAlias(e.names.Intern("uint32_t"), alias))
	alias.Release() // scope now holds the only reference

	got, err := e.lookupTypeSpecifier(sc, identSpec("uint32_t"), ast.Pos{})
	require.NoError(t, err)
	got.Release() // should not drop the scope's own reference to zero

	_, ok := sc.LookupTypeAlias(e.names.Intern("uint32_t"))
	assert.True(t, ok, "the scope's own registered reference must survive releasing the caller's returned copy")
}

func TestStructTagLookupWithoutBodyReturnsOwnedReference(t *testing.T) {
	e := newElaborator()
	sc := scope.New(nil)
	s := types.NewStruct(noopFree{})
	require.NoError(t, sc.RegisterStruct(e.names.Intern("hdr"), s))
	s.Release()

	got, err := e.buildOrLookupStruct(sc, &ast.TypeSpecifier{Kind: ast.SpecStruct, Name: "hdr"})
	require.NoError(t, err)
	got.Release()

	_, ok := sc.LookupStruct(e.names.Intern("hdr"))
	assert.True(t, ok)
}

type noopFree struct{}

func (noopFree) Free() {}
