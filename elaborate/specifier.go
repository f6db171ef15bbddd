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
	"github.com/efficios/ctfmeta/ast"
	"github.com/efficios/ctfmeta/scope"
	"github.com/efficios/ctfmeta/types"
)

// declSpecifierVisit is §4.6: dispatch on the first specifier node in the
// list. Per the open question recorded in SPEC_FULL.md, any specifiers
// after the first are ignored — "we are only taking the first one",
// preserved unchanged from the source.
func (e *elaborator) declSpecifierVisit(sc *scope.Scope, specifiers []ast.Node) (types.Declaration, error) {
	if len(specifiers) == 0 {
		return nil, newErr(KindInvalidStructure, ast.Pos{}, "empty declaration-specifier list")
	}
	spec, ok := specifiers[0].(*ast.TypeSpecifier)
	if !ok {
		return nil, newErr(KindInvalidStructure, ast.Pos{}, "unrecognised declaration specifier %T", specifiers[0])
	}
	switch spec.Kind {
	case ast.SpecStruct:
		return e.buildOrLookupStruct(sc, spec)
	case ast.SpecVariant:
		return e.buildOrLookupVariant(sc, spec)
	case ast.SpecEnum:
		return e.buildOrLookupEnum(sc, spec)
	case ast.SpecInteger:
		return e.buildInteger(spec)
	case ast.SpecFloatingPoint:
		return e.buildFloat(spec)
	case ast.SpecString:
		return e.buildString(spec)
	case ast.SpecIdentifier:
		return e.lookupTypeSpecifier(sc, specifiers, spec.Pos)
	default:
		return nil, newErr(KindInvalidStructure, spec.Pos, "unrecognised specifier kind %d", spec.Kind)
	}
}

// lookupTypeSpecifier implements §4.5's last item: concatenate the
// specifier tokens, intern, and look the result up as a type alias. It
// serves bare type-alias identifiers only; "struct S"/"variant V"/"enum E"
// references without a body are resolved by buildOrLookup{Struct,Variant,
// Enum} in the scope's struct/variant/enum namespaces instead.
//
// sc.LookupTypeAlias hands back a borrowed reference; declSpecifierVisit's
// contract is to always return an owned one (resolveDeclarator relies on
// this uniformly across all seven specifier kinds), so this takes its own
// Ref before returning.
func (e *elaborator) lookupTypeSpecifier(sc *scope.Scope, specifiers []ast.Node, pos ast.Pos) (types.Declaration, error) {
	id := e.names.Intern(specifierText(specifiers))
	d, ok := sc.LookupTypeAlias(id)
	if !ok {
		return nil, newErr(KindUndefined, pos, "type alias %q not found", e.names.Lookup(id))
	}
	d.Ref()
	return d, nil
}

func (e *elaborator) buildInteger(spec *ast.TypeSpecifier) (types.Declaration, error) {
	sizeAttr, ok := findAttr(spec.Attrs, "size")
	if !ok {
		return nil, newErr(KindInvalidAttribute, spec.Pos, "integer type missing mandatory attribute \"size\"")
	}
	size, ok := attrUnsigned(sizeAttr)
	if !ok {
		return nil, newErr(KindInvalidAttribute, spec.Pos, "integer attribute \"size\" must be an unsigned constant")
	}

	signed := false
	if a, ok := findAttr(spec.Attrs, "signed"); ok {
		v, ok := attrBool(a)
		if !ok {
			return nil, newErr(KindInvalidAttribute, spec.Pos, "integer attribute \"signed\" has an invalid value")
		}
		signed = v
	}

	order := e.bo
	if a, ok := findAttr(spec.Attrs, "byte_order"); ok {
		v, ok := e.attrByteOrder(a)
		if !ok {
			s, _ := attrString(a)
			return nil, newErr(KindInvalidAttribute, spec.Pos, "invalid byte_order %q", s)
		}
		order = v
	}

	var align uint32
	if a, ok := findAttr(spec.Attrs, "align"); ok {
		v, ok := attrUnsigned(a)
		if !ok {
			return nil, newErr(KindInvalidAttribute, spec.Pos, "integer attribute \"align\" must be an unsigned constant")
		}
		align = uint32(v)
	}

	if err := rejectUnknownAttrs(spec.Attrs, "size", "signed", "byte_order", "align"); err != nil {
		return nil, err
	}

	return types.NewInteger(uint32(size), order, signed, align), nil
}

func (e *elaborator) buildFloat(spec *ast.TypeSpecifier) (types.Declaration, error) {
	expAttr, ok := findAttr(spec.Attrs, "exp_dig")
	if !ok {
		return nil, newErr(KindInvalidAttribute, spec.Pos, "floating_point type missing mandatory attribute \"exp_dig\"")
	}
	expDig, ok := attrUnsigned(expAttr)
	if !ok {
		return nil, newErr(KindInvalidAttribute, spec.Pos, "floating_point attribute \"exp_dig\" must be an unsigned constant")
	}
	mantAttr, ok := findAttr(spec.Attrs, "mant_dig")
	if !ok {
		return nil, newErr(KindInvalidAttribute, spec.Pos, "floating_point type missing mandatory attribute \"mant_dig\"")
	}
	mantDig, ok := attrUnsigned(mantAttr)
	if !ok {
		return nil, newErr(KindInvalidAttribute, spec.Pos, "floating_point attribute \"mant_dig\" must be an unsigned constant")
	}

	order := e.bo
	if a, ok := findAttr(spec.Attrs, "byte_order"); ok {
		v, ok := e.attrByteOrder(a)
		if !ok {
			s, _ := attrString(a)
			return nil, newErr(KindInvalidAttribute, spec.Pos, "invalid byte_order %q", s)
		}
		order = v
	}

	var align uint32
	if a, ok := findAttr(spec.Attrs, "align"); ok {
		v, ok := attrUnsigned(a)
		if !ok {
			return nil, newErr(KindInvalidAttribute, spec.Pos, "floating_point attribute \"align\" must be an unsigned constant")
		}
		align = uint32(v)
	}

	if err := rejectUnknownAttrs(spec.Attrs, "exp_dig", "mant_dig", "byte_order", "align"); err != nil {
		return nil, err
	}

	return types.NewFloat(uint32(mantDig), uint32(expDig), order, align), nil
}

func (e *elaborator) buildString(spec *ast.TypeSpecifier) (types.Declaration, error) {
	enc := types.UTF8
	if a, ok := findAttr(spec.Attrs, "encoding"); ok {
		s, ok := attrString(a)
		if !ok {
			return nil, newErr(KindInvalidAttribute, spec.Pos, "string attribute \"encoding\" must be a string")
		}
		if s == "ASCII" {
			enc = types.ASCII
		}
	}
	if err := rejectUnknownAttrs(spec.Attrs, "encoding"); err != nil {
		return nil, err
	}
	return types.NewString(enc), nil
}

func rejectUnknownAttrs(attrs []*ast.CtfExpression, known ...string) error {
	for _, a := range attrs {
		n, ok := attrName(a)
		if !ok {
			continue
		}
		isKnown := false
		for _, k := range known {
			if n == k {
				isKnown = true
				break
			}
		}
		if !isKnown {
			return newErr(KindInvalidAttribute, a.Pos, "unknown attribute %q", n)
		}
	}
	return nil
}
