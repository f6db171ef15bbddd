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
	"github.com/efficios/ctfmeta/name"
	"github.com/efficios/ctfmeta/scope"
	"github.com/efficios/ctfmeta/types"
)

// resolveDeclarator is the §4.3 type-declarator resolver. It returns a
// declaration the caller owns outright (see the ownership note on
// declSpecifierVisit/lookupTypeSpecifier: a borrowed lookup result is
// Ref'd here before being handed back, so every exit path from this
// function hands the caller a reference it alone is responsible for
// releasing or installing).
func (e *elaborator) resolveDeclarator(sc *scope.Scope, specifiers []ast.Node, decl *ast.Declarator, inner types.Declaration) (types.Declaration, name.ID, error) {
	// Step 1: reject bitfield declarators outright (§1 non-goal, §4.3.1).
	if decl != nil && decl.BitfieldLen != nil {
		return nil, name.None, newErr(KindUnsupported, decl.Pos, "gcc bitfields are not supported")
	}

	// Step 2: materialize the inner type if the caller hasn't already
	// supplied one (recursive nested-array/sequence calls pass one in).
	if inner == nil {
		var err error
		inner, err = e.innerType(sc, specifiers, decl)
		if err != nil {
			return nil, name.None, err
		}
	}

	// Step 3: plain identifier declarator (including the nil declarator
	// case, which names an anonymous field).
	if decl == nil || !decl.IsNested() {
		id := name.None
		if decl != nil && decl.Name != "" {
			id = e.names.Intern(decl.Name)
		}
		return inner, id, nil
	}

	// Step 4: nested array/sequence declarator.
	built, err := e.buildNested(sc, decl, inner)
	if err != nil {
		inner.Release()
		return nil, name.None, err
	}
	// inner has been installed into built (Array/Sequence Ref its own copy
	// on construction); release our local reference to it now that built
	// owns one.
	inner.Release()

	return e.resolveDeclarator(sc, specifiers, decl.Sub, built)
}

// innerType implements §4.3 step 2: pointer declarators resolve through a
// pre-aliased identifier; everything else goes through the specifier
// visitor.
func (e *elaborator) innerType(sc *scope.Scope, specifiers []ast.Node, decl *ast.Declarator) (types.Declaration, error) {
	if decl != nil && len(decl.Pointers) > 0 {
		id := e.internAliasIdentifier(specifiers, decl.Pointers)
		d, ok := sc.LookupTypeAlias(id)
		if !ok {
			return nil, newErr(KindUndefined, decl.Pos, "pointer type alias %q not found; pointer types must be pre-aliased", e.names.Lookup(id))
		}
		d.Ref() // hand the caller an owned reference to the borrowed lookup result
		return d, nil
	}
	return e.declSpecifierVisit(sc, specifiers)
}

// buildNested implements §4.3 step 4: inspect the first expression of the
// declarator's length list and build either an Array or a Sequence
// wrapping inner.
func (e *elaborator) buildNested(sc *scope.Scope, decl *ast.Declarator, inner types.Declaration) (types.Declaration, error) {
	if len(decl.LengthList) == 0 {
		return nil, newErr(KindInvalidStructure, decl.Pos, "empty declarator length list")
	}
	first := decl.LengthList[0]
	switch first.Kind {
	case ast.UnsignedConstant:
		return types.NewArray(first.UValue, inner), nil
	case ast.StringLiteral:
		id := e.names.Intern(first.SText)
		d, ok := sc.LookupTypeAlias(id)
		if !ok {
			return nil, newErr(KindUndefined, first.Pos, "sequence length type %q not found", first.SText)
		}
		intDecl, ok := d.(*types.Integer)
		if !ok {
			return nil, newErr(KindInvalidStructure, first.Pos, "sequence length type %q is not an integer", first.SText)
		}
		return types.NewSequence(intDecl, inner), nil
	default:
		return nil, newErr(KindInvalidStructure, first.Pos, "array/sequence length must be an unsigned constant or an integer-typed identifier")
	}
}
