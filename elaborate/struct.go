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

// buildOrLookupStruct implements §4.5's struct case. HasBody false is a
// tag reference («struct foo») resolved purely by scope lookup; HasBody
// true builds a new Struct from its own inner scope and, when named,
// registers it in the enclosing scope's struct namespace.
func (e *elaborator) buildOrLookupStruct(sc *scope.Scope, spec *ast.TypeSpecifier) (types.Declaration, error) {
	if !spec.HasBody {
		if spec.Name == "" {
			return nil, newErr(KindInvalidStructure, spec.Pos, "struct reference without a body must name a tag")
		}
		id := e.names.Intern(spec.Name)
		d, ok := sc.LookupStruct(id)
		if !ok {
			return nil, newErr(KindUndefined, spec.Pos, "struct %q not found", spec.Name)
		}
		d.Ref()
		return d, nil
	}

	id := name.None
	if spec.Name != "" {
		id = e.names.Intern(spec.Name)
		if _, ok := sc.LookupStruct(id); ok {
			return nil, newErr(KindAlreadyDefined, spec.Pos, "struct %q already defined in this scope", spec.Name)
		}
	}

	inner := scope.New(sc)
	s := types.NewStruct(inner)

	for _, decl := range spec.Decls {
		if err := e.structMember(inner, s, decl); err != nil {
			s.Release()
			return nil, err
		}
	}

	if id != name.None {
		if err := sc.RegisterStruct(id, s); err != nil {
			s.Release()
			return nil, newErr(KindAlreadyDefined, spec.Pos, "struct %q already defined in this scope", spec.Name)
		}
	}
	return s, nil
}

// structMember dispatches one child of a struct/untagged-variant body:
// nested typedefs and typealiases extend the body's own inner scope,
// field declarations append to fields.
func (e *elaborator) structMember(inner *scope.Scope, fields interface {
	AddField(name.ID, types.Declaration)
	HasField(name.ID) bool
}, decl ast.Node) error {
	switch n := decl.(type) {
	case *ast.Typedef:
		return e.handleTypedef(inner, n)
	case *ast.Typealias:
		return e.handleTypealias(inner, n)
	case *ast.FieldDeclaration:
		for _, d := range n.Declarators {
			fieldDecl, id, err := e.resolveDeclarator(inner, n.Specifiers, d, nil)
			if err != nil {
				return err
			}
			if id == name.None {
				fieldDecl.Release()
				return newErr(KindInvalidStructure, d.Pos, "aggregate fields must be named")
			}
			if fields.HasField(id) {
				fieldDecl.Release()
				return newErr(KindAlreadyDefined, d.Pos, "field %q already defined in this aggregate", e.names.Lookup(id))
			}
			fields.AddField(id, fieldDecl)
			fieldDecl.Release()
		}
		return nil
	default:
		return newErr(KindInvalidStructure, ast.Pos{}, "unrecognised aggregate body member %T", decl)
	}
}
