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

// buildOrLookupVariant implements §4.5's variant case. The scope's variant
// namespace always stores the untagged body (the shape is independent of
// which field selects it); a non-empty spec.Choice wraps that body in a
// types.Variant before handing it back, per §4.5's "construct a
// Variant(untagged, choice) and release the temporary reference on the
// untagged one".
func (e *elaborator) buildOrLookupVariant(sc *scope.Scope, spec *ast.TypeSpecifier) (types.Declaration, error) {
	if !spec.HasBody {
		if spec.Name == "" {
			return nil, newErr(KindInvalidStructure, spec.Pos, "variant reference without a body must name a tag")
		}
		id := e.names.Intern(spec.Name)
		untagged, ok := sc.LookupVariant(id)
		if !ok {
			return nil, newErr(KindUndefined, spec.Pos, "variant %q not found", spec.Name)
		}
		if spec.Choice == "" {
			untagged.Ref()
			return untagged, nil
		}
		untagged.Ref()
		v := types.NewVariant(untagged, e.names.Intern(spec.Choice))
		untagged.Release()
		return v, nil
	}

	id := name.None
	if spec.Name != "" {
		id = e.names.Intern(spec.Name)
		if _, ok := sc.LookupVariant(id); ok {
			return nil, newErr(KindAlreadyDefined, spec.Pos, "variant %q already defined in this scope", spec.Name)
		}
	}

	inner := scope.New(sc)
	untagged := types.NewUntaggedVariant(inner)

	for _, decl := range spec.Decls {
		if err := e.structMember(inner, untagged, decl); err != nil {
			untagged.Release()
			return nil, err
		}
	}

	if id != name.None {
		if err := sc.RegisterVariant(id, untagged); err != nil {
			untagged.Release()
			return nil, newErr(KindAlreadyDefined, spec.Pos, "variant %q already defined in this scope", spec.Name)
		}
	}

	if spec.Choice == "" {
		return untagged, nil
	}
	v := types.NewVariant(untagged, e.names.Intern(spec.Choice))
	untagged.Release()
	return v, nil
}
