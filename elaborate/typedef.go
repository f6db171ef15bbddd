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
)

// handleTypedef implements §4.4's typedef handler: for each declarator in
// the list, resolve it to (name, decl) and register it as a type alias in
// sc. On failure the just-built declaration is released before returning.
func (e *elaborator) handleTypedef(sc *scope.Scope, td *ast.Typedef) error {
	for _, d := range td.Declarators {
		decl, id, err := e.resolveDeclarator(sc, td.Specifiers, d, nil)
		if err != nil {
			return err
		}
		if err := sc.RegisterTypeAlias(id, decl); err != nil {
			decl.Release()
			return newErr(KindAlreadyDefined, d.Pos, "type alias %q already defined in this scope", e.names.Lookup(id))
		}
		decl.Release() // the scope took its own Ref in RegisterTypeAlias
	}
	return nil
}

// handleTypealias implements §4.4's typealias handler. The target must
// resolve to the anonymous name (a named target is rejected with
// KindInvalidStructure); the
// alias identifier is then synthesized the same way as §4.3 step 2 and
// registered to point at the target declaration.
//
// Per the §9 open question, only target.Declarators[0] is consulted — any
// further declarators in the target list are resolved (so scope side
// effects still happen) but otherwise discarded.
func (e *elaborator) handleTypealias(sc *scope.Scope, ta *ast.Typealias) error {
	var first *ast.Declarator
	if len(ta.Target.Declarators) > 0 {
		first = ta.Target.Declarators[0]
	}
	target, id, err := e.resolveDeclarator(sc, ta.Target.Specifiers, first, nil)
	if err != nil {
		return err
	}

	// Resolve (and immediately discard) any further target declarators,
	// matching the source's silent-ignore behavior for multi-declarator
	// targets (§9 open question).
	for _, extra := range ta.Target.Declarators[min(1, len(ta.Target.Declarators)):] {
		extraDecl, _, err := e.resolveDeclarator(sc, ta.Target.Specifiers, extra, nil)
		if err != nil {
			target.Release()
			return err
		}
		extraDecl.Release()
	}

	if id != name.None {
		target.Release()
		return newErr(KindInvalidStructure, ta.Pos, "typealias target must be anonymous, got %q", e.names.Lookup(id))
	}

	var aliasPointers []ast.Pointer
	if len(ta.Alias.Declarators) > 0 {
		aliasPointers = ta.Alias.Declarators[0].Pointers
	}
	aliasID := e.internAliasIdentifier(ta.Alias.Specifiers, aliasPointers)

	if err := sc.RegisterTypeAlias(aliasID, target); err != nil {
		target.Release()
		return newErr(KindAlreadyDefined, ta.Pos, "type alias %q already defined in this scope", e.names.Lookup(aliasID))
	}
	target.Release() // the scope took its own Ref in RegisterTypeAlias
	return nil
}
