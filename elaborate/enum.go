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

// buildOrLookupEnum implements §4.5's enum case. HasBody false resolves by
// tag lookup; HasBody true resolves the underlying integer container
// (§3.2 invariant: an enum's container is always an Integer), builds the
// value-range map in declaration order, and registers the result when
// named.
func (e *elaborator) buildOrLookupEnum(sc *scope.Scope, spec *ast.TypeSpecifier) (types.Declaration, error) {
	if !spec.HasBody {
		if spec.Name == "" {
			return nil, newErr(KindInvalidStructure, spec.Pos, "enum reference without a body must name a tag")
		}
		id := e.names.Intern(spec.Name)
		d, ok := sc.LookupEnum(id)
		if !ok {
			return nil, newErr(KindUndefined, spec.Pos, "enum %q not found", spec.Name)
		}
		d.Ref()
		return d, nil
	}

	id := name.None
	if spec.Name != "" {
		id = e.names.Intern(spec.Name)
		if _, ok := sc.LookupEnum(id); ok {
			return nil, newErr(KindAlreadyDefined, spec.Pos, "enum %q already defined in this scope", spec.Name)
		}
	}

	containerDecl, err := e.declSpecifierVisit(sc, spec.Container)
	if err != nil {
		return nil, err
	}
	container, ok := containerDecl.(*types.Integer)
	if !ok {
		containerDecl.Release()
		return nil, newErr(KindInvalidStructure, spec.Pos, "enum container must be an integer type, got %s", containerDecl.Kind())
	}

	en := types.NewEnum(container)
	container.Release() // NewEnum took its own Ref

	var prevEnd int64
	var havePrev bool
	for _, enumerator := range spec.Enumerators {
		start, end, err := e.enumeratorRange(enumerator, container.Signed, prevEnd, havePrev)
		if err != nil {
			en.Release()
			return nil, err
		}
		en.Add(start, end, e.names.Intern(enumerator.Name))
		prevEnd, havePrev = end, true
	}

	if id != name.None {
		if err := sc.RegisterEnum(id, en); err != nil {
			en.Release()
			return nil, newErr(KindAlreadyDefined, spec.Pos, "enum %q already defined in this scope", spec.Name)
		}
	}
	return en, nil
}

// enumeratorRange resolves one enumerator to its (start, end) value range.
// A bare "name" with no "= value" continues from the previous entry's end
// + 1 (CTF's default enumerator numbering); "name = v" is a single-value
// range; "name = a ... b" is an explicit range. Negative values are
// rejected against an unsigned container.
func (e *elaborator) enumeratorRange(en *ast.Enumerator, signed bool, prevEnd int64, havePrev bool) (int64, int64, error) {
	if len(en.Values) == 0 {
		start := int64(0)
		if havePrev {
			start = prevEnd + 1
		}
		if !signed && start < 0 {
			return 0, 0, newErr(KindParseValue, en.Pos, "enumerator %q: auto-numbered value is negative for an unsigned container", en.Name)
		}
		return start, start, nil
	}

	if len(en.Values) > 2 {
		return 0, 0, newErr(KindInvalidStructure, en.Pos, "enumerator %q: more than two values", en.Name)
	}

	start, err := enumeratorValue(en.Values[0], signed, en.Pos)
	if err != nil {
		return 0, 0, err
	}
	if len(en.Values) == 1 {
		return start, start, nil
	}
	end, err := enumeratorValue(en.Values[1], signed, en.Pos)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, newErr(KindParseValue, en.Pos, "enumerator %q: range end is before range start", en.Name)
	}
	return start, end, nil
}

func enumeratorValue(u *ast.UnaryExpression, signed bool, pos ast.Pos) (int64, error) {
	switch u.Kind {
	case ast.UnsignedConstant:
		return int64(u.UValue), nil
	case ast.SignedConstant:
		if !signed && u.SValue < 0 {
			return 0, newErr(KindParseValue, pos, "negative enumerator value in an unsigned container")
		}
		return u.SValue, nil
	default:
		return 0, newErr(KindInvalidStructure, pos, "enumerator value must be a constant")
	}
}
