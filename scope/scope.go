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

// Package scope implements the nested declaration-scope stack described in
// §3.3/§4.2: four separate namespaces (type aliases, named structs, named
// variants, named enums) chained parent-to-child, innermost wins on
// lookup, registration only ever touches the current scope.
package scope

import (
	"fmt"

	"github.com/efficios/ctfmeta/name"
	"github.com/efficios/ctfmeta/types"
)

// Scope is one nested declaration scope. The zero value is not usable;
// construct with New.
type Scope struct {
	parent *Scope

	aliases  map[name.ID]types.Declaration
	structs  map[name.ID]*types.Struct
	variants map[name.ID]*types.UntaggedVariant
	enums    map[name.ID]*types.Enum
}

// New creates an empty scope linked to parent. parent may be nil for a
// root scope.
func New(parent *Scope) *Scope {
	return &Scope{
		parent:   parent,
		aliases:  map[name.ID]types.Declaration{},
		structs:  map[name.ID]*types.Struct{},
		variants: map[name.ID]*types.UntaggedVariant{},
		enums:    map[name.ID]*types.Enum{},
	}
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Free releases the strong references held by this scope's maps only; the
// parent chain is untouched (§4.2).
func (s *Scope) Free() {
	for _, d := range s.aliases {
		d.Release()
	}
	for _, d := range s.structs {
		d.Release()
	}
	for _, d := range s.variants {
		d.Release()
	}
	for _, d := range s.enums {
		d.Release()
	}
	s.aliases = nil
	s.structs = nil
	s.variants = nil
	s.enums = nil
}

// AlreadyDefinedError is returned by the register methods on a duplicate
// name within the same scope (§4.2, §7).
type AlreadyDefinedError struct {
	Name name.ID
	Kind string
}

func (e *AlreadyDefinedError) Error() string {
	return fmt.Sprintf("already defined: %s (name id %d)", e.Kind, e.Name)
}

func (s *Scope) RegisterTypeAlias(n name.ID, d types.Declaration) error {
	if _, ok := s.aliases[n]; ok {
		return &AlreadyDefinedError{Name: n, Kind: "type alias"}
	}
	d.Ref()
	s.aliases[n] = d
	return nil
}

func (s *Scope) RegisterStruct(n name.ID, d *types.Struct) error {
	if _, ok := s.structs[n]; ok {
		return &AlreadyDefinedError{Name: n, Kind: "struct"}
	}
	d.Ref()
	s.structs[n] = d
	return nil
}

func (s *Scope) RegisterVariant(n name.ID, d *types.UntaggedVariant) error {
	if _, ok := s.variants[n]; ok {
		return &AlreadyDefinedError{Name: n, Kind: "variant"}
	}
	d.Ref()
	s.variants[n] = d
	return nil
}

func (s *Scope) RegisterEnum(n name.ID, d *types.Enum) error {
	if _, ok := s.enums[n]; ok {
		return &AlreadyDefinedError{Name: n, Kind: "enum"}
	}
	d.Ref()
	s.enums[n] = d
	return nil
}

// LookupTypeAlias walks from s outward to the root, returning the first
// hit. The returned Declaration is a borrowed reference (§5): callers that
// need it to outlive the scope chain must Ref it themselves.
func (s *Scope) LookupTypeAlias(n name.ID) (types.Declaration, bool) {
	for search := s; search != nil; search = search.parent {
		if d, ok := search.aliases[n]; ok {
			return d, true
		}
	}
	return nil, false
}

func (s *Scope) LookupStruct(n name.ID) (*types.Struct, bool) {
	for search := s; search != nil; search = search.parent {
		if d, ok := search.structs[n]; ok {
			return d, true
		}
	}
	return nil, false
}

func (s *Scope) LookupVariant(n name.ID) (*types.UntaggedVariant, bool) {
	for search := s; search != nil; search = search.parent {
		if d, ok := search.variants[n]; ok {
			return d, true
		}
	}
	return nil, false
}

func (s *Scope) LookupEnum(n name.ID) (*types.Enum, bool) {
	for search := s; search != nil; search = search.parent {
		if d, ok := search.enums[n]; ok {
			return d, true
		}
	}
	return nil, false
}

var _ types.Releasable = (*Scope)(nil)
