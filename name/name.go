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

// Package name provides a process-wide interning registry mapping strings
// to opaque, comparable identifiers.
package name

// ID is an opaque identifier obtained by interning a string in a Registry.
// Two equal strings intern to the same ID. The zero ID is reserved to mean
// "no name" (an anonymous declarator).
type ID uint32

// None is the reserved ID meaning "anonymous".
const None ID = 0

// Registry interns strings to IDs and back. It is append-only: once a
// string has been interned it keeps the same ID for the registry's
// lifetime. The zero value is ready to use.
type Registry struct {
	byString map[string]ID
	byID     []string
}

// New returns a registry with None already reserved for the empty string.
func New() *Registry {
	r := &Registry{
		byString: map[string]ID{"": None},
		byID:     []string{""},
	}
	return r
}

// Intern returns the ID for s, allocating a new one if s has not been seen
// before. Interning is case-sensitive; the empty string always yields None.
func (r *Registry) Intern(s string) ID {
	if r.byString == nil {
		*r = *New()
	}
	if s == "" {
		return None
	}
	if id, ok := r.byString[s]; ok {
		return id
	}
	id := ID(len(r.byID))
	r.byID = append(r.byID, s)
	r.byString[s] = id
	return id
}

// Lookup returns the string interned under id. It panics if id was never
// returned by this registry's Intern (a contract violation, not a runtime
// input error).
func (r *Registry) Lookup(id ID) string {
	if int(id) >= len(r.byID) {
		panic("name: Lookup of unregistered ID")
	}
	return r.byID[id]
}

// String is a convenience equivalent of Lookup for formatting.
func (r *Registry) String(id ID) string {
	if id == None {
		return "<anonymous>"
	}
	return r.Lookup(id)
}
