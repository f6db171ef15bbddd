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

package types

import "github.com/efficios/ctfmeta/name"

// EnumRange is one «name = a ... b» (or «name = v», where a == b) entry of
// an Enum's value map, per §3.2.
type EnumRange struct {
	Start int64 // stored signed; unsigned containers reinterpret via uint64(Start)
	End   int64
	Name  name.ID
}

// Enum is the Declaration for CTF's «enum : <container> { ... }» type
// (§3.2). Its container is always an Integer (§3.2 invariant, enforced by
// the builder in package elaborate, not here).
type Enum struct {
	declHeader
	Container *Integer
	Ranges    []EnumRange // insertion order preserved
}

// NewEnum takes its own strong reference on container (§3.2: "owns an
// Integer declaration"); the caller's own reference to container is left
// untouched and must still be released by the caller once installed,
// matching the ownership discipline of §5.
func NewEnum(container *Integer) *Enum {
	container.Ref()
	e := &Enum{Container: container}
	e.kind = KindEnum
	e.align = container.AlignBits()
	e.onRef = 1
	e.onFinal = func() { container.Release() }
	return e
}

// Add inserts one value range. Callers are responsible for the §8
// invariant that start <= end and, for unsigned containers, that both
// endpoints are representable as unsigned — elaborate's buildOrLookupEnum
// (through enumeratorRange) enforces this before calling Add.
func (e *Enum) Add(start, end int64, n name.ID) {
	e.Ranges = append(e.Ranges, EnumRange{Start: start, End: end, Name: n})
}

// Lookup returns the name bound to value, and whether any range matched.
// Ranges are searched in insertion order; the first match wins if ranges
// were to overlap (the source does not forbid this).
func (e *Enum) Lookup(value int64) (name.ID, bool) {
	for _, r := range e.Ranges {
		if value >= r.Start && value <= r.End {
			return r.Name, true
		}
	}
	return name.None, false
}

func (e *Enum) Instantiate(parent DefinitionScope, offsetBits, index uint64) Definition {
	return &instance{name: "enum", parent: parent}
}
