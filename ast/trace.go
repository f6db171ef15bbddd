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

package ast

// Trace is a root-level «trace { ... };» block, per §4.7.
type Trace struct {
	Pos      Pos
	Children []Node // Typedef | Typealias | CtfExpression
}

func (*Trace) isNode() {}

// Stream is a root-level «stream { ... };» block, per §4.7.
type Stream struct {
	Pos      Pos
	Children []Node // Typedef | Typealias | CtfExpression | TypeAssignment
}

func (*Stream) isNode() {}

// Event is a root-level «event { ... };» block, per §4.7.
type Event struct {
	Pos      Pos
	Children []Node // Typedef | Typealias | CtfExpression | TypeAssignment
}

func (*Event) isNode() {}

// TypeAssignment is a «<dotted.path> := <specifiers> <declarator?>;» type
// assignment inside a stream/event body, e.g. «event.header := struct {
// ... };» or «packet.context := some_alias_t;». Distinct from CtfExpression,
// whose right-hand side is a value, not a type.
type TypeAssignment struct {
	Pos        Pos
	Path       string // dotted left-hand side, e.g. "event.header"
	Specifiers []Node
	Declarator *Declarator // optional; nil when the right-hand side has none
}

func (*TypeAssignment) isNode() {}
