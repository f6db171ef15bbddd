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
	"strings"

	"github.com/efficios/ctfmeta/ast"
	"github.com/efficios/ctfmeta/scope"
	"github.com/efficios/ctfmeta/trace"
	"github.com/efficios/ctfmeta/types"
)

// ConstructMetadata is the §6.2 entry point: elaborate root against a fresh
// trace with the given byte order, returning the populated trace on
// success. On error the partially built trace's root scope is freed before
// returning, per §6.2's postcondition ("on error the trace's intermediate
// state is released").
func (c *Context) ConstructMetadata(root *ast.Root, byteOrder types.ByteOrder) (*trace.Trace, error) {
	e := &elaborator{names: c.Names, bo: byteOrder}
	t := trace.NewTrace(byteOrder)

	if err := e.visitRoot(t, root); err != nil {
		releaseTrace(t)
		return nil, err
	}
	return t, nil
}

// releaseTrace frees every scope reachable from t: completed streams and
// events already had their top-level struct declarations released at
// Instantiate time (§4.7), but their own scopes (and the trace scope and
// root scope) are only ever freed here, on the ConstructMetadata failure
// path — a successful trace keeps them alive for the rest of elaboration.
func releaseTrace(t *trace.Trace) {
	for _, s := range t.Streams {
		if s == nil {
			continue
		}
		for _, ev := range s.EventsByID {
			if ev == nil {
				continue
			}
			ev.Scope.Free()
		}
		s.Scope.Free()
	}
	if t.TraceScope != nil {
		t.TraceScope.Free()
	}
	t.RootScope.Free()
}

// visitRoot implements §4.7's root dispatch: root-level typedefs/typealiases
// and anonymous specifier declarations first, then trace, then stream, then
// event blocks, each in AST order.
func (e *elaborator) visitRoot(t *trace.Trace, root *ast.Root) error {
	for _, decl := range root.Decls {
		if err := e.rootDecl(t.RootScope, decl); err != nil {
			return err
		}
	}

	if len(root.Trace) > 1 {
		return newErr(KindAlreadyDefined, root.Trace[1].Pos, "trace block already defined")
	}
	for _, tr := range root.Trace {
		if err := e.visitTrace(t, tr); err != nil {
			return err
		}
	}
	if !t.Complete() {
		return newErr(KindMissingMandatory, root.Pos, "trace missing mandatory field(s): %s", strings.Join(t.MissingFields(), ", "))
	}

	for _, st := range root.Stream {
		if err := e.visitStream(t, st); err != nil {
			return err
		}
	}

	for _, ev := range root.Event {
		if err := e.visitEvent(t, ev); err != nil {
			return err
		}
	}

	return nil
}

// rootDecl dispatches one root-level child that is not a trace/stream/event
// block: typedefs and typealiases extend the root scope; a bare
// declaration-specifier list (most commonly an anonymous struct) is visited
// purely for its scope side effects and then discarded.
func (e *elaborator) rootDecl(sc *scope.Scope, decl ast.Node) error {
	switch n := decl.(type) {
	case *ast.Typedef:
		return e.handleTypedef(sc, n)
	case *ast.Typealias:
		return e.handleTypealias(sc, n)
	case *ast.TypeSpecifier:
		d, err := e.declSpecifierVisit(sc, []ast.Node{n})
		if err != nil {
			return err
		}
		d.Release()
		return nil
	default:
		return newErr(KindInvalidStructure, ast.Pos{}, "unrecognised root-level declaration %T", decl)
	}
}

// visitTrace implements §4.7's trace block.
func (e *elaborator) visitTrace(t *trace.Trace, tr *ast.Trace) error {
	t.TraceScope = scope.New(t.RootScope)

	for _, child := range tr.Children {
		switch n := child.(type) {
		case *ast.Typedef:
			if err := e.handleTypedef(t.TraceScope, n); err != nil {
				return err
			}
		case *ast.Typealias:
			if err := e.handleTypealias(t.TraceScope, n); err != nil {
				return err
			}
		case *ast.CtfExpression:
			if err := e.traceAssign(t, n); err != nil {
				return err
			}
		default:
			return newErr(KindInvalidStructure, tr.Pos, "unrecognised trace block member %T", child)
		}
	}
	return nil
}

func (e *elaborator) traceAssign(t *trace.Trace, expr *ast.CtfExpression) error {
	key := pathText(expr.Left)
	switch key {
	case "major":
		v, ok := exprUnsigned(expr.Right)
		if !ok {
			return newErr(KindInvalidStructure, expr.Pos, "trace.major must be an unsigned constant")
		}
		if !t.SetMajor(v) {
			return newErr(KindAlreadyDefined, expr.Pos, "trace.major already set")
		}
	case "minor":
		v, ok := exprUnsigned(expr.Right)
		if !ok {
			return newErr(KindInvalidStructure, expr.Pos, "trace.minor must be an unsigned constant")
		}
		if !t.SetMinor(v) {
			return newErr(KindAlreadyDefined, expr.Pos, "trace.minor already set")
		}
	case "word_size":
		v, ok := exprUnsigned(expr.Right)
		if !ok {
			return newErr(KindInvalidStructure, expr.Pos, "trace.word_size must be an unsigned constant")
		}
		if !t.SetWordSize(v) {
			return newErr(KindAlreadyDefined, expr.Pos, "trace.word_size already set")
		}
	case "uuid":
		s, ok := exprString(expr.Right)
		if !ok {
			return newErr(KindInvalidStructure, expr.Pos, "trace.uuid must be a string")
		}
		u, err := trace.ParseUUID(s)
		if err != nil {
			return wrapErr(KindParseValue, expr.Pos, err, "invalid trace.uuid %q", s)
		}
		if !t.SetUUID(u) {
			return newErr(KindAlreadyDefined, expr.Pos, "trace.uuid already set")
		}
	default:
		return newErr(KindInvalidStructure, expr.Pos, "unrecognised trace field %q", key)
	}
	return nil
}

// visitStream implements §4.7's stream block. On any error it releases
// whatever struct declarations and scope entries this (never-installed)
// stream had already acquired, per §5's cleanup discipline.
func (e *elaborator) visitStream(t *trace.Trace, st *ast.Stream) (err error) {
	s := trace.NewStream(t.RootScope)
	installed := false
	defer func() {
		if !installed {
			if s.PacketContext != nil {
				s.PacketContext.Release()
			}
			if s.EventHeader != nil {
				s.EventHeader.Release()
			}
			if s.EventContext != nil {
				s.EventContext.Release()
			}
			s.Scope.Free()
		}
	}()

	for _, child := range st.Children {
		switch n := child.(type) {
		case *ast.Typedef:
			if err := e.handleTypedef(s.Scope, n); err != nil {
				return err
			}
		case *ast.Typealias:
			if err := e.handleTypealias(s.Scope, n); err != nil {
				return err
			}
		case *ast.CtfExpression:
			if err := e.streamAssign(s, n); err != nil {
				return err
			}
		case *ast.TypeAssignment:
			if err := e.streamTypeAssign(s, n); err != nil {
				return err
			}
		default:
			return newErr(KindInvalidStructure, st.Pos, "unrecognised stream block member %T", child)
		}
	}

	if !s.Complete() {
		return newErr(KindMissingMandatory, st.Pos, "stream missing mandatory field \"stream_id\"")
	}
	installed = true
	t.PutStream(s)

	// Materialize top-level definitions in the fixed order packet.context ->
	// event.header -> event.context, chaining the definition scope through
	// each and releasing the declaration once its definition exists.
	var parent types.DefinitionScope
	if s.PacketContext != nil {
		d := s.PacketContext.Instantiate(parent, 0, 0)
		parent = namedDefScope{Definition: d, name: "stream.packet.context", parent: parent}
		s.PacketContext.Release()
	}
	if s.EventHeader != nil {
		d := s.EventHeader.Instantiate(parent, 0, 0)
		parent = namedDefScope{Definition: d, name: "stream.event.header", parent: parent}
		s.EventHeader.Release()
	}
	if s.EventContext != nil {
		d := s.EventContext.Instantiate(parent, 0, 0)
		parent = namedDefScope{Definition: d, name: "stream.event.context", parent: parent}
		s.EventContext.Release()
	}
	s.DefScope = parent
	return nil
}

func (e *elaborator) streamAssign(s *trace.Stream, expr *ast.CtfExpression) error {
	key := pathText(expr.Left)
	if key != "stream_id" {
		return newErr(KindInvalidStructure, expr.Pos, "unrecognised stream field %q", key)
	}
	v, ok := exprUnsigned(expr.Right)
	if !ok {
		return newErr(KindInvalidStructure, expr.Pos, "stream.stream_id must be an unsigned constant")
	}
	if !s.SetStreamID(v) {
		return newErr(KindAlreadyDefined, expr.Pos, "stream.stream_id already set")
	}
	return nil
}

func (e *elaborator) streamTypeAssign(s *trace.Stream, ta *ast.TypeAssignment) error {
	st, err := e.resolveStructAssignment(s.Scope, ta)
	if err != nil {
		return err
	}
	switch ta.Path {
	case "packet.context":
		if s.PacketContext != nil {
			st.Release()
			return newErr(KindAlreadyDefined, ta.Pos, "stream.packet.context already set")
		}
		s.PacketContext = st
	case "event.header":
		if s.EventHeader != nil {
			st.Release()
			return newErr(KindAlreadyDefined, ta.Pos, "stream.event.header already set")
		}
		s.EventHeader = st
	case "event.context":
		if s.EventContext != nil {
			st.Release()
			return newErr(KindAlreadyDefined, ta.Pos, "stream.event.context already set")
		}
		s.EventContext = st
	default:
		st.Release()
		return newErr(KindInvalidStructure, ta.Pos, "unrecognised stream type assignment %q", ta.Path)
	}
	return nil
}

// visitEvent implements §4.7's event block. On any error it releases
// whatever context/fields declarations and scope entries this
// (never-installed) event had already acquired, per §5's cleanup
// discipline.
func (e *elaborator) visitEvent(t *trace.Trace, ev *ast.Event) (err error) {
	event := trace.NewEvent(t.RootScope)
	var resolvedStream *trace.Stream
	installed := false
	defer func() {
		if !installed {
			if event.Context != nil {
				event.Context.Release()
			}
			if event.Fields != nil {
				event.Fields.Release()
			}
			event.Scope.Free()
		}
	}()

	for _, child := range ev.Children {
		switch n := child.(type) {
		case *ast.Typedef:
			if err := e.handleTypedef(event.Scope, n); err != nil {
				return err
			}
		case *ast.Typealias:
			if err := e.handleTypealias(event.Scope, n); err != nil {
				return err
			}
		case *ast.CtfExpression:
			st, err := e.eventAssign(t, event, n)
			if err != nil {
				return err
			}
			if st != nil {
				resolvedStream = st
			}
		case *ast.TypeAssignment:
			if err := e.eventTypeAssign(event, n); err != nil {
				return err
			}
		default:
			return newErr(KindInvalidStructure, ev.Pos, "unrecognised event block member %T", child)
		}
	}

	if !event.Complete() {
		return newErr(KindMissingMandatory, ev.Pos, "event missing mandatory field(s)")
	}
	if resolvedStream == nil {
		return newErr(KindUndefined, ev.Pos, "event.stream_id %d does not resolve to a stream", event.StreamID)
	}
	event.Stream = resolvedStream
	resolvedStream.PutEvent(event)
	installed = true

	var parent types.DefinitionScope = resolvedStream.DefScope
	if event.Context != nil {
		d := event.Context.Instantiate(parent, 0, 0)
		parent = namedDefScope{Definition: d, name: "event.context", parent: parent}
		event.Context.Release()
	}
	if event.Fields != nil {
		event.Fields.Instantiate(parent, 0, 0)
		event.Fields.Release()
	}
	return nil
}

// eventAssign handles the three value-bearing event fields. It returns the
// resolved stream when the assignment is stream_id and it names a stream
// already present in t, so the caller can defer the "unresolved stream_id"
// check to the end of the block (matching the source, which only requires
// resolution to succeed once the whole block has been read).
func (e *elaborator) eventAssign(t *trace.Trace, event *trace.Event, expr *ast.CtfExpression) (*trace.Stream, error) {
	key := pathText(expr.Left)
	switch key {
	case "name":
		s, ok := exprString(expr.Right)
		if !ok {
			return nil, newErr(KindInvalidStructure, expr.Pos, "event.name must be a string")
		}
		if !event.SetName(e.names.Intern(s)) {
			return nil, newErr(KindAlreadyDefined, expr.Pos, "event.name already set")
		}
		return nil, nil
	case "id":
		v, ok := exprUnsigned(expr.Right)
		if !ok {
			return nil, newErr(KindInvalidStructure, expr.Pos, "event.id must be an unsigned constant")
		}
		if !event.SetID(v) {
			return nil, newErr(KindAlreadyDefined, expr.Pos, "event.id already set")
		}
		return nil, nil
	case "stream_id":
		v, ok := exprUnsigned(expr.Right)
		if !ok {
			return nil, newErr(KindInvalidStructure, expr.Pos, "event.stream_id must be an unsigned constant")
		}
		if !event.SetStreamID(v) {
			return nil, newErr(KindAlreadyDefined, expr.Pos, "event.stream_id already set")
		}
		if int(v) < len(t.Streams) && t.Streams[v] != nil {
			return t.Streams[v], nil
		}
		return nil, nil
	default:
		return nil, newErr(KindInvalidStructure, expr.Pos, "unrecognised event field %q", key)
	}
}

func (e *elaborator) eventTypeAssign(event *trace.Event, ta *ast.TypeAssignment) error {
	st, err := e.resolveStructAssignment(event.Scope, ta)
	if err != nil {
		return err
	}
	switch ta.Path {
	case "context":
		if event.Context != nil {
			st.Release()
			return newErr(KindAlreadyDefined, ta.Pos, "event.context already set")
		}
		event.Context = st
	case "fields":
		if event.Fields != nil {
			st.Release()
			return newErr(KindAlreadyDefined, ta.Pos, "event.fields already set")
		}
		event.Fields = st
	default:
		st.Release()
		return newErr(KindInvalidStructure, ta.Pos, "unrecognised event type assignment %q", ta.Path)
	}
	return nil
}

// resolveStructAssignment resolves a TypeAssignment's right-hand side and
// asserts it is Struct-kinded, per §4.7's requirement that packet.context/
// event.header/event.context/context/fields each be a Struct.
func (e *elaborator) resolveStructAssignment(sc *scope.Scope, ta *ast.TypeAssignment) (*types.Struct, error) {
	decl, _, err := e.resolveDeclarator(sc, ta.Specifiers, ta.Declarator, nil)
	if err != nil {
		return nil, err
	}
	st, ok := decl.(*types.Struct)
	if !ok {
		decl.Release()
		return nil, newErr(KindInvalidStructure, ta.Pos, "%s must resolve to a struct, got %s", ta.Path, decl.Kind())
	}
	return st, nil
}

// pathText joins a dotted identifier path's unary-expression tokens (each
// carried as a StringLiteral) with ".".
func pathText(nodes []*ast.UnaryExpression) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == ast.StringLiteral {
			parts = append(parts, n.SText)
		}
	}
	return strings.Join(parts, ".")
}

// exprUnsigned reads a CtfExpression right-hand side as a single unsigned
// constant (signed constants promoted if non-negative).
func exprUnsigned(nodes []*ast.UnaryExpression) (uint64, bool) {
	if len(nodes) != 1 {
		return 0, false
	}
	switch nodes[0].Kind {
	case ast.UnsignedConstant:
		return nodes[0].UValue, true
	case ast.SignedConstant:
		if nodes[0].SValue < 0 {
			return 0, false
		}
		return uint64(nodes[0].SValue), true
	default:
		return 0, false
	}
}

// exprString reads a CtfExpression right-hand side as a single string
// literal.
func exprString(nodes []*ast.UnaryExpression) (string, bool) {
	if len(nodes) != 1 || nodes[0].Kind != ast.StringLiteral {
		return "", false
	}
	return nodes[0].SText, true
}

// namedDefScope adapts a materialized Definition plus its parent chain link
// into the types.DefinitionScope the next instantiate call threads through,
// overriding the Definition's generic kind-derived name with the
// contextual label §4.7 specifies (e.g. "stream.packet.context"). The (out
// of scope, §1) decoder is expected to replace it with its own richer
// scope implementation that still satisfies both interfaces.
type namedDefScope struct {
	types.Definition
	name   string
	parent types.DefinitionScope
}

func (n namedDefScope) Name() string                  { return n.name }
func (n namedDefScope) Parent() types.DefinitionScope { return n.parent }
