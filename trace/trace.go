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

// Package trace holds the §3.4 Trace/Stream/Event aggregates that package
// elaborate assembles and that the (out of scope, §1) binary decoder walks
// at playback time.
package trace

import (
	"github.com/efficios/ctfmeta/name"
	"github.com/efficios/ctfmeta/scope"
	"github.com/efficios/ctfmeta/types"
)

// Mandatory is a bitset tracking which of an entity's mandatory fields have
// been set, per §3.4/§7 MissingMandatory.
type Mandatory uint8

func (m Mandatory) Has(bit Mandatory) bool { return m&bit != 0 }
func (m *Mandatory) Set(bit Mandatory)     { *m |= bit }

const (
	TraceMajor Mandatory = 1 << iota
	TraceMinor
	TraceUUID
	TraceWordSize
	traceAll = TraceMajor | TraceMinor | TraceUUID | TraceWordSize
)

const (
	StreamStreamID Mandatory = 1 << iota
	streamAll      = StreamStreamID
)

const (
	EventName Mandatory = 1 << iota
	EventID
	EventStreamID
	eventAll = EventName | EventID | EventStreamID
)

// Trace is the root aggregate described in §3.4.
type Trace struct {
	Major     uint64
	Minor     uint64
	UUID      [16]byte
	WordSize  uint64
	ByteOrder types.ByteOrder

	RootScope  *scope.Scope
	TraceScope *scope.Scope

	Streams []*Stream // indexed by stream id; grows to at least id+1 (§9 open question: collisions overwrite)

	set Mandatory
}

// NewTrace creates a trace with a fresh root scope. ByteOrder is set here,
// satisfying the §6.2 precondition that it is not yet set before
// ConstructMetadata runs.
func NewTrace(byteOrder types.ByteOrder) *Trace {
	root := scope.New(nil)
	return &Trace{
		ByteOrder: byteOrder,
		RootScope: root,
	}
}

func (t *Trace) SetMajor(v uint64) bool {
	if t.set.Has(TraceMajor) {
		return false
	}
	t.Major = v
	t.set.Set(TraceMajor)
	return true
}

func (t *Trace) SetMinor(v uint64) bool {
	if t.set.Has(TraceMinor) {
		return false
	}
	t.Minor = v
	t.set.Set(TraceMinor)
	return true
}

func (t *Trace) SetUUID(v [16]byte) bool {
	if t.set.Has(TraceUUID) {
		return false
	}
	t.UUID = v
	t.set.Set(TraceUUID)
	return true
}

func (t *Trace) SetWordSize(v uint64) bool {
	if t.set.Has(TraceWordSize) {
		return false
	}
	t.WordSize = v
	t.set.Set(TraceWordSize)
	return true
}

// Complete reports whether all mandatory trace fields (§4.7) are set.
func (t *Trace) Complete() bool { return t.set&traceAll == traceAll }

// MissingFields names each unset mandatory field, for MissingMandatory
// error construction.
func (t *Trace) MissingFields() []string {
	var missing []string
	if !t.set.Has(TraceMajor) {
		missing = append(missing, "major")
	}
	if !t.set.Has(TraceMinor) {
		missing = append(missing, "minor")
	}
	if !t.set.Has(TraceUUID) {
		missing = append(missing, "uuid")
	}
	if !t.set.Has(TraceWordSize) {
		missing = append(missing, "word_size")
	}
	return missing
}

// PutStream installs s at s.StreamID, growing Streams as needed. Per the
// §9 open question, an existing entry at that index is silently
// overwritten (flagged there as possibly-buggy, inherited unchanged).
func (t *Trace) PutStream(s *Stream) {
	id := int(s.StreamID)
	for len(t.Streams) <= id {
		t.Streams = append(t.Streams, nil)
	}
	t.Streams[id] = s
}

// Stream is the §3.4 per-stream aggregate.
type Stream struct {
	StreamID uint64

	PacketContext *types.Struct
	EventHeader   *types.Struct
	EventContext  *types.Struct

	Scope *scope.Scope

	EventsByID []*Event
	NameToID   map[name.ID]uint64

	DefScope types.DefinitionScope

	set Mandatory
}

// NewStream creates a stream with its own scope chained to parent.
func NewStream(parent *scope.Scope) *Stream {
	return &Stream{
		Scope:    scope.New(parent),
		NameToID: map[name.ID]uint64{},
	}
}

func (s *Stream) SetStreamID(v uint64) bool {
	if s.set.Has(StreamStreamID) {
		return false
	}
	s.StreamID = v
	s.set.Set(StreamStreamID)
	return true
}

func (s *Stream) Complete() bool { return s.set&streamAll == streamAll }

// PutEvent installs e at e.ID, growing EventsByID as needed, and records
// e.Name -> e.ID (§4.7).
func (s *Stream) PutEvent(e *Event) {
	id := int(e.ID)
	for len(s.EventsByID) <= id {
		s.EventsByID = append(s.EventsByID, nil)
	}
	s.EventsByID[id] = e
	s.NameToID[e.Name] = e.ID
}

// Event is the §3.4 per-event aggregate.
type Event struct {
	Name     name.ID
	ID       uint64
	StreamID uint64
	Stream   *Stream

	Context *types.Struct
	Fields  *types.Struct

	Scope *scope.Scope

	set Mandatory
}

// NewEvent creates an event with its own scope chained to parent.
func NewEvent(parent *scope.Scope) *Event {
	return &Event{Scope: scope.New(parent)}
}

func (e *Event) SetName(v name.ID) bool {
	if e.set.Has(EventName) {
		return false
	}
	e.Name = v
	e.set.Set(EventName)
	return true
}

func (e *Event) SetID(v uint64) bool {
	if e.set.Has(EventID) {
		return false
	}
	e.ID = v
	e.set.Set(EventID)
	return true
}

func (e *Event) SetStreamID(v uint64) bool {
	if e.set.Has(EventStreamID) {
		return false
	}
	e.StreamID = v
	e.set.Set(EventStreamID)
	return true
}

func (e *Event) Complete() bool { return e.set&eventAll == eventAll }
