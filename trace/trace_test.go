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

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efficios/ctfmeta/types"
)

func TestTraceMandatoryFieldsTrackedOnce(t *testing.T) {
	tr := NewTrace(types.LittleEndian)
	assert.False(t, tr.Complete())

	assert.True(t, tr.SetMajor(1))
	assert.False(t, tr.SetMajor(2), "setting major twice must fail")
	assert.EqualValues(t, 1, tr.Major, "the second, rejected set must not overwrite the first value")

	assert.True(t, tr.SetMinor(8))
	assert.True(t, tr.SetWordSize(64))
	assert.False(t, tr.Complete(), "uuid still missing")

	assert.True(t, tr.SetUUID([16]byte{1}))
	assert.True(t, tr.Complete())
}

func TestMissingFieldsListsOnlyUnset(t *testing.T) {
	tr := NewTrace(types.LittleEndian)
	tr.SetMajor(1)
	tr.SetMinor(8)
	assert.ElementsMatch(t, []string{"uuid", "word_size"}, tr.MissingFields())
}

func TestPutStreamGrowsAndOverwrites(t *testing.T) {
	tr := NewTrace(types.LittleEndian)
	s0 := NewStream(tr.RootScope)
	s0.SetStreamID(0)
	tr.PutStream(s0)
	require.Len(t, tr.Streams, 1)

	s2 := NewStream(tr.RootScope)
	s2.SetStreamID(2)
	tr.PutStream(s2)
	require.Len(t, tr.Streams, 3)
	assert.Nil(t, tr.Streams[1])
	assert.Same(t, s2, tr.Streams[2])

	// §9 open question: last write at a given stream_id wins, silently.
	s0b := NewStream(tr.RootScope)
	s0b.SetStreamID(0)
	tr.PutStream(s0b)
	assert.Same(t, s0b, tr.Streams[0])
}

func TestStreamCompleteRequiresStreamID(t *testing.T) {
	s := NewStream(nil)
	assert.False(t, s.Complete())
	assert.True(t, s.SetStreamID(3))
	assert.True(t, s.Complete())
	assert.False(t, s.SetStreamID(4), "stream_id is set-once")
}

func TestPutEventGrowsAndIndexesByName(t *testing.T) {
	s := NewStream(nil)
	e := NewEvent(s.Scope)
	e.SetName(7)
	e.SetID(2)
	s.PutEvent(e)

	require.Len(t, s.EventsByID, 3)
	assert.Same(t, e, s.EventsByID[2])
	assert.EqualValues(t, 2, s.NameToID[7])
}

func TestEventCompleteRequiresAllThreeFields(t *testing.T) {
	e := NewEvent(nil)
	assert.False(t, e.Complete())
	e.SetName(1)
	assert.False(t, e.Complete())
	e.SetID(0)
	assert.False(t, e.Complete())
	e.SetStreamID(0)
	assert.True(t, e.Complete())
}

func TestParseUUIDRoundTrips(t *testing.T) {
	u, err := ParseUUID("11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), u[0])
	assert.Equal(t, byte(0x55), u[15])
}

func TestParseUUIDRejectsGarbage(t *testing.T) {
	_, err := ParseUUID("not-a-uuid")
	assert.Error(t, err)
}
