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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerAlignDefault(t *testing.T) {
	cases := []struct {
		name     string
		size     uint32
		explicit uint32
		want     uint32
	}{
		{"byte-multiple defaults to 8", 32, 0, 8},
		{"non byte-multiple defaults to 1", 33, 0, 1},
		{"explicit wins over default", 33, 16, 16},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			i := NewInteger(c.size, LittleEndian, false, c.explicit)
			assert.Equal(t, c.want, i.AlignBits())
		})
	}
}

func TestRefCountLifecycle(t *testing.T) {
	i := NewInteger(32, LittleEndian, false, 0)
	assert.EqualValues(t, 1, i.refCount())
	i.Ref()
	assert.EqualValues(t, 2, i.refCount())
	i.Release()
	assert.EqualValues(t, 1, i.refCount())
}

func TestStructReleaseReleasesFieldsAndScope(t *testing.T) {
	var freed bool
	s := NewStruct(fakeScope{free: func() { freed = true }})

	f := NewInteger(32, LittleEndian, false, 0)
	s.AddField(1, f)
	assert.EqualValues(t, 2, f.refCount(), "AddField takes its own Ref")

	f.Release() // caller's local reference, matches elaborate's convention
	assert.EqualValues(t, 1, f.refCount())

	s.Release() // last reference: onFinal fires
	assert.EqualValues(t, 0, f.refCount())
	assert.True(t, freed)
}

func TestStructAlignment(t *testing.T) {
	s := NewStruct(fakeScope{})
	assert.EqualValues(t, 1, s.AlignBits(), "empty struct aligns to 1")
	f := NewInteger(8, LittleEndian, false, 0)
	s.AddField(1, f)
	f.Release()
	assert.EqualValues(t, 8, s.AlignBits(), "non-empty struct is byte aligned")
}

func TestHasField(t *testing.T) {
	s := NewStruct(fakeScope{})
	f := NewInteger(32, LittleEndian, false, 0)
	assert.False(t, s.HasField(1))
	s.AddField(1, f)
	f.Release()
	assert.True(t, s.HasField(1))
	assert.False(t, s.HasField(2))
}

func TestVariantTakesOwnRefOnUntagged(t *testing.T) {
	u := NewUntaggedVariant(fakeScope{})
	assert.EqualValues(t, 1, u.refCount())

	v := NewVariant(u, 5)
	assert.EqualValues(t, 2, u.refCount())

	u.Release() // caller's own reference, per the §4.5 convention
	assert.EqualValues(t, 1, u.refCount())

	v.Release()
	assert.EqualValues(t, 0, u.refCount())
}

func TestArrayAlignMatchesElement(t *testing.T) {
	elem := NewInteger(33, LittleEndian, false, 0) // align 1
	a := NewArray(4, elem)
	elem.Release()
	assert.EqualValues(t, 1, a.AlignBits())
	assert.EqualValues(t, 1, elem.refCount(), "array holds the only remaining reference")
}

func TestSequenceReleasesBothLengthTypeAndElement(t *testing.T) {
	length := NewInteger(32, LittleEndian, false, 0)
	elem := NewInteger(8, LittleEndian, false, 0)
	seq := NewSequence(length, elem)
	length.Release()
	elem.Release()
	assert.EqualValues(t, 1, length.refCount())
	assert.EqualValues(t, 1, elem.refCount())

	seq.Release()
	assert.EqualValues(t, 0, length.refCount())
	assert.EqualValues(t, 0, elem.refCount())
}

func TestEnumLookupFirstMatchWins(t *testing.T) {
	container := NewInteger(32, LittleEndian, false, 0)
	e := NewEnum(container)
	container.Release()

	e.Add(0, 1, 10)
	e.Add(1, 2, 20) // overlapping range, per the documented "first match wins"

	got, ok := e.Lookup(1)
	assert.True(t, ok)
	assert.EqualValues(t, 10, got)

	_, ok = e.Lookup(5)
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "integer", KindInteger.String())
	assert.Equal(t, "untagged variant", KindUntaggedVariant.String())
	assert.Equal(t, "<unknown kind>", Kind(99).String())
}

type fakeScope struct {
	free func()
}

func (f fakeScope) Free() {
	if f.free != nil {
		f.free()
	}
}
