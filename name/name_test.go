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

package name

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternIsStable(t *testing.T) {
	r := New()
	a := r.Intern("uint32_t")
	b := r.Intern("uint32_t")
	assert.Equal(t, a, b)
}

func TestInternDistinctStrings(t *testing.T) {
	r := New()
	a := r.Intern("foo")
	b := r.Intern("bar")
	assert.NotEqual(t, a, b)
}

func TestEmptyStringIsNone(t *testing.T) {
	r := New()
	assert.Equal(t, None, r.Intern(""))
}

func TestLookupRoundTrips(t *testing.T) {
	r := New()
	id := r.Intern("hdr")
	assert.Equal(t, "hdr", r.Lookup(id))
}

func TestZeroValueRegistryUsable(t *testing.T) {
	var r Registry
	id := r.Intern("hdr")
	assert.Equal(t, "hdr", r.Lookup(id))
}

func TestLookupUnregisteredPanics(t *testing.T) {
	r := New()
	assert.Panics(t, func() { r.Lookup(ID(99)) })
}

func TestStringFormatsNoneAsAnonymous(t *testing.T) {
	r := New()
	assert.Equal(t, "<anonymous>", r.String(None))
}

func TestStringFormatsInternedID(t *testing.T) {
	r := New()
	id := r.Intern("magic")
	require.NotEqual(t, None, id)
	assert.Equal(t, "magic", r.String(id))
}
