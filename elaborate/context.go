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
	"github.com/efficios/ctfmeta/name"
	"github.com/efficios/ctfmeta/types"
)

// elaborator carries the state threaded explicitly through every resolver
// function (§9: "pass the scope stack as an explicit parameter rather than
// via any hidden state"). It is deliberately tiny: the scope to search is
// always passed alongside it by the caller, never stored here.
type elaborator struct {
	names *name.Registry
	bo    types.ByteOrder // the owning trace's byte order, used for "native" (§4.6) and omitted-attribute defaulting
}

// Context is the process-wide collaborator owning the interned name
// registry (§9: "not a hidden singleton"). One Context can elaborate many
// traces in sequence; each gets an independent Trace/Scope tree, but names
// interned while elaborating one trace remain interned for the next,
// matching §3.1's "process-wide registry" framing while still letting
// tests reset it between runs by constructing a fresh Context.
type Context struct {
	Names *name.Registry
}

// NewContext returns a Context with a fresh name registry.
func NewContext() *Context {
	return &Context{Names: name.New()}
}
