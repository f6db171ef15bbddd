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
	"github.com/efficios/ctfmeta/ast"
	"github.com/efficios/ctfmeta/types"
)

// attrName reads the left-hand side of a single-attribute CtfExpression,
// e.g. the "size" in «size = 32».
func attrName(attr *ast.CtfExpression) (string, bool) {
	if len(attr.Left) != 1 || attr.Left[0].Kind != ast.StringLiteral {
		return "", false
	}
	return attr.Left[0].SText, true
}

// findAttr returns the first attribute in attrs named name.
func findAttr(attrs []*ast.CtfExpression, name string) (*ast.CtfExpression, bool) {
	for _, a := range attrs {
		if n, ok := attrName(a); ok && n == name {
			return a, true
		}
	}
	return nil, false
}

// attrUnsigned reads attr's value as a single unsigned constant.
func attrUnsigned(attr *ast.CtfExpression) (uint64, bool) {
	if len(attr.Right) != 1 {
		return 0, false
	}
	v := attr.Right[0]
	switch v.Kind {
	case ast.UnsignedConstant:
		return v.UValue, true
	case ast.SignedConstant:
		if v.SValue < 0 {
			return 0, false
		}
		return uint64(v.SValue), true
	}
	return 0, false
}

// attrString reads attr's value as a single string literal.
func attrString(attr *ast.CtfExpression) (string, bool) {
	if len(attr.Right) != 1 || attr.Right[0].Kind != ast.StringLiteral {
		return "", false
	}
	return attr.Right[0].SText, true
}

// attrBool coerces attr's value to a boolean, per §4.6: "boolean coerced
// from 0/1, signed constant 0/non-0, or string in {"true","TRUE","false",
// "FALSE"}".
func attrBool(attr *ast.CtfExpression) (bool, bool) {
	if len(attr.Right) != 1 {
		return false, false
	}
	v := attr.Right[0]
	switch v.Kind {
	case ast.UnsignedConstant:
		return v.UValue != 0, true
	case ast.SignedConstant:
		return v.SValue != 0, true
	case ast.StringLiteral:
		switch v.SText {
		case "true", "TRUE":
			return true, true
		case "false", "FALSE":
			return false, true
		}
	}
	return false, false
}

// attrByteOrder resolves attr's value against the §4.6 byte-order string
// set, defaulting "native" to the trace's own byte order.
func (e *elaborator) attrByteOrder(attr *ast.CtfExpression) (types.ByteOrder, bool) {
	s, ok := attrString(attr)
	if !ok {
		return 0, false
	}
	switch s {
	case "native":
		return e.bo, true
	case "network", "be":
		return types.BigEndian, true
	case "le":
		return types.LittleEndian, true
	default:
		return 0, false
	}
}
