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

// Package elaborate implements the AST-to-type-model elaborator: the
// recursive visitor described in spec.md §4 that resolves declarators,
// builds the type model of package types inside the scopes of package
// scope, and assembles the package trace aggregate.
package elaborate

import (
	"fmt"

	"github.com/efficios/ctfmeta/ast"
)

// Kind discriminates the error taxonomy of §7.
type Kind int

const (
	KindAlreadyDefined Kind = iota
	KindUndefined
	KindMissingMandatory
	KindInvalidAttribute
	KindInvalidStructure
	KindUnsupported
	KindParseValue
)

func (k Kind) String() string {
	switch k {
	case KindAlreadyDefined:
		return "AlreadyDefined"
	case KindUndefined:
		return "Undefined"
	case KindMissingMandatory:
		return "MissingMandatory"
	case KindInvalidAttribute:
		return "InvalidAttribute"
	case KindInvalidStructure:
		return "InvalidStructure"
	case KindUnsupported:
		return "Unsupported"
	case KindParseValue:
		return "ParseValue"
	default:
		return "Unknown"
	}
}

// Error is the elaborator's structured error value (§7). It carries a
// short human-readable message, the AST position if the offending node
// supplied one, and is never logged by the elaborator itself — callers
// format and log it (§7 "User-visible behavior").
type Error struct {
	Kind    Kind
	Message string
	Pos     ast.Pos
	cause   error
}

func (e *Error) Error() string {
	if e.Pos.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes a wrapped cause (e.g. a uuid/strconv parse failure), so
// callers can errors.Is/As through to it.
func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, pos ast.Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func wrapErr(kind Kind, pos ast.Pos, cause error, format string, args ...interface{}) *Error {
	e := newErr(kind, pos, format, args...)
	e.cause = cause
	return e
}

// ErrorList accumulates more than one Error for the one caller-visible
// place where that is useful: the scope-level "already defined" sweep a
// caller may want to run as a batch lint before treating the first hit as
// fatal. The elaborator's own construct_metadata (§6.2) never returns more
// than one Error — the propagation policy of §7 surfaces the first failure
// immediately.
type ErrorList []*Error

func (l ErrorList) Error() string {
	if len(l) == 0 {
		return ""
	}
	if len(l) == 1 {
		return l[0].Error()
	}
	return fmt.Sprintf("%d errors, first: %s", len(l), l[0].Error())
}
