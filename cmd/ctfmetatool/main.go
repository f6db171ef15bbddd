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

// Command ctfmetatool is a thin demonstration CLI around package elaborate.
// The real CTF metadata lexer/parser is out of scope (spec.md §1): this
// tool builds a small fixture AST in-process (equivalent to the S1 scenario
// of spec.md §8) and runs it through elaborate.ConstructMetadata, printing
// a summary of the resulting trace. A real deployment would replace
// buildFixture with an actual parser front-end feeding the same ast.Root
// contract.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/efficios/ctfmeta/ast"
	"github.com/efficios/ctfmeta/elaborate"
	"github.com/efficios/ctfmeta/internal/ctxlog"
	"github.com/efficios/ctfmeta/types"
)

func main() {
	var (
		metadataPath = flag.String("metadata", "", "path to a CTF metadata document (unused: no parser is wired up yet, see package doc)")
		byteOrder    = flag.String("byte-order", "le", `trace byte order override: "le" or "be"`)
		verbose      = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	minSeverity := ctxlog.Info
	if *verbose {
		minSeverity = ctxlog.Debug
	}
	ctx := ctxlog.NewContext(context.Background(), os.Stderr, minSeverity)
	ctx = ctxlog.Tag(ctx, "ctfmetatool")

	if *metadataPath != "" {
		ctxlog.Infof(ctx, "metadata path %q given but no parser is wired up; running the built-in fixture instead", *metadataPath)
	}

	bo, err := parseByteOrder(*byteOrder)
	if err != nil {
		ctxlog.Errorf(ctx, "%v", err)
		os.Exit(1)
	}

	if err := run(ctx, bo); err != nil {
		ctxlog.Errorf(ctx, "elaboration failed: %v", err)
		os.Exit(1)
	}
}

func parseByteOrder(s string) (types.ByteOrder, error) {
	switch s {
	case "le":
		return types.LittleEndian, nil
	case "be":
		return types.BigEndian, nil
	default:
		return 0, fmt.Errorf("invalid -byte-order %q: must be \"le\" or \"be\"", s)
	}
}

func run(ctx context.Context, byteOrder types.ByteOrder) error {
	root := buildFixture()

	c := elaborate.NewContext()
	ctxlog.Debugf(ctx, "elaborating fixture against byte order %v", byteOrder)
	tr, err := c.ConstructMetadata(root, byteOrder)
	if err != nil {
		return err
	}

	ctxlog.Infof(ctx, "trace major=%d minor=%d word_size=%d streams=%d", tr.Major, tr.Minor, tr.WordSize, len(tr.Streams))
	for id, s := range tr.Streams {
		if s == nil {
			continue
		}
		ctxlog.Infof(ctx, "stream %d: %d event(s)", id, len(s.EventsByID))
		for _, ev := range s.EventsByID {
			if ev == nil {
				continue
			}
			ctxlog.Infof(ctx, "  event %d %q", ev.ID, c.Names.Lookup(ev.Name))
		}
	}
	return nil
}

// buildFixture constructs the S1 scenario from spec.md §8 directly as an
// ast.Root, standing in for what a real parser would produce from:
//
//	typealias integer { size = 32; signed = false; align = 32; } := uint32_t;
//	struct hdr { uint32_t magic; uint32_t version; };
//	trace { major = 1; minor = 8; uuid = "11111111-2222-3333-4444-555555555555"; word_size = 64; };
func buildFixture() *ast.Root {
	u32 := []ast.Node{&ast.TypeSpecifier{
		Kind: ast.SpecInteger,
		Attrs: []*ast.CtfExpression{
			attr("size", unsigned(32)),
			attr("signed", unsigned(0)),
			attr("align", unsigned(32)),
		},
	}}

	typealias := &ast.Typealias{
		Target: ast.TypeAndDeclarator{Specifiers: u32},
		Alias: ast.TypeAndDeclarator{
			Specifiers:  []ast.Node{&ast.TypeSpecifier{Kind: ast.SpecIdentifier, IDValue: "uint32_t"}},
			Declarators: []*ast.Declarator{{}},
		},
	}
	// The alias identifier is synthesized from specifier tokens, not
	// IDValue directly; "uint32_t" here plays the role of the alias's own
	// specifier text, matching how the source treats a typealias'ed name as
	// a one-token SpecIdentifier specifier on the alias side.
	typealias.Alias.Specifiers[0].(*ast.TypeSpecifier).Kind = ast.SpecIdentifier

	hdr := &ast.FieldDeclaration{
		Specifiers:  []ast.Node{&ast.TypeSpecifier{Kind: ast.SpecIdentifier, IDValue: "uint32_t"}},
		Declarators: []*ast.Declarator{{Name: "magic"}, {Name: "version"}},
	}
	structHdr := &ast.TypeSpecifier{
		Kind:    ast.SpecStruct,
		Name:    "hdr",
		HasBody: true,
		Decls:   []ast.Node{hdr},
	}

	trace := &ast.Trace{
		Children: []ast.Node{
			&ast.CtfExpression{Left: key("major"), Right: unsigned(1)},
			&ast.CtfExpression{Left: key("minor"), Right: unsigned(8)},
			&ast.CtfExpression{Left: key("uuid"), Right: str("11111111-2222-3333-4444-555555555555")},
			&ast.CtfExpression{Left: key("word_size"), Right: unsigned(64)},
		},
	}

	return &ast.Root{
		Decls: []ast.Node{typealias, structHdr},
		Trace: []*ast.Trace{trace},
	}
}

func attr(name string, value []*ast.UnaryExpression) *ast.CtfExpression {
	return &ast.CtfExpression{Left: key(name), Right: value}
}

func key(s string) []*ast.UnaryExpression {
	return []*ast.UnaryExpression{{Kind: ast.StringLiteral, SText: s}}
}

func unsigned(v uint64) []*ast.UnaryExpression {
	return []*ast.UnaryExpression{{Kind: ast.UnsignedConstant, UValue: v}}
}

func str(s string) []*ast.UnaryExpression {
	return []*ast.UnaryExpression{{Kind: ast.StringLiteral, SText: s}}
}
