// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ParseResult holds a parsed JavaScript file.
//
// Unlike symbol-extraction parsers, the bundler front-end keeps the
// tree-sitter tree alive after Parse returns: the specialization pass
// traverses it directly. Callers own the result and must call Close
// when the tree is no longer needed.
//
// The tree references the source bytes passed to Parse; callers must
// not mutate that slice while the result is in use.
type ParseResult struct {
	// FilePath is the path supplied to Parse, used for logging and
	// metric attribution only.
	FilePath string

	// Language is always "javascript" for this parser.
	Language string

	// Hash is the hex-encoded SHA-256 of the source content.
	Hash string

	// ParsedAtMilli is the parse timestamp as int64 UnixMilli,
	// per project conventions.
	ParsedAtMilli int64

	// Source is the exact byte slice that was parsed. Node byte
	// offsets index into this slice.
	Source []byte

	tree *sitter.Tree
}

// Root returns the root node of the parsed tree.
func (r *ParseResult) Root() *sitter.Node {
	if r.tree == nil {
		return nil
	}
	return r.tree.RootNode()
}

// HasSyntaxErrors reports whether the parsed tree contains error nodes.
//
// Syntactically invalid regions are not a parse failure: downstream
// passes simply treat them conservatively and leave them unmodified.
func (r *ParseResult) HasSyntaxErrors() bool {
	root := r.Root()
	return root != nil && root.HasError()
}

// Close releases the tree-sitter tree. Safe to call more than once.
func (r *ParseResult) Close() {
	if r.tree != nil {
		r.tree.Close()
		r.tree = nil
	}
}
