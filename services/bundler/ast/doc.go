// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast provides the JavaScript front-end for the Aleutian Bundler
// transform pipeline.
//
// The package wraps tree-sitter parsing of JavaScript sources and builds the
// per-file binding information the platform-specialization pass depends on:
//
//   - JavaScriptParser parses source bytes into a tree-sitter syntax tree
//     with validation, cancellation support, and metrics.
//   - Bindings is a one-pass collector over the parsed tree that records
//     lexical scopes, user declarations, and the file's import/require table.
//     It answers the two questions the specializer asks: "is this identifier
//     occurrence locally declared?" and "does this expression denote a
//     specific imported symbol, and from which module?"
//
// The parse tree produced here is read-only. Rewrites downstream are
// expressed as byte-range edits against the original source, never as
// mutations of the tree.
//
// # Usage
//
//	parser := ast.NewJavaScriptParser()
//	result, err := parser.Parse(ctx, content, "app.js")
//	if err != nil {
//	    return fmt.Errorf("parse: %w", err)
//	}
//	defer result.Close()
//
//	bindings := ast.CollectBindings(result.Root(), content)
//	if bindings.IsLocallyDeclared("__DEV__", node) {
//	    // occurrence is shadowed by user code
//	}
package ast
