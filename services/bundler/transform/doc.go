// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transform implements the platform-specialization pass of the
// Aleutian Bundler.
//
// Given a parsed JavaScript file and an ordered platform priority list,
// the pass resolves platform-conditional constructs into literals so
// that downstream minification can strip unreachable platform branches:
//
//   - Platform.OS member reads become the target platform's name as a
//     string literal.
//   - Platform.select({...}) calls collapse to the single
//     highest-priority branch, recursively specialized.
//   - Free __DEV__ identifiers become the development-mode boolean.
//
// Platform here means the symbol of the configured platform framework
// module (react-native by default), resolved through the file's own
// import/require table. A locally shadowed name is never substituted.
//
// Because the tree-sitter tree is immutable, the pass expresses its
// rewrites as byte-range Edits against the original source; ApplyEdits
// is the generic re-emission step. The pass itself is a total function:
// any structural ambiguity leaves the original subtree unmodified while
// traversal continues into its children.
//
// Transformer bundles the full per-file pipeline (parse, collect
// bindings, specialize, apply edits) behind one call.
package transform
