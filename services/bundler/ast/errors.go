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
	"errors"
)

// Sentinel errors for common parse failure conditions.
//
// These errors can be checked using errors.Is() to determine the
// category of failure without inspecting error messages.
var (
	// ErrInvalidContent indicates that the provided content is invalid
	// and cannot be processed.
	//
	// Common causes:
	//   - Nil content slice
	//   - Non-UTF-8 encoding
	//   - Binary file content
	ErrInvalidContent = errors.New("invalid content")

	// ErrFileTooLarge indicates that the content exceeds the parser's
	// configured maximum file size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrParseFailed indicates that parsing failed completely and no
	// tree could be produced.
	//
	// Note that syntactically invalid JavaScript does not produce this
	// error: tree-sitter returns a tree with error nodes, and downstream
	// passes treat those regions conservatively.
	ErrParseFailed = errors.New("parse failed")

	// ErrContextCanceled indicates that parsing was canceled via context.
	//
	// This wraps context cancellation into a parse-specific error that
	// can be distinguished from other context cancellations.
	ErrContextCanceled = errors.New("parse canceled")
)
