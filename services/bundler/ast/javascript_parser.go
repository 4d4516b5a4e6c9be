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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScriptParser parses JavaScript source into a tree-sitter tree.
//
// Description:
//
//	JavaScriptParser is the front-end of the bundler transform pipeline.
//	It validates and parses source bytes, returning a ParseResult whose
//	tree the specialization pass traverses directly. It supports all
//	modern JavaScript features including ES modules, classes,
//	async/await, and generators.
//
// Thread Safety:
//
//	JavaScriptParser is safe for concurrent use. Multiple goroutines can
//	call Parse simultaneously. Each Parse call creates its own
//	tree-sitter parser instance.
//
// Example:
//
//	parser := ast.NewJavaScriptParser()
//	result, err := parser.Parse(ctx, content, "app.js")
//	if err != nil {
//	    return fmt.Errorf("parse: %w", err)
//	}
//	defer result.Close()
type JavaScriptParser struct {
	options JavaScriptParserOptions
}

// JavaScriptParserOptions configures JavaScriptParser behavior.
type JavaScriptParserOptions struct {
	// MaxFileSize is the maximum file size in bytes to parse.
	// Files larger than this return ErrFileTooLarge.
	// Default: 10MB
	MaxFileSize int
}

// DefaultJavaScriptParserOptions returns the default options.
func DefaultJavaScriptParserOptions() JavaScriptParserOptions {
	return JavaScriptParserOptions{
		MaxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// JavaScriptParserOption is a functional option for configuring JavaScriptParser.
type JavaScriptParserOption func(*JavaScriptParserOptions)

// WithJSMaxFileSize sets the maximum file size for parsing.
func WithJSMaxFileSize(size int) JavaScriptParserOption {
	return func(o *JavaScriptParserOptions) {
		o.MaxFileSize = size
	}
}

// NewJavaScriptParser creates a new JavaScriptParser with the given options.
func NewJavaScriptParser(opts ...JavaScriptParserOption) *JavaScriptParser {
	options := DefaultJavaScriptParserOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &JavaScriptParser{options: options}
}

// Language returns the language name for this parser.
func (p *JavaScriptParser) Language() string {
	return "javascript"
}

// Extensions returns the file extensions this parser handles.
func (p *JavaScriptParser) Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx"}
}

// Parse parses JavaScript source into a ParseResult.
//
// Description:
//
//	Validates the content (size, UTF-8), parses it with tree-sitter,
//	and returns a ParseResult that keeps the tree alive for downstream
//	traversal. Syntactically invalid code still produces a tree; error
//	regions are reported via ParseResult.HasSyntaxErrors and treated
//	conservatively by downstream passes.
//
// Inputs:
//
//	ctx      - Context for cancellation. Checked before and after parsing.
//	content  - Raw JavaScript source bytes. Must be valid UTF-8.
//	filePath - Path to the file, used for logging and metric attribution.
//
// Outputs:
//
//	*ParseResult - The parsed file. Caller must call Close.
//	error        - Non-nil only for complete failures (invalid UTF-8,
//	               too large, canceled context, tree-sitter failure).
//
// Thread Safety:
//
//	Safe for concurrent use.
func (p *JavaScriptParser) Parse(ctx context.Context, content []byte, filePath string) (*ParseResult, error) {
	start := time.Now()

	ctx, span := startParseSpan(ctx, "javascript", filePath, len(content))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("javascript parse canceled before start: %w", ErrContextCanceled)
	}

	if len(content) > p.options.MaxFileSize {
		recordParseMetrics(ctx, "javascript", time.Since(start), false)
		return nil, ErrFileTooLarge
	}

	if !utf8.Valid(content) {
		recordParseMetrics(ctx, "javascript", time.Since(start), false)
		return nil, ErrInvalidContent
	}

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordParseMetrics(ctx, "javascript", time.Since(start), false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", ErrParseFailed)
	}

	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, fmt.Errorf("javascript parse canceled after tree-sitter: %w", ErrContextCanceled)
	}

	recordParseMetrics(ctx, "javascript", time.Since(start), true)

	return &ParseResult{
		FilePath:      filePath,
		Language:      "javascript",
		Hash:          hex.EncodeToString(hash[:]),
		ParsedAtMilli: time.Now().UnixMilli(),
		Source:        content,
		tree:          tree,
	}, nil
}
