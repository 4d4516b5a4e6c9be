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

// JavaScript Tree-sitter Node Types
//
// This file documents the tree-sitter node types used by the binding
// collector. The collector uses direct node traversal rather than
// tree-sitter's query language for precise control over scope tracking.
//
// Reference: https://github.com/tree-sitter/tree-sitter-javascript

// Node type constants for JavaScript AST traversal.
const (
	// Top-level nodes
	jsNodeProgram = "program"

	// Import-related nodes
	jsNodeImportStatement = "import_statement"
	jsNodeImportClause    = "import_clause"
	jsNodeNamespaceImport = "namespace_import"
	jsNodeNamedImports    = "named_imports"
	jsNodeImportSpecifier = "import_specifier"
	jsNodeString          = "string"
	jsNodeStringFragment  = "string_fragment"

	// Comments are "extra" nodes and may appear as a named child of
	// any construct the collector walks.
	jsNodeComment = "comment"

	// Declaration nodes
	jsNodeFunctionDeclaration   = "function_declaration"
	jsNodeGeneratorFunctionDecl = "generator_function_declaration"
	jsNodeClassDeclaration      = "class_declaration"
	jsNodeLexicalDeclaration    = "lexical_declaration"
	jsNodeVariableDeclaration   = "variable_declaration"
	jsNodeVariableDeclarator    = "variable_declarator"

	// Function-related nodes
	jsNodeFormalParameters = "formal_parameters"
	jsNodeArrowFunction    = "arrow_function"
	jsNodeFunctionExpr     = "function_expression"
	jsNodeFunctionExprOld  = "function" // pre-0.20 grammar name
	jsNodeGeneratorFunc    = "generator_function"
	jsNodeMethodDefinition = "method_definition"
	jsNodeStaticBlock      = "static_block"
	jsNodeStatementBlock   = "statement_block"

	// Pattern nodes (destructuring)
	jsNodeObjectPattern           = "object_pattern"
	jsNodeArrayPattern            = "array_pattern"
	jsNodePairPattern             = "pair_pattern"
	jsNodeRestPattern             = "rest_pattern"
	jsNodeAssignmentPattern       = "assignment_pattern"
	jsNodeObjectAssignmentPattern = "object_assignment_pattern"

	jsNodeShorthandPropertyIdentifierPattern = "shorthand_property_identifier_pattern"

	// Identifier nodes
	jsNodeIdentifier         = "identifier"
	jsNodePropertyIdentifier = "property_identifier"

	// Expression nodes
	jsNodeCallExpression   = "call_expression"
	jsNodeMemberExpression = "member_expression"

	// Statement nodes
	jsNodeForStatement   = "for_statement"
	jsNodeForInStatement = "for_in_statement"
	jsNodeCatchClause    = "catch_clause"
)

// funcScopeTypes are node types that open a function-level scope.
// `var` declarations and function declarations hoist to the nearest
// enclosing scope of one of these types.
var funcScopeTypes = map[string]bool{
	jsNodeProgram:               true,
	jsNodeFunctionDeclaration:   true,
	jsNodeGeneratorFunctionDecl: true,
	jsNodeFunctionExpr:          true,
	jsNodeFunctionExprOld:       true,
	jsNodeGeneratorFunc:         true,
	jsNodeArrowFunction:         true,
	jsNodeMethodDefinition:      true,
	jsNodeStaticBlock:           true,
}

// blockScopeTypes are node types that additionally open a block-level
// scope for `let`, `const`, and class declarations.
var blockScopeTypes = map[string]bool{
	jsNodeStatementBlock: true,
	jsNodeForStatement:   true,
	jsNodeForInStatement: true,
	jsNodeCatchClause:    true,
}
