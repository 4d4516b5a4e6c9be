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

// spanKey identifies a scope node by its byte span. Tree-sitter nodes
// are value handles, so spans are the stable identity used for scope
// lookup during the parent-chain walk.
type spanKey struct {
	start uint32
	end   uint32
}

func keyOf(n *sitter.Node) spanKey {
	return spanKey{start: n.StartByte(), end: n.EndByte()}
}

// importKind classifies how a module binding entered the file.
type importKind int

const (
	// importNamed is `import { Platform } from "react-native"`,
	// possibly aliased with `as`.
	importNamed importKind = iota

	// importDefault is `import RN from "react-native"`.
	importDefault

	// importNamespace is `import * as RN from "react-native"`.
	importNamespace

	// importRequireNamed is `const { Platform } = require("react-native")`.
	importRequireNamed

	// importRequireNamespace is `const RN = require("react-native")`.
	importRequireNamespace
)

// importBinding records the module origin of a top-level binding.
type importBinding struct {
	kind     importKind
	source   string
	imported string
}

// Bindings is the per-file declaration and import table consumed by the
// platform-specialization pass.
//
// Description:
//
//	Bindings is built by one walk over a parsed file. It records, per
//	lexical scope, the names bound by user declarations (var/let/const,
//	function and class declarations, parameters, catch clauses, and
//	destructuring patterns), and separately the file's import/require
//	table (named, default, and namespace imports plus direct and
//	destructured top-level require calls).
//
//	It answers the two oracle questions the specializer depends on:
//
//	  - IsLocallyDeclared: is this identifier occurrence bound by a
//	    declaration in the current file's scope chain?
//	  - ResolveModuleReference: does this expression denote a specific
//	    imported symbol, and from which module?
//
//	All answers are resolved against the current file only; there is no
//	cross-file resolution.
//
// Semantics:
//
//	Shadowing is scope-wide, not position-sensitive: a `let` later in
//	the same block still shadows the imported meaning for the whole
//	block. `var` declarations hoist to the nearest function scope;
//	`let`/`const` bind in their block. Require bindings are recognized
//	only at the top level of the file; a require in a nested scope is
//	treated as a plain local declaration, which is the conservative
//	answer for the specializer (no substitution).
//
// Thread Safety:
//
//	Bindings is immutable after CollectBindings returns and safe for
//	concurrent reads.
type Bindings struct {
	source  []byte
	root    *sitter.Node
	scopes  map[spanKey]map[string]bool
	imports map[string]importBinding
}

// CollectBindings walks the parsed tree once and builds the file's
// declaration and import table.
//
// Inputs:
//
//	root   - Root node of the parsed file (ParseResult.Root()).
//	source - The exact bytes the tree was parsed from.
//
// Outputs:
//
//	*Bindings - Never nil. Empty tables for a nil root.
func CollectBindings(root *sitter.Node, source []byte) *Bindings {
	b := &Bindings{
		source:  source,
		root:    root,
		scopes:  make(map[spanKey]map[string]bool),
		imports: make(map[string]importBinding),
	}
	if root != nil {
		b.collect(root)
	}
	return b
}

// IsLocallyDeclared reports whether an occurrence of name at ref is
// bound by a declaration inside the file's scope chain, shadowing any
// outer or global meaning. Import bindings count as declarations.
func (b *Bindings) IsLocallyDeclared(name string, ref *sitter.Node) bool {
	for p := ref; p != nil; p = p.Parent() {
		if decls, ok := b.scopes[keyOf(p)]; ok && decls[name] {
			return true
		}
	}
	_, imported := b.imports[name]
	return imported
}

// ResolveModuleReference reports whether the given expression denotes a
// specific imported or required symbol.
//
// Description:
//
//	Three shapes resolve to a module reference:
//
//	  - An identifier bound by a named import or a destructured
//	    top-level require: yields (module path, imported name).
//	  - A non-computed member access whose object is a namespace
//	    import, default import, or direct require binding: yields
//	    (module path, property name).
//
//	A plain local declaration anywhere on the scope chain between the
//	occurrence and the top level shadows the import, and the expression
//	resolves to nothing.
//
// Outputs:
//
//	modulePath - Module specifier as written in the import/require.
//	boundName  - The named export the expression denotes.
//	ok         - False when the expression is not such a reference.
func (b *Bindings) ResolveModuleReference(n *sitter.Node) (modulePath, boundName string, ok bool) {
	if n == nil {
		return "", "", false
	}

	switch n.Type() {
	case jsNodeIdentifier:
		name := b.text(n)
		if b.shadowed(name, n) {
			return "", "", false
		}
		ib, found := b.imports[name]
		if !found {
			return "", "", false
		}
		if ib.kind == importNamed || ib.kind == importRequireNamed {
			return ib.source, ib.imported, true
		}
		return "", "", false

	case jsNodeMemberExpression:
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj == nil || prop == nil ||
			obj.Type() != jsNodeIdentifier || prop.Type() != jsNodePropertyIdentifier {
			return "", "", false
		}
		name := b.text(obj)
		if b.shadowed(name, obj) {
			return "", "", false
		}
		ib, found := b.imports[name]
		if !found {
			return "", "", false
		}
		switch ib.kind {
		case importNamespace, importDefault, importRequireNamespace:
			return ib.source, b.text(prop), true
		default:
			return "", "", false
		}
	}

	return "", "", false
}

// shadowed reports whether a plain (non-import) declaration of name
// exists on the scope chain above ref.
func (b *Bindings) shadowed(name string, ref *sitter.Node) bool {
	for p := ref; p != nil; p = p.Parent() {
		if decls, ok := b.scopes[keyOf(p)]; ok && decls[name] {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Collection
// ---------------------------------------------------------------------------

func (b *Bindings) collect(n *sitter.Node) {
	switch n.Type() {
	case jsNodeImportStatement:
		b.collectImport(n)
		return

	case jsNodeVariableDeclaration, jsNodeLexicalDeclaration:
		b.collectVariableDeclaration(n)
		// Keep walking: declarator values may contain nested scopes.

	case jsNodeFunctionDeclaration, jsNodeGeneratorFunctionDecl:
		if name := n.ChildByFieldName("name"); name != nil {
			b.declare(b.scopeOf(n, true), b.text(name))
		}

	case jsNodeClassDeclaration:
		if name := n.ChildByFieldName("name"); name != nil {
			b.declare(b.scopeOf(n, false), b.text(name))
		}

	case jsNodeFunctionExpr, jsNodeFunctionExprOld, jsNodeGeneratorFunc:
		// A named function expression binds its own name inside itself.
		if name := n.ChildByFieldName("name"); name != nil {
			b.declare(n, b.text(name))
		}

	case jsNodeFormalParameters:
		scope := b.enclosingFunctionScope(n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			b.bindPattern(n.NamedChild(i), scope)
		}

	case jsNodeArrowFunction:
		// Single-parameter arrow without parentheses: x => ...
		if p := n.ChildByFieldName("parameter"); p != nil {
			b.bindPattern(p, n)
		}

	case jsNodeCatchClause:
		if p := n.ChildByFieldName("parameter"); p != nil {
			b.bindPattern(p, n)
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.collect(n.NamedChild(i))
	}
}

// collectVariableDeclaration records the bindings introduced by one
// var/let/const statement. Top-level require calls populate the import
// table instead of the declaration table.
func (b *Bindings) collectVariableDeclaration(n *sitter.Node) {
	hoist := n.Type() == jsNodeVariableDeclaration

	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != jsNodeVariableDeclarator {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}

		scope := b.scopeOf(d, hoist)
		if src, isRequire := b.requireSource(d.ChildByFieldName("value")); isRequire &&
			scope.Type() == jsNodeProgram {
			b.collectRequireBinding(nameNode, src, scope)
			continue
		}

		b.bindPattern(nameNode, scope)
	}
}

// collectRequireBinding records a top-level `require` binding.
func (b *Bindings) collectRequireBinding(nameNode *sitter.Node, src string, scope *sitter.Node) {
	switch nameNode.Type() {
	case jsNodeIdentifier:
		b.imports[b.text(nameNode)] = importBinding{
			kind:     importRequireNamespace,
			source:   src,
			imported: "*",
		}

	case jsNodeObjectPattern:
		for i := 0; i < int(nameNode.NamedChildCount()); i++ {
			p := nameNode.NamedChild(i)
			switch p.Type() {
			case jsNodeShorthandPropertyIdentifierPattern:
				name := b.text(p)
				b.imports[name] = importBinding{
					kind:     importRequireNamed,
					source:   src,
					imported: name,
				}
			case jsNodePairPattern:
				key := p.ChildByFieldName("key")
				value := p.ChildByFieldName("value")
				if key != nil && value != nil &&
					key.Type() == jsNodePropertyIdentifier && value.Type() == jsNodeIdentifier {
					b.imports[b.text(value)] = importBinding{
						kind:     importRequireNamed,
						source:   src,
						imported: b.text(key),
					}
				} else if value != nil {
					b.bindPattern(value, scope)
				}
			case jsNodeComment:
				// skip
			default:
				// Defaults, rests, and nested patterns are plain local
				// declarations; the specializer will not substitute them.
				b.bindPattern(p, scope)
			}
		}

	default:
		b.bindPattern(nameNode, scope)
	}
}

// collectImport records the bindings introduced by one ES import
// statement.
func (b *Bindings) collectImport(n *sitter.Node) {
	src := b.stringContent(n.ChildByFieldName("source"))
	if src == "" {
		return
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != jsNodeImportClause {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			c := child.Child(j)
			switch c.Type() {
			case jsNodeIdentifier:
				b.imports[b.text(c)] = importBinding{
					kind:     importDefault,
					source:   src,
					imported: "default",
				}
			case jsNodeNamespaceImport:
				for k := 0; k < int(c.ChildCount()); k++ {
					gc := c.Child(k)
					if gc.Type() == jsNodeIdentifier {
						b.imports[b.text(gc)] = importBinding{
							kind:     importNamespace,
							source:   src,
							imported: "*",
						}
					}
				}
			case jsNodeNamedImports:
				for k := 0; k < int(c.ChildCount()); k++ {
					gc := c.Child(k)
					if gc.Type() != jsNodeImportSpecifier {
						continue
					}
					nameNode := gc.ChildByFieldName("name")
					if nameNode == nil {
						continue
					}
					local := nameNode
					if alias := gc.ChildByFieldName("alias"); alias != nil {
						local = alias
					}
					b.imports[b.text(local)] = importBinding{
						kind:     importNamed,
						source:   src,
						imported: b.text(nameNode),
					}
				}
			}
		}
	}
}

// bindPattern records every identifier bound by a declaration pattern
// into the given scope. Handles plain identifiers, object and array
// destructuring, defaults, and rest elements.
func (b *Bindings) bindPattern(pat *sitter.Node, scope *sitter.Node) {
	if pat == nil {
		return
	}

	switch pat.Type() {
	case jsNodeIdentifier, jsNodeShorthandPropertyIdentifierPattern:
		b.declare(scope, b.text(pat))

	case jsNodeObjectPattern, jsNodeArrayPattern:
		for i := 0; i < int(pat.NamedChildCount()); i++ {
			b.bindPattern(pat.NamedChild(i), scope)
		}

	case jsNodePairPattern:
		b.bindPattern(pat.ChildByFieldName("value"), scope)

	case jsNodeAssignmentPattern, jsNodeObjectAssignmentPattern:
		b.bindPattern(pat.ChildByFieldName("left"), scope)

	case jsNodeRestPattern:
		for i := 0; i < int(pat.NamedChildCount()); i++ {
			b.bindPattern(pat.NamedChild(i), scope)
		}
	}
}

// declare records name as bound in the given scope.
func (b *Bindings) declare(scope *sitter.Node, name string) {
	if scope == nil || name == "" {
		return
	}
	k := keyOf(scope)
	decls, ok := b.scopes[k]
	if !ok {
		decls = make(map[string]bool)
		b.scopes[k] = decls
	}
	decls[name] = true
}

// scopeOf returns the scope node a declaration at n binds into. With
// hoist, only function-level scopes qualify (`var` semantics);
// otherwise the nearest block scope wins (`let`/`const` semantics).
func (b *Bindings) scopeOf(n *sitter.Node, hoist bool) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		t := p.Type()
		if funcScopeTypes[t] {
			return p
		}
		if !hoist && blockScopeTypes[t] {
			return p
		}
	}
	return b.root
}

// enclosingFunctionScope returns the nearest enclosing function-level
// scope node.
func (b *Bindings) enclosingFunctionScope(n *sitter.Node) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if funcScopeTypes[p.Type()] {
			return p
		}
	}
	return b.root
}

// requireSource reports whether v is a `require("...")` call and
// returns the module specifier.
func (b *Bindings) requireSource(v *sitter.Node) (string, bool) {
	if v == nil || v.Type() != jsNodeCallExpression {
		return "", false
	}
	fn := v.ChildByFieldName("function")
	if fn == nil || fn.Type() != jsNodeIdentifier || b.text(fn) != "require" {
		return "", false
	}
	args := v.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		c := args.NamedChild(i)
		if c.Type() == jsNodeComment {
			continue
		}
		if c.Type() == jsNodeString {
			return b.stringContent(c), true
		}
		return "", false
	}
	return "", false
}

// stringContent extracts the string content without quotes.
func (b *Bindings) stringContent(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == jsNodeStringFragment {
			return b.text(child)
		}
	}
	// Fallback: remove quotes manually
	text := b.text(node)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

func (b *Bindings) text(n *sitter.Node) string {
	return string(b.source[n.StartByte():n.EndByte()])
}
