// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transform

import (
	"math"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Default platform framework recognized by the pass.
const (
	// DefaultPlatformModule is the module whose Platform symbol the
	// pass specializes.
	DefaultPlatformModule = "react-native"

	// DefaultPlatformSymbol is the exported name carrying the
	// platform API.
	DefaultPlatformSymbol = "Platform"

	// devFlagName is the free identifier replaced by the
	// development-mode boolean.
	devFlagName = "__DEV__"

	// osPropertyName is the Platform property that yields the target
	// platform's name.
	osPropertyName = "OS"

	// selectMethodName is the Platform method that branches between
	// per-platform values.
	selectMethodName = "select"
)

// Branch priority ranks. Lower is more specific. The two sentinels sit
// far above any realistic platform-list length, so a valid index can
// never collide with them.
const (
	// defaultRank is the rank of a `default` branch: it loses to any
	// explicit platform match but beats an unrecognized key.
	defaultRank uint64 = math.MaxUint64 / 2

	// unmatchedRank marks a key that names no configured platform.
	// A branch at this rank is never selected.
	unmatchedRank uint64 = math.MaxUint64
)

// Tree-sitter node types matched by the pass.
const (
	nodeIdentifier          = "identifier"
	nodePropertyIdentifier  = "property_identifier"
	nodeMemberExpression    = "member_expression"
	nodeSubscriptExpression = "subscript_expression"
	nodeCallExpression      = "call_expression"
	nodeExpressionStatement = "expression_statement"
	nodeObject              = "object"
	nodePair                = "pair"
	nodeMethodDefinition    = "method_definition"
	nodeArrowFunction       = "arrow_function"
	nodeImportClause        = "import_clause"
	nodeImportSpecifier     = "import_specifier"
	nodeExportSpecifier     = "export_specifier"
	nodeNamespaceImport     = "namespace_import"
	nodeComment             = "comment"
	nodeTokenAsync          = "async"
	nodeTokenStar           = "*"
	nodeTokenGet            = "get"
	nodeTokenSet            = "set"
)

// ModuleResolver resolves an expression to the imported symbol it
// denotes, if any. Implementations must resolve against the current
// file's own import/require table and account for local shadowing.
//
// ast.Bindings is the production implementation; tests inject fakes.
type ModuleResolver interface {
	ResolveModuleReference(n *sitter.Node) (modulePath, boundName string, ok bool)
}

// DeclarationOracle answers whether an identifier occurrence is bound
// by a user declaration inside the current file's scope chain.
//
// ast.Bindings is the production implementation; tests inject fakes.
type DeclarationOracle interface {
	IsLocallyDeclared(name string, ref *sitter.Node) bool
}

// SpecializerConfig carries the inputs of one pass construction.
type SpecializerConfig struct {
	// TargetPlatforms is the ordered platform priority list, most
	// specific first. Index 0 is substituted for Platform.OS, and
	// positions rank Platform.select branches. Must be non-empty for
	// the platform rules to fire.
	TargetPlatforms []string

	// Resolver answers module-reference queries.
	Resolver ModuleResolver

	// Declarations answers local-shadowing queries.
	Declarations DeclarationOracle

	// DevelopmentMode is the value substituted for free __DEV__
	// identifiers.
	DevelopmentMode bool

	// PlatformModule overrides the module recognized as the platform
	// framework. Default: react-native.
	PlatformModule string

	// PlatformSymbol overrides the symbol carrying the platform API.
	// Default: Platform.
	PlatformSymbol string
}

// Stats summarizes what one specialization run did.
type Stats struct {
	// OSReplacements counts Platform.OS reads replaced by a string
	// literal.
	OSReplacements int

	// SelectReplacements counts Platform.select calls collapsed to a
	// single branch.
	SelectReplacements int

	// DevReplacements counts free __DEV__ identifiers replaced by a
	// boolean literal.
	DevReplacements int

	// BranchesDiscarded counts select branches dropped because a more
	// specific branch won.
	BranchesDiscarded int
}

// Total returns the number of replacements performed.
func (s Stats) Total() int {
	return s.OSReplacements + s.SelectReplacements + s.DevReplacements
}

// PlatformSpecializer resolves platform-conditional constructs into
// literals.
//
// Description:
//
//	The specializer performs one bottom-up walk over a parsed file and
//	rewrites three shapes:
//
//	  Rule A: a non-computed member read `P.OS`, where P resolves to
//	  the platform framework's Platform symbol, becomes the string
//	  literal TargetPlatforms[0].
//
//	  Rule B: a call `P.select({...})` whose sole considered argument
//	  is an object literal collapses to the value of the single branch
//	  with the smallest priority rank. A branch keyed `default` ranks
//	  below every explicit platform match and above any unrecognized
//	  key; on exact rank ties the first property in source order wins.
//	  Method-shorthand branches become anonymous function expressions,
//	  preserving async and generator modifiers and parameter lists.
//	  The winning branch is itself recursively specialized; every
//	  losing branch is discarded, including any side effects it
//	  contained. A property of any other shape (computed key, spread,
//	  accessor, shorthand, assignment pattern) aborts specialization
//	  of that call: the call is left unmodified and traversal recurses
//	  into its children generically.
//
//	  Rule C: a free identifier `__DEV__` becomes the development-mode
//	  boolean. An occurrence bound by a user declaration anywhere on
//	  its scope chain is left alone.
//
//	The property side of a non-computed member access is a name token,
//	not an expression, and is never matched against Rule C. Computed
//	member accesses are genuine expressions and recurse normally.
//
//	There are no hard failures: every structural ambiguity leaves the
//	original subtree in place while traversal continues into children,
//	so unrelated nested specializations are never blocked.
//
// Determinism:
//
//	One run owns its traversal state. Given the same tree, source,
//	configuration, and oracle answers, the produced edits are
//	identical. A specializer may be shared across goroutines as long
//	as its oracles are safe for concurrent reads, which ast.Bindings
//	is.
type PlatformSpecializer struct {
	platforms []string
	resolver  ModuleResolver
	decls     DeclarationOracle
	dev       bool
	module    string
	symbol    string
}

// NewPlatformSpecializer constructs a specializer from cfg, applying
// defaults for the platform module and symbol.
func NewPlatformSpecializer(cfg SpecializerConfig) *PlatformSpecializer {
	module := cfg.PlatformModule
	if module == "" {
		module = DefaultPlatformModule
	}
	symbol := cfg.PlatformSymbol
	if symbol == "" {
		symbol = DefaultPlatformSymbol
	}
	return &PlatformSpecializer{
		platforms: cfg.TargetPlatforms,
		resolver:  cfg.Resolver,
		decls:     cfg.Declarations,
		dev:       cfg.DevelopmentMode,
		module:    module,
		symbol:    symbol,
	}
}

// Specialize walks the tree rooted at root and returns the edits that
// rewrite source into its specialized form, together with run
// statistics. The tree and source are read, never modified; the run
// retains no reference to either after returning.
func (s *PlatformSpecializer) Specialize(root *sitter.Node, source []byte) ([]Edit, Stats) {
	r := &specializeRun{spec: s, source: source}
	if root != nil {
		r.visit(root)
	}
	return r.edits, r.stats
}

// specializeRun is the invocation-local traversal state.
type specializeRun struct {
	spec   *PlatformSpecializer
	source []byte
	edits  []Edit
	stats  Stats
}

func (r *specializeRun) visit(n *sitter.Node) {
	if n == nil {
		return
	}

	switch n.Type() {
	case nodeMemberExpression:
		if r.rewriteOS(n) {
			return
		}
		// Only the object side is an expression. The property side is
		// a name token and must never be matched as a free identifier.
		r.visit(n.ChildByFieldName("object"))

	case nodeSubscriptExpression:
		r.visit(n.ChildByFieldName("object"))
		r.visit(n.ChildByFieldName("index"))

	case nodeCallExpression:
		if r.rewriteSelect(n) {
			return
		}
		r.visitChildren(n)

	case nodeIdentifier:
		// Names inside import and export clauses are binding positions,
		// not expressions. Rewriting one would corrupt the clause.
		if p := n.Parent(); p != nil {
			switch p.Type() {
			case nodeImportClause, nodeImportSpecifier, nodeExportSpecifier, nodeNamespaceImport:
				return
			}
		}
		r.rewriteDevFlag(n)

	default:
		r.visitChildren(n)
	}
}

func (r *specializeRun) visitChildren(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		r.visit(n.NamedChild(i))
	}
}

// rewriteOS applies Rule A. Reports whether the node was replaced.
func (r *specializeRun) rewriteOS(n *sitter.Node) bool {
	if len(r.spec.platforms) == 0 {
		return false
	}
	prop := n.ChildByFieldName("property")
	if prop == nil || prop.Type() != nodePropertyIdentifier || r.text(prop) != osPropertyName {
		return false
	}
	if !r.matchPlatform(n.ChildByFieldName("object")) {
		return false
	}

	r.replace(n, strconv.Quote(r.spec.platforms[0]))
	r.stats.OSReplacements++
	return true
}

// rewriteSelect applies Rule B. Reports whether the call was replaced;
// false covers both "not a selector call" and "selector call left
// unmodified", and the caller recurses generically in either case.
func (r *specializeRun) rewriteSelect(n *sitter.Node) bool {
	if len(r.spec.platforms) == 0 {
		return false
	}
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Type() != nodeMemberExpression {
		return false
	}
	prop := callee.ChildByFieldName("property")
	if prop == nil || prop.Type() != nodePropertyIdentifier || r.text(prop) != selectMethodName {
		return false
	}
	if !r.matchPlatform(callee.ChildByFieldName("object")) {
		return false
	}

	arg := firstArgument(n)
	if arg == nil || arg.Type() != nodeObject {
		return false
	}

	var winner *sitter.Node
	winnerRank := unmatchedRank
	winnerIsMethod := false
	branches := 0

	for i := 0; i < int(arg.NamedChildCount()); i++ {
		p := arg.NamedChild(i)
		switch p.Type() {
		case nodeComment:
			continue

		case nodePair:
			key := p.ChildByFieldName("key")
			if key == nil || key.Type() != nodePropertyIdentifier {
				return false // disallowed property shape
			}
			branches++
			if rank := r.rankOf(r.text(key)); rank < winnerRank {
				winnerRank = rank
				winner = p.ChildByFieldName("value")
				winnerIsMethod = false
			}

		case nodeMethodDefinition:
			if isAccessor(p) {
				return false
			}
			key := p.ChildByFieldName("name")
			if key == nil || key.Type() != nodePropertyIdentifier {
				return false
			}
			branches++
			if rank := r.rankOf(r.text(key)); rank < winnerRank {
				winnerRank = rank
				winner = p
				winnerIsMethod = true
			}

		default:
			// Spread, shorthand, patterns: abort this call entirely.
			return false
		}
	}

	if winner == nil || winnerRank == unmatchedRank {
		return false
	}

	text, ok := r.renderBranch(winner, winnerIsMethod)
	if !ok {
		return false
	}
	if needsParens(n, text) {
		text = "(" + text + ")"
	}

	r.replace(n, text)
	r.stats.SelectReplacements++
	r.stats.BranchesDiscarded += branches - 1
	return true
}

// rewriteDevFlag applies Rule C.
func (r *specializeRun) rewriteDevFlag(n *sitter.Node) {
	if r.text(n) != devFlagName {
		return
	}
	if r.spec.decls != nil && r.spec.decls.IsLocallyDeclared(devFlagName, n) {
		return
	}

	r.replace(n, strconv.FormatBool(r.spec.dev))
	r.stats.DevReplacements++
}

// renderBranch produces the replacement text for the winning branch,
// recursively specialized. A method-shorthand branch is rendered as an
// anonymous function expression with its modifiers and parameter list
// preserved.
func (r *specializeRun) renderBranch(winner *sitter.Node, isMethod bool) (string, bool) {
	if !isMethod {
		text, err := r.renderSpecialized(winner)
		if err != nil {
			return "", false
		}
		return text, true
	}

	params := winner.ChildByFieldName("parameters")
	body := winner.ChildByFieldName("body")
	name := winner.ChildByFieldName("name")
	if params == nil || body == nil {
		return "", false
	}

	paramsText, err := r.renderSpecialized(params)
	if err != nil {
		return "", false
	}
	bodyText, err := r.renderSpecialized(body)
	if err != nil {
		return "", false
	}

	var sb strings.Builder
	if hasTokenBefore(winner, name, nodeTokenAsync) {
		sb.WriteString("async ")
	}
	sb.WriteString("function")
	if hasTokenBefore(winner, name, nodeTokenStar) {
		sb.WriteString("*")
	}
	sb.WriteString(paramsText)
	sb.WriteString(" ")
	sb.WriteString(bodyText)
	return sb.String(), true
}

// renderSpecialized renders a subtree's source text with its own
// specializations applied.
func (r *specializeRun) renderSpecialized(n *sitter.Node) (string, error) {
	sub := r.collectSubtree(n)
	return applyEditsInRange(r.source, n.StartByte(), n.EndByte(), sub)
}

// collectSubtree runs the traversal over a detached subtree and
// returns its edits without touching the outer edit list.
func (r *specializeRun) collectSubtree(n *sitter.Node) []Edit {
	saved := r.edits
	r.edits = nil
	r.visit(n)
	sub := r.edits
	r.edits = saved
	return sub
}

// rankOf maps a selector key to its priority rank.
func (r *specializeRun) rankOf(key string) uint64 {
	if key == "default" {
		return defaultRank
	}
	for i, p := range r.spec.platforms {
		if p == key {
			return uint64(i)
		}
	}
	return unmatchedRank
}

// matchPlatform reports whether obj resolves to the platform
// framework's Platform symbol in this file.
func (r *specializeRun) matchPlatform(obj *sitter.Node) bool {
	if obj == nil || r.spec.resolver == nil {
		return false
	}
	path, name, ok := r.spec.resolver.ResolveModuleReference(obj)
	return ok && path == r.spec.module && name == r.spec.symbol
}

func (r *specializeRun) replace(n *sitter.Node, text string) {
	r.edits = append(r.edits, Edit{Start: n.StartByte(), End: n.EndByte(), Text: text})
}

func (r *specializeRun) text(n *sitter.Node) string {
	return string(r.source[n.StartByte():n.EndByte()])
}

// firstArgument returns the first real argument of a call, skipping
// comments.
func firstArgument(call *sitter.Node) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		c := args.NamedChild(i)
		if c.Type() == nodeComment {
			continue
		}
		return c
	}
	return nil
}

// isAccessor reports whether a method definition is a getter or setter.
// The get/set keyword appears as a token child distinct from the method
// name, so a method literally named `get` is not an accessor.
func isAccessor(method *sitter.Node) bool {
	name := method.ChildByFieldName("name")
	return hasTokenBefore(method, name, nodeTokenGet) ||
		hasTokenBefore(method, name, nodeTokenSet)
}

// hasTokenBefore reports whether method has a token child of the given
// type that is not the name node itself.
func hasTokenBefore(method, name *sitter.Node, token string) bool {
	for i := 0; i < int(method.ChildCount()); i++ {
		c := method.Child(i)
		if name != nil && c.StartByte() == name.StartByte() && c.EndByte() == name.EndByte() {
			continue
		}
		if c.Type() == token {
			return true
		}
	}
	return false
}

// needsParens reports whether the replacement text would change parse
// meaning at the call's position without wrapping parentheses: an object
// literal or function expression at statement start, an object literal
// as an arrow body, or a function expression in callee position. The
// call may sit at statement start through a member/call chain, so the
// check climbs ancestors while the call remains the leftmost token.
func needsParens(call *sitter.Node, text string) bool {
	object := strings.HasPrefix(text, "{")
	if !object &&
		!strings.HasPrefix(text, "function") &&
		!strings.HasPrefix(text, "async function") {
		return false
	}

	// A function expression in callee position keeps the IIFE shape
	// explicit when wrapped.
	if parent := call.Parent(); parent != nil && parent.Type() == nodeCallExpression {
		if sameSpan(parent.ChildByFieldName("function"), call) {
			return true
		}
	}

	for child, p := call, call.Parent(); p != nil; child, p = p, p.Parent() {
		if p.Type() == nodeExpressionStatement {
			return true
		}
		// An object literal starting an arrow body would parse as a
		// block statement.
		if object && p.Type() == nodeArrowFunction &&
			sameSpan(p.ChildByFieldName("body"), child) {
			return true
		}
		if p.StartByte() != child.StartByte() {
			return false
		}
		switch p.Type() {
		case nodeMemberExpression, nodeSubscriptExpression, nodeCallExpression:
		default:
			return false
		}
	}
	return false
}

// sameSpan reports whether two nodes cover the same byte range.
func sameSpan(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
