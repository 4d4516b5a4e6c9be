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
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// parseJS parses source and registers tree cleanup with the test.
func parseJS(t *testing.T, source []byte) *sitter.Node {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	t.Cleanup(tree.Close)
	return tree.RootNode()
}

// staticResolver resolves the bare identifier `Platform` to the
// react-native Platform symbol, ignoring scope.
type staticResolver struct {
	source []byte
}

func (r staticResolver) ResolveModuleReference(n *sitter.Node) (string, string, bool) {
	if n.Type() == "identifier" && string(r.source[n.StartByte():n.EndByte()]) == "Platform" {
		return "react-native", "Platform", true
	}
	return "", "", false
}

// noDecls answers that nothing is locally declared.
type noDecls struct{}

func (noDecls) IsLocallyDeclared(string, *sitter.Node) bool { return false }

// allDecls answers that everything is locally declared.
type allDecls struct{}

func (allDecls) IsLocallyDeclared(string, *sitter.Node) bool { return true }

// specialize runs a full pass over source with the static fakes and
// returns the rewritten text.
func specialize(t *testing.T, source string, cfg SpecializerConfig) (string, Stats) {
	t.Helper()
	src := []byte(source)
	root := parseJS(t, src)

	if cfg.Resolver == nil {
		cfg.Resolver = staticResolver{source: src}
	}
	if cfg.Declarations == nil {
		cfg.Declarations = noDecls{}
	}

	spec := NewPlatformSpecializer(cfg)
	edits, stats := spec.Specialize(root, src)
	out, err := ApplyEdits(src, edits)
	if err != nil {
		t.Fatalf("ApplyEdits() error = %v", err)
	}
	return string(out), stats
}

func androidCfg() SpecializerConfig {
	return SpecializerConfig{TargetPlatforms: []string{"android", "native"}}
}

// ---------------------------------------------------------------------------
// Platform.OS
// ---------------------------------------------------------------------------

func TestSpecialize_OS(t *testing.T) {
	out, stats := specialize(t, `const os = Platform.OS;`, androidCfg())

	want := `const os = "android";`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	if stats.OSReplacements != 1 {
		t.Errorf("OSReplacements = %d, want 1", stats.OSReplacements)
	}
}

func TestSpecialize_OSInCondition(t *testing.T) {
	out, _ := specialize(t, `if (Platform.OS === "ios") { f(); }`, androidCfg())

	want := `if ("android" === "ios") { f(); }`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_OSComputedAccessUntouched(t *testing.T) {
	// Computed access is not the non-computed read the rule matches.
	source := `const os = Platform["OS"];`
	out, stats := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
	if stats.Total() != 0 {
		t.Errorf("Total() = %d, want 0", stats.Total())
	}
}

func TestSpecialize_OSUnresolvedObjectUntouched(t *testing.T) {
	source := `const os = Other.OS;`
	out, stats := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
	if stats.Total() != 0 {
		t.Errorf("Total() = %d, want 0", stats.Total())
	}
}

func TestSpecialize_NoPlatformsDisablesOSRule(t *testing.T) {
	source := `const os = Platform.OS;`
	out, _ := specialize(t, source, SpecializerConfig{TargetPlatforms: nil})

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

// ---------------------------------------------------------------------------
// __DEV__
// ---------------------------------------------------------------------------

func TestSpecialize_DevFlag(t *testing.T) {
	tests := []struct {
		name string
		dev  bool
		want string
	}{
		{"development", true, `if (true) { log(); }`},
		{"production", false, `if (false) { log(); }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := androidCfg()
			cfg.DevelopmentMode = tt.dev
			out, stats := specialize(t, `if (__DEV__) { log(); }`, cfg)
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
			if stats.DevReplacements != 1 {
				t.Errorf("DevReplacements = %d, want 1", stats.DevReplacements)
			}
		})
	}
}

func TestSpecialize_DevFlagLocallyDeclared(t *testing.T) {
	source := `let __DEV__ = compute(); if (__DEV__) { log(); }`
	cfg := androidCfg()
	cfg.Declarations = allDecls{}

	out, stats := specialize(t, source, cfg)
	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
	if stats.DevReplacements != 0 {
		t.Errorf("DevReplacements = %d, want 0", stats.DevReplacements)
	}
}

func TestSpecialize_DevFlagRewritesWithoutPlatformList(t *testing.T) {
	// The dev rule does not depend on the platform configuration.
	out, _ := specialize(t, `const d = __DEV__;`, SpecializerConfig{DevelopmentMode: true})

	want := `const d = true;`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_DevFlagAsPropertyUntouched(t *testing.T) {
	// The property side of a member access is a name, not a reference.
	source := `const d = config.__DEV__;`
	out, stats := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
	if stats.DevReplacements != 0 {
		t.Errorf("DevReplacements = %d, want 0", stats.DevReplacements)
	}
}

func TestSpecialize_DevFlagInComputedAccess(t *testing.T) {
	// A computed index is a real expression and must be rewritten.
	out, _ := specialize(t, `const d = config[__DEV__];`, androidCfg())

	want := `const d = config[false];`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_DevFlagInExportSpecifierUntouched(t *testing.T) {
	// Names in export clauses are bindings, not expression references.
	tests := []struct {
		name   string
		source string
	}{
		{"re-export", `export { __DEV__ } from "./m";`},
		{"re-export alias", `export { a as __DEV__ } from "./m";`},
		{"local export", `export { __DEV__ };`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := androidCfg()
			cfg.DevelopmentMode = true
			out, stats := specialize(t, tt.source, cfg)
			if out != tt.source {
				t.Errorf("got %q, want unchanged", out)
			}
			if stats.DevReplacements != 0 {
				t.Errorf("DevReplacements = %d, want 0", stats.DevReplacements)
			}
		})
	}
}

func TestSpecialize_DevFlagInImportClauseUntouched(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"named", `import { __DEV__ } from "./m";`},
		{"default", `import __DEV__ from "./m";`},
		{"namespace", `import * as __DEV__ from "./m";`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := androidCfg()
			cfg.DevelopmentMode = true
			out, stats := specialize(t, tt.source, cfg)
			if out != tt.source {
				t.Errorf("got %q, want unchanged", out)
			}
			if stats.DevReplacements != 0 {
				t.Errorf("DevReplacements = %d, want 0", stats.DevReplacements)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Platform.select
// ---------------------------------------------------------------------------

func TestSpecialize_SelectBasic(t *testing.T) {
	out, stats := specialize(t, `const v = Platform.select({android: 1, ios: 2});`, androidCfg())

	want := `const v = 1;`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	if stats.SelectReplacements != 1 {
		t.Errorf("SelectReplacements = %d, want 1", stats.SelectReplacements)
	}
	if stats.BranchesDiscarded != 1 {
		t.Errorf("BranchesDiscarded = %d, want 1", stats.BranchesDiscarded)
	}
}

func TestSpecialize_SelectDefault(t *testing.T) {
	out, _ := specialize(t, `const v = Platform.select({ios: 2, default: 3});`, androidCfg())

	want := `const v = 3;`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectPriorityOverDefault(t *testing.T) {
	// native (index 1) beats default; android would beat both.
	out, _ := specialize(t, `const v = Platform.select({ios: 2, native: 3.5, default: 3});`, androidCfg())

	want := `const v = 3.5;`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectFirstOfEqualRankWins(t *testing.T) {
	out, _ := specialize(t, `const v = Platform.select({default: 1, default: 2});`, androidCfg())

	want := `const v = 1;`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectAllUnmatchedUntouched(t *testing.T) {
	source := `const v = Platform.select({ios: 2, web: 3});`
	out, stats := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
	if stats.SelectReplacements != 0 {
		t.Errorf("SelectReplacements = %d, want 0", stats.SelectReplacements)
	}
}

func TestSpecialize_SelectSpreadAborts(t *testing.T) {
	source := `const v = Platform.select({...overrides, android: 1});`
	out, _ := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

func TestSpecialize_SelectShorthandAborts(t *testing.T) {
	source := `const v = Platform.select({android, ios: 2});`
	out, _ := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

func TestSpecialize_SelectComputedKeyAborts(t *testing.T) {
	source := `const v = Platform.select({[key]: 1, android: 2});`
	out, _ := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

func TestSpecialize_SelectStringKeyAborts(t *testing.T) {
	source := `const v = Platform.select({"android": 1, ios: 2});`
	out, _ := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

func TestSpecialize_SelectNonObjectArgumentUntouched(t *testing.T) {
	source := `const v = Platform.select(branches);`
	out, _ := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

func TestSpecialize_SelectNoArgumentsUntouched(t *testing.T) {
	source := `const v = Platform.select();`
	out, _ := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

func TestSpecialize_SelectAbortStillRecursesIntoChildren(t *testing.T) {
	// The aborted call is left in place, but nested rewritable
	// constructs inside it are still specialized.
	cfg := androidCfg()
	cfg.DevelopmentMode = true
	out, stats := specialize(t, `const v = Platform.select({...rest, android: __DEV__});`, cfg)

	want := `const v = Platform.select({...rest, android: true});`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	if stats.DevReplacements != 1 {
		t.Errorf("DevReplacements = %d, want 1", stats.DevReplacements)
	}
}

func TestSpecialize_SelectWinnerRecursivelySpecialized(t *testing.T) {
	source := `const v = Platform.select({android: Platform.select({native: Platform.OS}), ios: 2});`
	out, stats := specialize(t, source, androidCfg())

	want := `const v = "android";`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	if stats.SelectReplacements != 2 {
		t.Errorf("SelectReplacements = %d, want 2", stats.SelectReplacements)
	}
	if stats.OSReplacements != 1 {
		t.Errorf("OSReplacements = %d, want 1", stats.OSReplacements)
	}
}

func TestSpecialize_SelectLosingBranchSideEffectsDiscarded(t *testing.T) {
	out, _ := specialize(t, `const v = Platform.select({android: 1, ios: sideEffect()});`, androidCfg())

	want := `const v = 1;`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

// ---------------------------------------------------------------------------
// Platform.select: method shorthand
// ---------------------------------------------------------------------------

func TestSpecialize_SelectMethod(t *testing.T) {
	out, _ := specialize(t, `const f = Platform.select({android(a, b) {return 1;}, ios() {return 2;}});`, androidCfg())

	want := `const f = function(a, b) {return 1;};`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectAsyncGeneratorMethod(t *testing.T) {
	out, _ := specialize(t, `const f = Platform.select({async *android(a, b) {return 2;}, ios() {}});`, androidCfg())

	want := `const f = async function*(a, b) {return 2;};`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectMethodBodySpecialized(t *testing.T) {
	source := `const f = Platform.select({android() {return Platform.OS;}, ios() {return 2;}});`
	out, _ := specialize(t, source, androidCfg())

	want := `const f = function() {return "android";};`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectAccessorAborts(t *testing.T) {
	source := `const v = Platform.select({get android() {return 1;}});`
	out, _ := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

func TestSpecialize_SelectSetterAborts(t *testing.T) {
	source := `const v = Platform.select({set android(x) {}});`
	out, _ := specialize(t, source, androidCfg())

	if out != source {
		t.Errorf("got %q, want unchanged", out)
	}
}

// ---------------------------------------------------------------------------
// Parenthesization of replacements
// ---------------------------------------------------------------------------

func TestSpecialize_SelectObjectAtStatementStartParenthesized(t *testing.T) {
	out, _ := specialize(t, `Platform.select({android: {a: 1}, ios: {a: 2}});`, androidCfg())

	want := `({a: 1});`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectFunctionInCalleePositionParenthesized(t *testing.T) {
	out, _ := specialize(t, `const v = Platform.select({android() {return 1;}, ios() {return 2;}})();`, androidCfg())

	want := `const v = (function() {return 1;})();`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectObjectInExpressionPositionNotParenthesized(t *testing.T) {
	out, _ := specialize(t, `const v = Platform.select({android: {a: 1}, ios: 2});`, androidCfg())

	want := `const v = {a: 1};`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectObjectAsArrowBodyParenthesized(t *testing.T) {
	// An unwrapped object literal here would parse as a block body.
	out, _ := specialize(t, `const f = () => Platform.select({android: {a: 1}, ios: 2});`, androidCfg())

	want := `const f = () => ({a: 1});`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectFunctionAsArrowBodyNotParenthesized(t *testing.T) {
	// A function expression is unambiguous as an arrow body.
	out, _ := specialize(t, `const f = () => Platform.select({android() {return 1;}, ios: 2});`, androidCfg())

	want := `const f = () => function() {return 1;};`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSpecialize_SelectChainAtStatementStartParenthesized(t *testing.T) {
	// The call can open a statement through a member or call chain; the
	// replacement still needs wrapping there.
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"method chain",
			`Platform.select({android() {return 1;}, ios() {return 2;}}).call();`,
			`(function() {return 1;}).call();`,
		},
		{
			"member access",
			`Platform.select({android: {a: 1}, ios: 2}).a;`,
			`({a: 1}).a;`,
		},
		{
			"subscript",
			`Platform.select({android: {a: 1}, ios: 2})["a"];`,
			`({a: 1})["a"];`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := specialize(t, tt.source, androidCfg())
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestSpecialize_SelectObjectChainInArrowBodyParenthesized(t *testing.T) {
	out, _ := specialize(t, `const f = () => Platform.select({android: {a: 1}, ios: 2}).a;`, androidCfg())

	want := `const f = () => ({a: 1}).a;`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

// ---------------------------------------------------------------------------
// Pass behavior
// ---------------------------------------------------------------------------

func TestSpecialize_NilRoot(t *testing.T) {
	spec := NewPlatformSpecializer(androidCfg())
	edits, stats := spec.Specialize(nil, nil)

	if len(edits) != 0 {
		t.Errorf("edits = %v, want none", edits)
	}
	if stats.Total() != 0 {
		t.Errorf("Total() = %d, want 0", stats.Total())
	}
}

func TestSpecialize_Idempotent(t *testing.T) {
	source := `const v = Platform.select({android: 1, ios: 2}); const os = Platform.OS; if (__DEV__) {}`
	cfg := androidCfg()

	first, stats1 := specialize(t, source, cfg)
	if stats1.Total() == 0 {
		t.Fatal("first run made no replacements")
	}

	second, stats2 := specialize(t, first, cfg)
	if second != first {
		t.Errorf("second run changed output: %q -> %q", first, second)
	}
	if stats2.Total() != 0 {
		t.Errorf("second run Total() = %d, want 0", stats2.Total())
	}
}

func TestStats_Total(t *testing.T) {
	s := Stats{OSReplacements: 1, SelectReplacements: 2, DevReplacements: 3, BranchesDiscarded: 9}
	if s.Total() != 6 {
		t.Errorf("Total() = %d, want 6", s.Total())
	}
}
