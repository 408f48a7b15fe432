// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package capability

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// shortcutLexer splits "Mod+Shift+K" into key names and '+' separators.
var shortcutLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Plus", Pattern: `\+`},
	{Name: "Name", Pattern: `[A-Za-z0-9]+|[^\sA-Za-z0-9+]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// shortcutAST matches: name { "+" name }
type shortcutAST struct {
	Parts []string `parser:"@Name ( Plus @Name )*"`
}

var shortcutParser = participle.MustBuild[shortcutAST](participle.Lexer(shortcutLexer))

// Modifier is a keyboard modifier. Mod is Ctrl on Linux/Windows and Cmd on macOS.
type Modifier string

// Modifiers in canonical order.
const (
	ModMod   Modifier = "Mod"
	ModCtrl  Modifier = "Ctrl"
	ModAlt   Modifier = "Alt"
	ModShift Modifier = "Shift"
	ModMeta  Modifier = "Meta"
)

var modifierOrder = []Modifier{ModMod, ModCtrl, ModAlt, ModShift, ModMeta}

var modifierAliases = map[string]Modifier{
	"mod":     ModMod,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"super":   ModMeta,
}

// Shortcut is a parsed key chord.
type Shortcut struct {
	Modifiers []Modifier
	Key       string
}

// String renders the shortcut in canonical form, e.g. "Mod+Shift+K".
func (s Shortcut) String() string {
	parts := make([]string, 0, len(s.Modifiers)+1)
	for _, m := range s.Modifiers {
		parts = append(parts, string(m))
	}
	return strings.Join(append(parts, s.Key), "+")
}

// ParseShortcut parses a key chord such as "Ctrl+B" or "mod + shift + k".
// Modifiers may appear in any order and are case-insensitive; the final
// part is the key and must not itself be a modifier.
func ParseShortcut(text string) (Shortcut, error) {
	if strings.TrimSpace(text) == "" {
		return Shortcut{}, shortcutError(text, "shortcut is empty")
	}
	ast, err := shortcutParser.ParseString("", text)
	if err != nil {
		return Shortcut{}, oops.Code(CodeInvalidShortcut).
			In("capability").
			With("shortcut", text).
			Wrapf(err, "parsing shortcut")
	}

	last := len(ast.Parts) - 1
	key := ast.Parts[last]
	if _, isMod := modifierAliases[strings.ToLower(key)]; isMod {
		return Shortcut{}, shortcutError(text, "shortcut must end with a non-modifier key")
	}

	seen := make(map[Modifier]bool, last)
	for _, part := range ast.Parts[:last] {
		mod, ok := modifierAliases[strings.ToLower(part)]
		if !ok {
			return Shortcut{}, shortcutError(text, fmt.Sprintf("unknown modifier %q", part))
		}
		if seen[mod] {
			return Shortcut{}, shortcutError(text, fmt.Sprintf("duplicate modifier %q", part))
		}
		seen[mod] = true
	}

	mods := make([]Modifier, 0, len(seen))
	for _, m := range modifierOrder {
		if seen[m] {
			mods = append(mods, m)
		}
	}
	if len(key) == 1 {
		key = strings.ToUpper(key)
	}
	return Shortcut{Modifiers: mods, Key: key}, nil
}

// HasModifier reports whether m is part of the chord.
func (s Shortcut) HasModifier(m Modifier) bool {
	return slices.Contains(s.Modifiers, m)
}

func shortcutError(text, reason string) error {
	return oops.Code(CodeInvalidShortcut).
		In("capability").
		With("shortcut", text).
		Errorf("invalid shortcut %q: %s", text, reason)
}
