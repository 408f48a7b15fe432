// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package view is the output vocabulary the built-in plugins render into.
// Hosts walk Elements to build their own widgets.
package view

import "context"

// Element is a rendered node: a tag, style classes and children.
type Element struct {
	Tag      string
	Class    string
	Title    string
	Text     string
	Children []any
	// Action runs when the element is activated (clicked), if set.
	Action func(ctx context.Context)
}

// Button returns a clickable element.
func Button(label, title string, action func(ctx context.Context)) Element {
	return Element{
		Tag:    "button",
		Class:  "p-2 hover:bg-gray-100 dark:hover:bg-gray-700 rounded",
		Title:  title,
		Text:   label,
		Action: action,
	}
}

// Click runs the element's action. Elements without one are ignored.
func (e Element) Click(ctx context.Context) {
	if e.Action != nil {
		e.Action(ctx)
	}
}
