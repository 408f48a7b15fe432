// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package capability

// Catalog bundles the four capability registries.
type Catalog struct {
	Commands  *Registry[Command]
	Renderers *Registry[Renderer]
	Themes    *Registry[Theme]
	Toolbar   *Registry[ToolbarItem]
}

// NewCatalog creates a catalog with four empty registries.
func NewCatalog() *Catalog {
	return &Catalog{
		Commands:  NewRegistry[Command](KindCommand),
		Renderers: NewRegistry[Renderer](KindRenderer),
		Themes:    NewRegistry[Theme](KindTheme),
		Toolbar:   NewRegistry[ToolbarItem](KindToolbar),
	}
}

// UnregisterAllOwnedBy purges owner's entries from every registry and
// returns the total number removed.
func (c *Catalog) UnregisterAllOwnedBy(owner string) int {
	return c.Commands.UnregisterAllOwnedBy(owner) +
		c.Renderers.UnregisterAllOwnedBy(owner) +
		c.Themes.UnregisterAllOwnedBy(owner) +
		c.Toolbar.UnregisterAllOwnedBy(owner)
}

// CountOwnedBy returns how many entries owner holds across all registries.
func (c *Catalog) CountOwnedBy(owner string) int {
	return len(c.Commands.OwnedBy(owner)) +
		len(c.Renderers.OwnedBy(owner)) +
		len(c.Themes.OwnedBy(owner)) +
		len(c.Toolbar.OwnedBy(owner))
}

// FirstRenderer returns the earliest-registered renderer whose Test accepts
// node. Hosts that want "first registered, first tried" use this.
func FirstRenderer(regs []Registration[Renderer], node Node) (Registration[Renderer], bool) {
	for _, reg := range regs {
		if reg.Entry.Test(node) {
			return reg, true
		}
	}
	return Registration[Renderer]{}, false
}

// SplitToolbar groups toolbar registrations by position, keeping
// registration order within each side.
func SplitToolbar(regs []Registration[ToolbarItem]) (left, right []Registration[ToolbarItem]) {
	for _, reg := range regs {
		switch reg.Entry.Position {
		case PositionLeft:
			left = append(left, reg)
		case PositionRight:
			right = append(right, reg)
		}
	}
	return left, right
}
