// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/plugin"
	luaplugin "github.com/inkpad/inkpad/internal/plugin/lua"
	"github.com/inkpad/inkpad/internal/plugins"
	"github.com/inkpad/inkpad/internal/plugins/darktheme"
	mathplugin "github.com/inkpad/inkpad/internal/plugins/math"
	"github.com/inkpad/inkpad/internal/plugins/view"
	"github.com/inkpad/inkpad/internal/settings"
)

// eventLog collects every event of the given names.
type eventLog struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (l *eventLog) listen(bus *eventbus.Bus, names ...string) {
	for _, name := range names {
		bus.On(name, func(_ context.Context, ev eventbus.Event) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.events = append(l.events, ev)
		})
	}
}

func (l *eventLog) named(name string) []eventbus.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []eventbus.Event
	for _, ev := range l.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func writeScript(root, dir, manifest, source string) {
	pluginDir := filepath.Join(root, dir)
	Expect(os.MkdirAll(pluginDir, 0o750)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(pluginDir, luaplugin.ManifestFile), []byte(manifest), 0o600)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(pluginDir, "main.lua"), []byte(source), 0o600)).To(Succeed())
}

const headingManifest = `
id: fancy-headings
name: Fancy Headings
version: 1.0.0
default-settings:
  suffix: "!"
lua-plugin:
  entry: main.lua
`

const headingSource = `
function on_activate(ctx)
  ctx.register_renderer{
    id = "heading",
    name = "Fancy heading",
    test = function(node) return node.type == "heading" end,
    render = function(node, children)
      return "<h" .. node.depth .. ">" .. ctx.get_settings().suffix
    end,
  }
  ctx.register_toolbar_item{
    id = "shout",
    position = "left",
    render = function() return "SHOUT" end,
  }
end

function on_deactivate(ctx)
  error("cleanup failed")
end
`

const brokenManifest = `
id: broken
name: Broken
version: 1.0.0
lua-plugin:
  entry: main.lua
`

const brokenSource = `
function on_activate(ctx)
  ctx.register_toolbar_item{
    id = "half",
    position = "right",
    render = function() return "half" end,
  }
  error("activation exploded")
end
`

var _ = Describe("Plugin runtime", func() {
	var (
		ctx     context.Context
		bus     *eventbus.Bus
		manager *plugin.Manager
		events  *eventLog
		dir     string
	)

	install := func(p plugin.Plugin) {
		Expect(manager.Install(ctx, p)).To(Succeed())
	}

	installAll := func() {
		for _, p := range plugins.Builtin() {
			install(p)
		}
		scripts, err := luaplugin.NewLoader(luaplugin.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).
			Discover(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
		for _, s := range scripts {
			install(s)
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = eventbus.New(eventbus.WithLogger(logger))
		manager = plugin.NewManager(bus, plugin.WithLogger(logger))
		events = &eventLog{}
		events.listen(bus,
			eventbus.PluginActivated,
			eventbus.PluginDeactivated,
			eventbus.PluginError,
			eventbus.PluginSettingsUpdated,
		)
		dir = GinkgoT().TempDir()
		writeScript(dir, "fancy-headings", headingManifest, headingSource)
		writeScript(dir, "broken", brokenManifest, brokenSource)
	})

	Describe("installing built-ins and scripts together", func() {
		BeforeEach(installAll)

		It("activates every healthy plugin in install order", func() {
			var ids []string
			for _, info := range manager.Plugins() {
				ids = append(ids, info.Manifest.ID)
			}
			Expect(ids).To(Equal([]string{"base", "dark-theme", "math", "broken", "fancy-headings"}))

			Expect(manager.IsActive("base")).To(BeTrue())
			Expect(manager.IsActive("fancy-headings")).To(BeTrue())
			Expect(manager.IsActive("broken")).To(BeFalse())
		})

		It("rolls back a failed script activation and reports it once", func() {
			Expect(manager.Toolbar().OwnedBy("broken")).To(BeEmpty())

			errs := events.named(eventbus.PluginError)
			Expect(errs).To(HaveLen(1))
			payload := errs[0].Payload.(eventbus.PluginErrorPayload)
			Expect(payload.PluginID).To(Equal("broken"))
			Expect(payload.Err.Error()).To(ContainSubstring("activation exploded"))
		})

		It("keeps same-named renderers from different owners side by side", func() {
			headings, err := manager.Renderers().Match("*:heading")
			Expect(err).NotTo(HaveOccurred())
			Expect(headings).To(HaveLen(2))
			Expect(headings[0].Owner()).To(Equal("base"))
			Expect(headings[1].Owner()).To(Equal("fancy-headings"))

			r, ok := manager.Renderers().Get(capability.Key{Owner: "fancy-headings", ID: "heading"})
			Expect(ok).To(BeTrue())
			Expect(r.Test(capability.Node{"type": "heading", "depth": 2})).To(BeTrue())
			Expect(r.Render(capability.Node{"type": "heading", "depth": 2}, nil)).To(Equal("<h2>!"))
		})

		It("is idempotent when the same plugins are installed again", func() {
			before := manager.Plugins()
			commands := manager.Commands().Len()
			events.reset()

			installAll()

			Expect(manager.Plugins()).To(Equal(before))
			Expect(manager.Commands().Len()).To(Equal(commands))
			Expect(events.named(eventbus.PluginActivated)).To(BeEmpty())
		})

		It("purges a script's capabilities even when its deactivation hook fails", func() {
			events.reset()
			manager.Deactivate(ctx, "fancy-headings")

			Expect(manager.IsActive("fancy-headings")).To(BeFalse())
			Expect(manager.Renderers().OwnedBy("fancy-headings")).To(BeEmpty())
			Expect(manager.Toolbar().OwnedBy("fancy-headings")).To(BeEmpty())
			Expect(events.named(eventbus.PluginError)).To(HaveLen(1))
			Expect(events.named(eventbus.PluginDeactivated)).To(HaveLen(1))
		})

		It("merges settings updates and feeds them to the next render", func() {
			manager.UpdateSettings(ctx, "fancy-headings", settings.Settings{"suffix": "?"})
			manager.UpdateSettings(ctx, "fancy-headings", settings.Settings{"extra": true})

			Expect(manager.Settings("fancy-headings")).To(Equal(settings.Settings{"suffix": "?", "extra": true}))
			Expect(events.named(eventbus.PluginSettingsUpdated)).To(HaveLen(2))

			r, ok := manager.Renderers().Get(capability.Key{Owner: "fancy-headings", ID: "heading"})
			Expect(ok).To(BeTrue())
			Expect(r.Render(capability.Node{"type": "heading", "depth": 1}, nil)).To(Equal("<h1>?"))
		})

		It("toggles the dark theme out and back in", func() {
			manager.Toggle(ctx, darktheme.ID)
			Expect(manager.IsActive(darktheme.ID)).To(BeFalse())
			Expect(manager.Themes().OwnedBy(darktheme.ID)).To(BeEmpty())

			manager.Toggle(ctx, darktheme.ID)
			Expect(manager.IsActive(darktheme.ID)).To(BeTrue())
			Expect(manager.Themes().OwnedBy(darktheme.ID)).To(HaveLen(1))
		})

		It("ignores operations on unknown ids", func() {
			events.reset()
			manager.Activate(ctx, "does-not-exist")
			manager.Deactivate(ctx, "does-not-exist")
			manager.Toggle(ctx, "does-not-exist")
			manager.UpdateSettings(ctx, "does-not-exist", settings.Settings{"x": 1})

			Expect(events.named(eventbus.PluginActivated)).To(BeEmpty())
			Expect(events.named(eventbus.PluginError)).To(BeEmpty())
			Expect(manager.IsActive("does-not-exist")).To(BeFalse())
		})

		It("emits the math snippet through the insert-math toolbar item", func() {
			var inserted []any
			bus.On(eventbus.EditorInsert, func(_ context.Context, ev eventbus.Event) {
				inserted = append(inserted, ev.Payload)
			})
			manager.UpdateSettings(ctx, "math", settings.Settings{"defaultDelimiter": "brackets"})

			items, err := manager.Toolbar().Match("math:*")
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))

			button, ok := items[0].Entry.Render().(view.Element)
			Expect(ok).To(BeTrue())
			button.Click(ctx)
			Expect(inserted).To(Equal([]any{mathplugin.Snippet("brackets")}))
		})

		It("shuts down in reverse activation order", func() {
			events.reset()
			Expect(manager.Shutdown(ctx)).To(Succeed())

			var order []any
			for _, ev := range events.named(eventbus.PluginDeactivated) {
				order = append(order, ev.Payload)
			}
			Expect(order).To(Equal([]any{"fancy-headings", "math", "dark-theme", "base"}))
			Expect(manager.Commands().Len()).To(BeZero())
			Expect(manager.Renderers().Len()).To(BeZero())
			Expect(manager.Themes().Len()).To(BeZero())
			Expect(manager.Toolbar().Len()).To(BeZero())
		})
	})

	Describe("settings defaults", func() {
		It("returns declared defaults before any update", func() {
			install(&plugin.Funcs{Meta: plugin.Manifest{
				ID: "alpha", Name: "Alpha", Version: "1.0.0",
				DefaultSettings: map[string]any{"x": 1},
			}})

			Expect(manager.Settings("alpha")).To(HaveLen(1))
			Expect(manager.Settings("alpha")).To(HaveKeyWithValue("x", BeNumerically("==", 1)))

			manager.UpdateSettings(ctx, "alpha", settings.Settings{"y": 2})
			manager.UpdateSettings(ctx, "alpha", settings.Settings{"x": 9})
			final := manager.Settings("alpha")
			Expect(final).To(HaveLen(2))
			Expect(final).To(HaveKeyWithValue("x", BeNumerically("==", 9)))
			Expect(final).To(HaveKeyWithValue("y", BeNumerically("==", 2)))
		})
	})
})
