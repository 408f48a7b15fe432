// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/logging"
	"github.com/inkpad/inkpad/internal/settings"
)

var tracer = otel.Tracer("inkpad/plugin")

// Manager drives plugin lifecycle transitions and owns the capability
// catalog, the settings store and the plugin registry.
//
// Hook failures never escape a lifecycle call. They are logged and
// announced on the event bus as eventbus.PluginError.
//
// Calls addressing the same plugin id are serialized; calls for different
// ids run independently. A hook must not call a lifecycle method for its
// own plugin id. Lifecycle and settings events are delivered after the
// per-id lock is released, in the order they were raised, so subscribers
// may call back into the Manager for any id.
type Manager struct {
	bus         *eventbus.Bus
	pub         deferredPublisher
	store       *settings.Store
	catalog     *capability.Catalog
	registry    *Registry
	logger      *slog.Logger
	hostVersion *semver.Version
	hookTimeout time.Duration
	locks       sync.Map // plugin id -> *sync.Mutex
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithHostVersion sets the runtime version checked against manifest host
// constraints. Without it, constraints are not enforced.
func WithHostVersion(v *semver.Version) ManagerOption {
	return func(m *Manager) {
		m.hostVersion = v
	}
}

// WithHookTimeout bounds every hook call with a context deadline. Hooks
// that ignore their context are not interrupted. Zero means no deadline.
func WithHookTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.hookTimeout = d
	}
}

// NewManager creates a plugin manager publishing on bus. A nil bus gets a
// private one.
func NewManager(bus *eventbus.Bus, opts ...ManagerOption) *Manager {
	if bus == nil {
		bus = eventbus.New()
	}
	m := &Manager{
		bus:      bus,
		pub:      deferredPublisher{bus: bus},
		store:    settings.NewStore(deferredPublisher{bus: bus}),
		catalog:  capability.NewCatalog(),
		registry: NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Install records p, seeds its settings from the declared defaults and
// activates it. Installing an id that is already installed activates it if
// inactive and otherwise does nothing; the earlier descriptor is kept and
// the new one is not validated.
//
// Install returns an error only when the descriptor itself is rejected
// (invalid manifest, incompatible host, invalid settings schema or
// defaults). Such rejections are also announced as eventbus.PluginError.
// Activation failures are reported on the bus only.
func (m *Manager) Install(ctx context.Context, p Plugin) error {
	manifest := p.Manifest()
	id := manifest.ID
	if _, ok := m.registry.Get(id); ok {
		m.Activate(ctx, id)
		return nil
	}
	if err := m.admit(&manifest); err != nil {
		m.pub.ReportError(ctx, id, err)
		return err
	}

	ctx, unlock := m.lock(ctx, id)
	defer unlock()

	// Another Install for the same id may have won the race for the lock.
	if existing, ok := m.registry.Get(id); ok {
		if !m.registry.IsActive(id) {
			m.activateLocked(ctx, id, existing)
		}
		return nil
	}

	schema, err := manifest.ResolveSchema()
	if err != nil {
		m.pub.ReportError(ctx, id, err)
		return err
	}
	defaults, err := manifest.Defaults()
	if err != nil {
		m.pub.ReportError(ctx, id, err)
		return err
	}
	if err := m.store.Register(id, defaults, schema, m.settingsHook(id, p)); err != nil {
		m.pub.ReportError(ctx, id, err)
		return err
	}

	m.registry.add(id, p)
	m.logger.InfoContext(logging.WithPlugin(ctx, id), "plugin installed",
		"name", manifest.Name,
		"version", manifest.Version)

	m.activateLocked(ctx, id, p)
	return nil
}

// Activate runs the plugin's OnActivate hook and adds it to the active set.
// Unknown and already-active ids are ignored. On hook failure every
// capability the plugin registered is removed and the plugin stays
// inactive.
func (m *Manager) Activate(ctx context.Context, id string) {
	p, ok := m.registry.Get(id)
	if !ok {
		return
	}
	ctx, unlock := m.lock(ctx, id)
	defer unlock()

	if m.registry.IsActive(id) {
		return
	}
	m.activateLocked(ctx, id, p)
}

// Deactivate runs the plugin's OnDeactivate hook, removes it from the active
// set and purges its capabilities. Unknown and inactive ids are ignored. A
// failing hook is reported and cleanup proceeds.
func (m *Manager) Deactivate(ctx context.Context, id string) {
	p, ok := m.registry.Get(id)
	if !ok {
		return
	}
	ctx, unlock := m.lock(ctx, id)
	defer unlock()

	if !m.registry.IsActive(id) {
		return
	}
	m.deactivateLocked(ctx, id, p)
}

// Toggle activates an inactive plugin and deactivates an active one.
// Unknown ids are ignored.
func (m *Manager) Toggle(ctx context.Context, id string) {
	p, ok := m.registry.Get(id)
	if !ok {
		return
	}
	ctx, unlock := m.lock(ctx, id)
	defer unlock()

	if m.registry.IsActive(id) {
		m.deactivateLocked(ctx, id, p)
		return
	}
	m.activateLocked(ctx, id, p)
}

// UpdateSettings shallow-merges partial into the plugin's settings record
// and runs its OnSettingsChange hook. Unknown ids are ignored. See
// settings.Store.Update for commit and event semantics.
func (m *Manager) UpdateSettings(ctx context.Context, id string, partial settings.Settings) {
	if !m.store.Known(id) {
		return
	}
	ctx, unlock := m.lock(ctx, id)
	defer unlock()

	m.store.Update(ctx, id, partial)
}

// Settings returns a copy of the plugin's settings record, or an empty record.
func (m *Manager) Settings(id string) settings.Settings {
	return m.store.Get(id)
}

// SettingsSchema returns the plugin's settings schema, or nil.
func (m *Manager) SettingsSchema(id string) *settings.Schema {
	return m.store.Schema(id)
}

// IsActive reports whether id is active.
func (m *Manager) IsActive(id string) bool {
	return m.registry.IsActive(id)
}

// Plugins lists installed plugins in install order with their active flag.
func (m *Manager) Plugins() []Info {
	return m.registry.List()
}

// Commands returns the read-only command registry.
func (m *Manager) Commands() capability.Reader[capability.Command] {
	return m.catalog.Commands
}

// Renderers returns the read-only renderer registry.
func (m *Manager) Renderers() capability.Reader[capability.Renderer] {
	return m.catalog.Renderers
}

// Themes returns the read-only theme registry.
func (m *Manager) Themes() capability.Reader[capability.Theme] {
	return m.catalog.Themes
}

// Toolbar returns the read-only toolbar item registry.
func (m *Manager) Toolbar() capability.Reader[capability.ToolbarItem] {
	return m.catalog.Toolbar
}

// EventBus returns the shared event bus.
func (m *Manager) EventBus() *eventbus.Bus {
	return m.bus
}

// ExecuteCommand runs the command registered under a qualified id such as
// "math:insert-math". Unlike hook failures, the command's error is
// returned to the caller.
func (m *Manager) ExecuteCommand(ctx context.Context, qualifiedID string) error {
	key, err := capability.ParseKey(qualifiedID)
	if err != nil {
		return err
	}
	cmd, ok := m.catalog.Commands.Get(key)
	if !ok {
		return oops.Code(CodeCommandNotFound).
			In("plugin").
			With("command", qualifiedID).
			Errorf("command %s is not registered", qualifiedID)
	}
	return m.invoke(ctx, key.Owner, "command", cmd.Execute)
}

// Shutdown deactivates every active plugin in reverse activation order.
// It stops early if ctx is done.
func (m *Manager) Shutdown(ctx context.Context) error {
	ids := m.registry.ActiveIDs()
	slices.Reverse(ids)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return oops.In("plugin").With("remaining", len(ids)).Wrapf(err, "shutdown interrupted")
		}
		m.Deactivate(ctx, id)
	}
	return nil
}

func (m *Manager) admit(manifest *Manifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}
	return manifest.CheckHost(m.hostVersion)
}

func (m *Manager) activateLocked(ctx context.Context, id string, p Plugin) {
	pc := m.newContext(id)
	m.registry.setActivating(id, true)
	err := m.invoke(ctx, id, hookActivate, func(ctx context.Context) error {
		return p.OnActivate(ctx, pc)
	})
	m.registry.setActivating(id, false)
	if err != nil {
		removed := m.catalog.UnregisterAllOwnedBy(id)
		PluginTransitions.WithLabelValues(id, transitionActivate, statusFailure).Inc()
		m.pub.ReportError(ctx, id, oops.Code(CodeActivationFailed).
			In("plugin").
			With("plugin", id).
			With("rolled_back", removed).
			Wrapf(err, "activating plugin %s", id))
		return
	}

	m.registry.setActive(id, true)
	PluginTransitions.WithLabelValues(id, transitionActivate, statusSuccess).Inc()
	PluginsActive.Inc()
	m.logger.InfoContext(logging.WithPlugin(ctx, id), "plugin activated",
		"capabilities", m.catalog.CountOwnedBy(id))
	m.pub.Emit(ctx, eventbus.PluginActivated, id)
}

func (m *Manager) deactivateLocked(ctx context.Context, id string, p Plugin) {
	pc := m.newContext(id)
	err := m.invoke(ctx, id, hookDeactivate, func(ctx context.Context) error {
		return p.OnDeactivate(ctx, pc)
	})
	status := statusSuccess
	if err != nil {
		status = statusFailure
		m.pub.ReportError(ctx, id, oops.Code(CodeDeactivationFailed).
			In("plugin").
			With("plugin", id).
			Wrapf(err, "deactivating plugin %s", id))
	}

	m.registry.setActive(id, false)
	removed := m.catalog.UnregisterAllOwnedBy(id)
	PluginTransitions.WithLabelValues(id, transitionDeactivate, status).Inc()
	PluginsActive.Dec()
	m.logger.InfoContext(logging.WithPlugin(ctx, id), "plugin deactivated",
		"removed", removed)
	m.pub.Emit(ctx, eventbus.PluginDeactivated, id)
}

func (m *Manager) settingsHook(id string, p Plugin) settings.ChangeHook {
	return func(ctx context.Context, merged settings.Settings) error {
		pc := m.newContext(id)
		return m.invoke(ctx, id, hookSettingsChange, func(ctx context.Context) error {
			return p.OnSettingsChange(ctx, pc, merged)
		})
	}
}

func (m *Manager) newContext(id string) *Context {
	return &Context{
		pluginID: id,
		catalog:  m.catalog,
		store:    m.store,
		bus:      m.bus,
		registry: m.registry,
	}
}

// invoke runs one plugin hook inside a span, converting panics to errors.
func (m *Manager) invoke(ctx context.Context, id, hook string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "plugin."+hook,
		trace.WithAttributes(
			attribute.String("plugin.id", id),
			attribute.String("plugin.hook", hook),
		))
	defer span.End()

	ctx = logging.WithPlugin(ctx, id)
	if m.hookTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.hookTimeout)
		defer cancel()
	}

	start := time.Now()
	var err error
	if rerr := oops.Code(CodeHookPanic).
		In("plugin").
		With("plugin", id).
		With("hook", hook).
		Recover(func() {
			err = fn(ctx)
		}); rerr != nil {
		err = rerr
	}
	HookDuration.WithLabelValues(id, hook).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// lock takes the per-id lifecycle lock. The returned context collects
// events raised under the lock; unlock releases the lock and then delivers
// them. A context that already carries an outbox keeps it, and the
// outermost unlock delivers.
func (m *Manager) lock(ctx context.Context, id string) (context.Context, func()) {
	v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu, _ := v.(*sync.Mutex)
	mu.Lock()

	if box, ok := outboxFrom(ctx); ok && box.open() {
		return ctx, mu.Unlock
	}
	box := &outbox{}
	return withOutbox(ctx, box), func() {
		mu.Unlock()
		box.flush(ctx, m.bus)
	}
}
