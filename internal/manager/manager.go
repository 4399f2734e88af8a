// Package manager orchestrates the framework configuration: default
// construction, best-effort remote load and save, exchange mutation, and
// mode-sensitive validation. The manager is fail-soft around the remote
// store and never lets a persistence failure take the process down; only
// Validate surfaces errors, and its caller decides whether to escalate.
package manager

import (
	"context"
	"errors"
	"sort"
	"sync"

	"adaptive-trading-framework/internal/events"
	"adaptive-trading-framework/internal/settings"
	"adaptive-trading-framework/internal/store"

	"github.com/rs/zerolog"
)

// Manager is the aggregate root for framework configuration. All
// operations share one mutex: the settings records carry no per-field
// concurrency contract, so the whole manager is a single critical section.
type Manager struct {
	mu        sync.Mutex
	mode      settings.Mode
	exchanges map[string]settings.ExchangeSettings
	risk      settings.RiskSettings
	learning  settings.LearningSettings
	store     store.Store // nil when the remote store is unavailable
	bus       *events.Bus
	logger    zerolog.Logger
}

// New builds a manager with default settings and an optional store handle.
// st may be nil for local-defaults-only operation.
func New(mode settings.Mode, st store.Store, bus *events.Bus, logger zerolog.Logger) *Manager {
	return &Manager{
		mode:      mode,
		exchanges: make(map[string]settings.ExchangeSettings),
		risk:      settings.DefaultRiskSettings(),
		learning:  settings.DefaultLearningSettings(),
		store:     st,
		bus:       bus,
		logger:    logger.With().Str("component", "config-manager").Logger(),
	}
}

// Initialize builds a manager for the given mode, attempts to connect the
// remote store and overlays the remote document when one exists. Both the
// connect and the load are best effort: any failure is logged and the
// manager comes up on local defaults. Initialize never fails.
func Initialize(ctx context.Context, mode settings.Mode, storeCfg store.Config, bus *events.Bus, logger zerolog.Logger) *Manager {
	st := store.TryConnect(ctx, storeCfg, logger)
	m := New(mode, st, bus, logger)
	m.loadFromRemote(ctx)
	m.logger.Info().Str("mode", mode.String()).Bool("remote", st != nil).
		Msg("Configuration manager initialized")
	return m
}

// loadFromRemote pulls the named configuration document and overlays it.
// Failures degrade to defaults with a warning.
func (m *Manager) loadFromRemote(ctx context.Context) {
	if m.store == nil {
		return
	}

	doc, err := m.store.Load(ctx, store.ConfigCollection, store.ConfigDocumentID)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Remote configuration load failed, using local defaults")
		return
	}
	if doc == nil {
		m.logger.Info().Msg("No remote configuration document, using local defaults")
		return
	}

	if err := m.OverlayFromRemote(doc); err != nil {
		m.logger.Warn().Err(err).Msg("Remote configuration document rejected, using local defaults")
		return
	}

	m.publish(events.EventConfigLoaded, map[string]interface{}{
		"exchanges": len(m.Exchanges()),
	})
	m.logger.Info().Msg("Configuration loaded from remote store")
}

// OverlayFromRemote applies the sub-mappings keyed "risk", "rl" and
// "exchanges" onto the corresponding records. Risk and learning records
// are rebuilt from defaults with the supplied fields; exchange records
// overlay the existing entry (or defaults for a new venue) with the name
// fixed to the map key. The overlay is staged, so a rejected field leaves
// the manager unchanged. Unrecognized top-level keys (mode, updated_at,
// anything added by other writers) are ignored.
func (m *Manager) OverlayFromRemote(doc store.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	risk := m.risk
	learning := m.learning
	exchanges := m.copyExchangesLocked()

	if raw, ok := doc["risk"]; ok {
		fields, ok := raw.(map[string]interface{})
		if !ok {
			return settings.NewInvalidConfigError("risk", "expected object")
		}
		risk = settings.DefaultRiskSettings()
		if err := risk.Apply(fields); err != nil {
			return err
		}
	}

	if raw, ok := doc["rl"]; ok {
		fields, ok := raw.(map[string]interface{})
		if !ok {
			return settings.NewInvalidConfigError("rl", "expected object")
		}
		learning = settings.DefaultLearningSettings()
		if err := learning.Apply(fields); err != nil {
			return err
		}
	}

	if raw, ok := doc["exchanges"]; ok {
		byName, ok := raw.(map[string]interface{})
		if !ok {
			return settings.NewInvalidConfigError("exchanges", "expected object")
		}
		for name, rawFields := range byName {
			fields, ok := rawFields.(map[string]interface{})
			if !ok {
				return settings.NewInvalidConfigError("exchanges."+name, "expected object")
			}
			ex, exists := exchanges[name]
			if !exists {
				ex = settings.DefaultExchangeSettings(name)
			}
			if err := ex.Apply(fields); err != nil {
				return err
			}
			ex.Name = name
			exchanges[name] = ex
		}
	}

	m.risk = risk
	m.learning = learning
	m.exchanges = exchanges
	return nil
}

// AddExchange inserts or replaces the named exchange. The record is built
// from defaults plus the optional extra fields; last write wins. No
// validation happens at insert time, that is deferred to Validate.
func (m *Manager) AddExchange(name, apiKey, apiSecret string, extra map[string]interface{}) error {
	ex := settings.DefaultExchangeSettings(name)
	if err := ex.Apply(extra); err != nil {
		return err
	}
	ex.Name = name
	ex.APIKey = apiKey
	ex.APISecret = apiSecret

	m.mu.Lock()
	m.exchanges[name] = ex
	m.mu.Unlock()

	m.publish(events.EventExchangeAdded, map[string]interface{}{
		"exchange": name,
		"sandbox":  ex.Sandbox,
	})
	m.logger.Info().Str("exchange", name).Bool("sandbox", ex.Sandbox).Msg("Exchange added")
	return nil
}

// SetExchangeCredentials back-fills the API key and secret of an existing
// exchange, used when credentials live in an external secrets store.
func (m *Manager) SetExchangeCredentials(name, apiKey, apiSecret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, ok := m.exchanges[name]
	if !ok {
		return settings.NewInvalidConfigError("exchanges."+name, "exchange not configured")
	}
	ex.APIKey = apiKey
	ex.APISecret = apiSecret
	m.exchanges[name] = ex
	return nil
}

// SaveToRemote serializes the mode and all settings groups into one
// document and writes it with merge semantics. It returns false, never an
// error, when no store handle exists or the write fails; the cause is
// logged and the manager stays fully usable.
func (m *Manager) SaveToRemote(ctx context.Context) bool {
	m.mu.Lock()
	exchangeDocs := make(map[string]interface{}, len(m.exchanges))
	for name, ex := range m.exchanges {
		exchangeDocs[name] = ex.Document()
	}
	doc := store.Document{
		"mode":      m.mode.String(),
		"risk":      m.risk.Document(),
		"rl":        m.learning.Document(),
		"exchanges": exchangeDocs,
	}
	st := m.store
	m.mu.Unlock()

	if st == nil {
		m.logger.Warn().Msg("Remote save skipped: no store handle")
		return false
	}

	if err := st.Save(ctx, store.ConfigCollection, store.ConfigDocumentID, doc); err != nil {
		var storeErr *store.StoreError
		evt := m.logger.Error().Err(err)
		if errors.As(err, &storeErr) {
			evt = evt.Str("kind", storeErr.Kind.String())
		}
		evt.Msg("Remote save failed")
		m.publish(events.EventConfigSaveFailed, map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	m.publish(events.EventConfigSaved, map[string]interface{}{
		"exchanges": len(exchangeDocs),
	})
	m.logger.Info().Int("exchanges", len(exchangeDocs)).Msg("Configuration saved to remote store")
	return true
}

// Validate runs the mode-sensitive configuration checks and returns the
// first violation as a ConfigError. Live mode requires at least one
// exchange and full credentials on every exchange; every mode requires a
// positive max position size. Further risk-bound checks (daily loss,
// drawdown, Sharpe floor) are a deliberate extension point.
func (m *Manager) Validate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	switch m.mode {
	case settings.ModeLive:
		err = m.validateLiveLocked()
	case settings.ModeBacktest, settings.ModePaper:
		// Simulated modes trade against no venue, so credentials are not
		// required.
	default:
		err = settings.NewInvalidConfigError("mode", "unknown operating mode "+m.mode.String())
	}

	if err == nil && m.risk.MaxPositionSize <= 0 {
		err = settings.NewInvalidConfigError("risk.max_position_size", "must be greater than zero")
	}

	if err != nil {
		m.publish(events.EventValidationFailed, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return err
}

func (m *Manager) validateLiveLocked() error {
	if len(m.exchanges) == 0 {
		return settings.NewInvalidConfigError("exchanges", "live mode requires at least one exchange")
	}

	names := make([]string, 0, len(m.exchanges))
	for name := range m.exchanges {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !m.exchanges[name].HasCredentials() {
			return settings.NewInvalidConfigError("exchanges."+name,
				"live mode requires both api_key and api_secret")
		}
	}
	return nil
}

// Mode returns the operating mode chosen at construction.
func (m *Manager) Mode() settings.Mode {
	return m.mode
}

// Risk returns a copy of the current risk settings.
func (m *Manager) Risk() settings.RiskSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.risk
}

// Learning returns a copy of the current learning settings.
func (m *Manager) Learning() settings.LearningSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.learning
}

// Exchange returns the named exchange settings.
func (m *Manager) Exchange(name string) (settings.ExchangeSettings, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.exchanges[name]
	return ex, ok
}

// Exchanges returns a copy of the exchange mapping.
func (m *Manager) Exchanges() map[string]settings.ExchangeSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyExchangesLocked()
}

func (m *Manager) copyExchangesLocked() map[string]settings.ExchangeSettings {
	out := make(map[string]settings.ExchangeSettings, len(m.exchanges))
	for name, ex := range m.exchanges {
		out[name] = ex
	}
	return out
}

// RemoteAvailable reports whether a remote store handle exists.
func (m *Manager) RemoteAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store != nil
}

// Close releases the remote store handle. The manager remains usable in
// local-defaults-only mode afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store != nil {
		m.store.Close()
		m.store = nil
	}
}

func (m *Manager) publish(eventType events.EventType, data map[string]interface{}) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.Event{Type: eventType, Data: data})
}
