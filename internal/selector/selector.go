// Package selector decides which collection is active for the signed-in user
// and keeps that choice in sync across the device cache and the durable
// preference record.
package selector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vitrine-app/vitrine/internal/devicecache"
	"github.com/vitrine-app/vitrine/internal/kinds"
	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/shardqueue"
)

// ErrSuperseded is returned when the identity changed while a resolution or
// refetch was in flight. The stale result was discarded.
var ErrSuperseded = errors.New("selector: result superseded by identity change")

// Repository lists the collections a caller can access.
type Repository interface {
	ListAccessibleCollections(ctx context.Context, callerID string, isAdmin bool) ([]model.AccessibleCollection, error)
}

// PreferenceStore is the durable, cross-device preference record.
// LoadPreference returns nil without error when the user has no record yet.
type PreferenceStore interface {
	LoadPreference(ctx context.Context, userID string) (*model.SelectionPreference, error)
	SaveLastSelected(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error)
	SaveDefault(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error)
}

// State is the resolution state for the current identity.
type State int

const (
	StateUnresolved State = iota
	StateResolving
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RuleExplicit marks a selection made through SetActiveCollection.
const RuleExplicit Rule = "explicit"

// Option configures a Selector.
type Option func(*Selector)

// WithLogger replaces the selector's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Selector) { s.log = l }
}

// WithQueueConfig tunes the executor that runs durable preference writes.
func WithQueueConfig(cfg shardqueue.Config) Option {
	return func(s *Selector) { s.queueCfg = cfg }
}

// Selector owns the active-collection state for one client. It is safe for
// concurrent use; the mutex is never held across I/O.
type Selector struct {
	repo  Repository
	prefs PreferenceStore
	cache devicecache.Cache
	log   zerolog.Logger

	queueCfg shardqueue.Config
	queue    *shardqueue.ShardExecutor

	mu         sync.Mutex
	identity   model.Identity
	gen        uint64
	picks      uint64
	inflight   int // resolves running for the current gen
	state      State
	activeID   string
	rule       Rule
	accessible []model.AccessibleCollection

	// Durable writes are last-write-wins per (field, user): a queued write
	// whose sequence number is no longer the latest is skipped.
	seq     uint64
	latest  map[string]uint64
	pending map[string]struct{}
}

// New creates a Selector. Call Close to stop its background writer.
func New(repo Repository, prefs PreferenceStore, cache devicecache.Cache, opts ...Option) *Selector {
	s := &Selector{
		repo:     repo,
		prefs:    prefs,
		cache:    cache,
		log:      log.Logger.With().Str("component", "selector").Logger(),
		queueCfg: shardqueue.Config{Shards: 2, MaxAttempts: 3},
		latest:   make(map[string]uint64),
		pending:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	cfg := s.queueCfg
	next := cfg.ErrorHandler
	cfg.ErrorHandler = func(err error) {
		s.log.Warn().Err(err).Msg("Durable preference write failed")
		persistFailuresTotal.WithLabelValues(channelDurable).Inc()
		if next != nil {
			next(err)
		}
	}
	s.queue = shardqueue.NewShardExecutor(cfg)
	return s
}

// Close drains pending durable writes and stops the writer.
func (s *Selector) Close() error {
	return s.queue.Close()
}

// OnIdentityChanged switches the selector to id. A different identity
// discards the previous selection and accessible list before resolving again.
func (s *Selector) OnIdentityChanged(ctx context.Context, id model.Identity) error {
	s.mu.Lock()
	if s.identity == id && s.state != StateUnresolved {
		s.mu.Unlock()
		return nil
	}
	if s.identity != id {
		s.log.Debug().Str("from", s.identity.UserID).Str("to", id.UserID).Msg("Identity changed")
		s.identity = id
		s.gen++
		s.state = StateUnresolved
		s.activeID = ""
		s.rule = ""
		s.accessible = nil
		s.inflight = 0
	}
	s.mu.Unlock()
	return s.Resolve(ctx)
}

// Resolve loads the accessible list and the durable preference concurrently,
// then applies the cascade once both are in. It returns ErrSuperseded when the
// identity changed meanwhile, or the repository error, in which case the
// previous list and selection are kept.
func (s *Selector) Resolve(ctx context.Context) error {
	s.mu.Lock()
	ident, gen, picks := s.identity, s.gen, s.picks
	if ident.Anonymous() {
		s.state = StateResolved
		s.activeID = ""
		s.rule = RuleNone
		s.accessible = nil
		s.mu.Unlock()
		resolutionsTotal.WithLabelValues(string(RuleNone)).Inc()
		return nil
	}
	s.state = StateResolving
	s.inflight++
	s.mu.Unlock()

	var (
		list    []model.AccessibleCollection
		pref    *model.SelectionPreference
		prefErr error
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		list, err = s.repo.ListAccessibleCollections(ctx, ident.UserID, ident.IsAdmin)
		return err
	})
	g.Go(func() error {
		pref, prefErr = s.prefs.LoadPreference(ctx, ident.UserID)
		return nil
	})
	listErr := g.Wait()

	var sig Signals
	if listErr == nil {
		sig = s.signals(ctx, ident.UserID, pref, prefErr)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.inflight--
	if listErr != nil {
		// Another resolve still running owns the Resolving state.
		if s.state == StateResolving && s.inflight == 0 {
			s.state = s.settledState()
		}
		s.mu.Unlock()
		s.log.Warn().Err(listErr).Str("userID", ident.UserID).Msg("Resolve kept the previous collections")
		return fmt.Errorf("list accessible collections: %w", listErr)
	}

	id, rule := Cascade(list, sig)
	if s.picks != picks {
		// An explicit pick landed while we were loading; it wins.
		id, rule = s.activeID, RuleExplicit
	}
	s.accessible = list
	s.activeID = id
	s.rule = rule
	s.state = StateResolved
	s.mu.Unlock()

	resolutionsTotal.WithLabelValues(string(rule)).Inc()
	s.log.Debug().Str("userID", ident.UserID).Str("collectionID", id).Str("rule", string(rule)).Msg("Resolved active collection")
	if id != "" && rule != RuleExplicit {
		s.persistSelection(ctx, ident.UserID, id)
	}
	return nil
}

// signals gathers the cascade hints. When the durable preference cannot be
// loaded, the device mirror slots stand in for it.
func (s *Selector) signals(ctx context.Context, userID string, pref *model.SelectionPreference, prefErr error) Signals {
	sig := Signals{SameDevice: s.cacheGet(ctx, devicecache.LastPickedKey(userID))}
	if prefErr != nil {
		s.log.Warn().Err(prefErr).Str("userID", userID).Msg("Loading selection preference failed, using device mirror")
		sig.LastSelected = s.cacheGet(ctx, devicecache.SyncedPickKey(userID))
		sig.Default = s.cacheGet(ctx, devicecache.DefaultKey(userID))
		return sig
	}
	sig.LastSelected = pref.LastSelected()
	sig.Default = pref.Default()
	if sig.LastSelected != "" {
		s.cacheSet(ctx, devicecache.SyncedPickKey(userID), sig.LastSelected, channelMirror)
	}
	if sig.Default != "" {
		s.cacheSet(ctx, devicecache.DefaultKey(userID), sig.Default, channelMirror)
	}
	return sig
}

// settledState is the state a failed resolve falls back to. Callers hold mu.
func (s *Selector) settledState() State {
	if s.rule == "" {
		return StateUnresolved
	}
	return StateResolved
}

// SetActiveCollection makes collectionID active immediately and persists it
// on a best-effort basis. The id is not checked against the accessible list.
func (s *Selector) SetActiveCollection(ctx context.Context, collectionID string) {
	s.mu.Lock()
	ident := s.identity
	s.activeID = collectionID
	s.rule = RuleExplicit
	s.state = StateResolved
	s.picks++
	s.mu.Unlock()

	if ident.Anonymous() || collectionID == "" {
		return
	}
	s.persistSelection(ctx, ident.UserID, collectionID)
}

// SetDefaultCollection records collectionID as the user's default on this
// device and, asynchronously, in the durable record. The active collection
// does not change.
func (s *Selector) SetDefaultCollection(ctx context.Context, collectionID string) {
	s.mu.Lock()
	ident := s.identity
	s.mu.Unlock()
	if ident.Anonymous() || collectionID == "" {
		return
	}
	s.cacheSet(ctx, devicecache.DefaultKey(ident.UserID), collectionID, channelMirror)
	s.enqueue(ctx, ident.UserID, "default", collectionID, s.prefs.SaveDefault)
}

// RefetchAccessibleCollections reloads the accessible list. The active
// selection survives when it is still listed; otherwise the first listed
// collection (or none) takes over. On failure the previous list is kept.
// While a resolve is running only the list is replaced.
func (s *Selector) RefetchAccessibleCollections(ctx context.Context) error {
	s.mu.Lock()
	ident, gen, state := s.identity, s.gen, s.state
	s.mu.Unlock()
	if state == StateUnresolved {
		return s.Resolve(ctx)
	}
	if ident.Anonymous() {
		return nil
	}

	list, err := s.repo.ListAccessibleCollections(ctx, ident.UserID, ident.IsAdmin)
	if err != nil {
		s.log.Warn().Err(err).Str("userID", ident.UserID).Msg("Refetch kept the previous collections")
		return fmt.Errorf("list accessible collections: %w", err)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.accessible = list
	if s.state == StateResolving {
		// The running resolve picks the active collection.
		s.mu.Unlock()
		return nil
	}
	changed := ""
	if indexOf(list, s.activeID) < 0 {
		s.activeID, s.rule = "", RuleNone
		if len(list) > 0 {
			s.activeID, s.rule = list[0].CollectionID, RuleFirst
			changed = s.activeID
		}
	}
	s.state = StateResolved
	s.mu.Unlock()

	if changed != "" {
		s.persistSelection(ctx, ident.UserID, changed)
	}
	return nil
}

// Wait blocks until every durable write queued so far has finished.
func (s *Selector) Wait(ctx context.Context) error {
	s.mu.Lock()
	users := make([]string, 0, len(s.pending))
	for u := range s.pending {
		users = append(users, u)
	}
	s.mu.Unlock()

	for _, u := range users {
		if err := s.queue.Barrier(ctx, u); err != nil && !errors.Is(err, shardqueue.ErrExecutorClosed) {
			return err
		}
	}
	return nil
}

// Identity returns the identity the selector currently serves.
func (s *Selector) Identity() model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// State returns the current resolution state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveID returns the active collection id, "" when none.
func (s *Selector) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Rule reports how the current selection was made.
func (s *Selector) Rule() Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rule
}

// Active returns the accessible record for the active id. ok is false when
// nothing is active or the active id is not in the accessible list.
func (s *Selector) Active() (model.AccessibleCollection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.accessible, s.activeID); i >= 0 {
		return s.accessible[i], true
	}
	return model.AccessibleCollection{}, false
}

// Kind returns the active collection's kind, or the default kind when there
// is no resolvable active collection.
func (s *Selector) Kind() model.Kind {
	if c, ok := s.Active(); ok && c.Kind.Valid() {
		return c.Kind
	}
	return model.DefaultKind
}

// KindConfig returns the presentation bundle for Kind.
func (s *Selector) KindConfig() kinds.Config {
	return kinds.For(s.Kind())
}

// Accessible returns a copy of the current accessible list.
func (s *Selector) Accessible() []model.AccessibleCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AccessibleCollection(nil), s.accessible...)
}
