package selector

import (
	"context"
	"errors"
	"sync"

	"github.com/vitrine-app/vitrine/internal/model"
)

var errUnavailable = errors.New("backend unavailable")

// fakeRepo serves fixed lists per user. A gate, when set, blocks the fetch
// for that user until it is closed.
type fakeRepo struct {
	mu    sync.Mutex
	lists map[string][]model.AccessibleCollection
	gates map[string]chan struct{}
	err   error
	calls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{lists: map[string][]model.AccessibleCollection{}, gates: map[string]chan struct{}{}}
}

func (f *fakeRepo) set(userID string, cols ...model.AccessibleCollection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[userID] = cols
}

func (f *fakeRepo) gate(userID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[userID] = ch
	return ch
}

func (f *fakeRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRepo) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRepo) ListAccessibleCollections(ctx context.Context, callerID string, _ bool) ([]model.AccessibleCollection, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[callerID]
	delete(f.gates, callerID)
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return []model.AccessibleCollection{}, f.err
	}
	return append([]model.AccessibleCollection(nil), f.lists[callerID]...), nil
}

// fakePrefs is an in-memory durable preference record.
type fakePrefs struct {
	mu       sync.Mutex
	rows     map[string]*model.SelectionPreference
	loadErr  error
	saveErr  error
	saves    []string
	saveHook func()
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{rows: map[string]*model.SelectionPreference{}}
}

func (f *fakePrefs) seed(userID, lastSelected, def string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &model.SelectionPreference{UserID: userID}
	if lastSelected != "" {
		p.LastSelectedCollectionID = &lastSelected
	}
	if def != "" {
		p.DefaultCollectionID = &def
	}
	f.rows[userID] = p
}

func (f *fakePrefs) get(userID string) *model.SelectionPreference {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[userID]; ok {
		cp := *p
		return &cp
	}
	return nil
}

func (f *fakePrefs) savedValues() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saves...)
}

func (f *fakePrefs) LoadPreference(_ context.Context, userID string) (*model.SelectionPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if p, ok := f.rows[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePrefs) SaveLastSelected(_ context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	return f.save(userID, func(p *model.SelectionPreference) { p.LastSelectedCollectionID = &collectionID }, collectionID)
}

func (f *fakePrefs) SaveDefault(_ context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	return f.save(userID, func(p *model.SelectionPreference) { p.DefaultCollectionID = &collectionID }, "default="+collectionID)
}

func (f *fakePrefs) save(userID string, apply func(*model.SelectionPreference), label string) (*model.SelectionPreference, error) {
	f.mu.Lock()
	hook := f.saveHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	p, ok := f.rows[userID]
	if !ok {
		p = &model.SelectionPreference{UserID: userID}
		f.rows[userID] = p
	}
	apply(p)
	f.saves = append(f.saves, label)
	cp := *p
	return &cp, nil
}

// brokenCache fails every call.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, bool, error) { return "", false, errUnavailable }
func (brokenCache) Set(context.Context, string, string) error           { return errUnavailable }
func (brokenCache) Clear(context.Context, string) error                 { return errUnavailable }

func coll(id, name string, kind model.Kind, role model.Role) model.AccessibleCollection {
	return model.AccessibleCollection{
		Collection: model.Collection{CollectionID: id, Name: name, Kind: kind, CreatedBy: "someone"},
		Role:       role,
	}
}
