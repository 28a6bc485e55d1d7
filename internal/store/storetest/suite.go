package storetest

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	owner := "u-" + uuid.New().String()[:8]
	guest := "g-" + uuid.New().String()[:8]
	name := "Owner Person"

	// Users
	if _, err := s.Users().Create(ctx, &model.User{UserID: owner, Email: owner + "@example.test", DisplayName: &name}); err != nil {
		t.Fatalf("CreateUser owner: %v", err)
	}
	if _, err := s.Users().Create(ctx, &model.User{UserID: guest, Email: guest + "@example.test", IsAdmin: true}); err != nil {
		t.Fatalf("CreateUser guest: %v", err)
	}
	if _, err := s.Users().Create(ctx, &model.User{UserID: owner, Email: "other-" + owner + "@example.test"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("CreateUser duplicate: want ErrConflict, got %v", err)
	}
	got, err := s.Users().Get(ctx, owner)
	if err != nil || got.DisplayName == nil || *got.DisplayName != name || got.IsAdmin {
		t.Fatalf("GetUser: got=%+v err=%v", got, err)
	}
	if g, err := s.Users().Get(ctx, guest); err != nil || !g.IsAdmin {
		t.Fatalf("GetUser admin flag: got=%+v err=%v", g, err)
	}
	if _, err := s.Users().Get(ctx, "missing-user"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}
	many, err := s.Users().GetMany(ctx, []string{owner, "missing-user", guest})
	if err != nil || len(many) != 2 {
		t.Fatalf("GetManyUsers: n=%d err=%v", len(many), err)
	}

	// Collections create an owner grant for the creator.
	watches, err := s.Collections().Create(ctx, &model.Collection{Name: "Daily Rotation", Kind: model.KindWatches, CreatedBy: owner})
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if watches.CollectionID == "" || watches.CreationTime.IsZero() {
		t.Fatalf("CreateCollection: incomplete result %+v", watches)
	}
	sneakers, err := s.Collections().Create(ctx, &model.Collection{Name: "Grails", Kind: model.KindSneakers, CreatedBy: owner})
	if err != nil {
		t.Fatalf("CreateCollection sneakers: %v", err)
	}
	if _, err := s.Collections().Create(ctx, &model.Collection{Name: "Orphan", Kind: model.KindPurses, CreatedBy: "missing-user"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("CreateCollection unknown creator: want ErrNotFound, got %v", err)
	}
	c, err := s.Collections().GetByID(ctx, watches.CollectionID)
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if diff := cmp.Diff([]string{watches.Name, string(watches.Kind), owner}, []string{c.Name, string(c.Kind), c.CreatedBy}); diff != "" {
		t.Fatalf("GetCollection mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.Collections().GetByID(ctx, "missing-collection"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetCollection missing: want ErrNotFound, got %v", err)
	}
	cols, err := s.Collections().GetMany(ctx, []string{watches.CollectionID, sneakers.CollectionID, "missing-collection"})
	if err != nil || len(cols) != 2 {
		t.Fatalf("GetManyCollections: n=%d err=%v", len(cols), err)
	}

	// Grants
	g, err := s.Grants().Get(ctx, owner, watches.CollectionID)
	if err != nil || g.Role != model.RoleOwner {
		t.Fatalf("owner grant: got=%+v err=%v", g, err)
	}
	if _, err := s.Grants().Upsert(ctx, &model.AccessGrant{UserID: guest, CollectionID: watches.CollectionID, Role: model.RoleViewer}); err != nil {
		t.Fatalf("UpsertGrant: %v", err)
	}
	if g, err := s.Grants().Upsert(ctx, &model.AccessGrant{UserID: guest, CollectionID: watches.CollectionID, Role: model.RoleEditor}); err != nil || g.Role != model.RoleEditor {
		t.Fatalf("UpsertGrant replace: got=%+v err=%v", g, err)
	}
	guestGrants, err := s.Grants().ListByUser(ctx, guest)
	if err != nil || len(guestGrants) != 1 || guestGrants[0].Role != model.RoleEditor {
		t.Fatalf("ListByUser guest: got=%v err=%v", guestGrants, err)
	}
	ownerGrants, err := s.Grants().ListByUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListByUser owner: %v", err)
	}
	ids := []string{}
	for _, og := range ownerGrants {
		ids = append(ids, og.CollectionID)
	}
	sort.Strings(ids)
	want := []string{watches.CollectionID, sneakers.CollectionID}
	sort.Strings(want)
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("ListByUser owner (-want +got):\n%s", diff)
	}
	if err := s.Grants().Delete(ctx, guest, watches.CollectionID); err != nil {
		t.Fatalf("DeleteGrant: %v", err)
	}
	if err := s.Grants().Delete(ctx, guest, watches.CollectionID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteGrant twice: want ErrNotFound, got %v", err)
	}
	if lst, err := s.Grants().ListByUser(ctx, guest); err != nil || len(lst) != 0 {
		t.Fatalf("ListByUser after delete: n=%d err=%v", len(lst), err)
	}

	// Preferences: one row per user, each upsert touches one column.
	if _, err := s.Preferences().Get(ctx, owner); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetPreference before upsert: want ErrNotFound, got %v", err)
	}
	p, err := s.Preferences().UpsertLastSelected(ctx, owner, watches.CollectionID)
	if err != nil || p.LastSelected() != watches.CollectionID || p.Default() != "" {
		t.Fatalf("UpsertLastSelected insert: got=%+v err=%v", p, err)
	}
	p, err = s.Preferences().UpsertDefault(ctx, owner, sneakers.CollectionID)
	if err != nil || p.LastSelected() != watches.CollectionID || p.Default() != sneakers.CollectionID {
		t.Fatalf("UpsertDefault update: got=%+v err=%v", p, err)
	}
	p, err = s.Preferences().UpsertLastSelected(ctx, owner, sneakers.CollectionID)
	if err != nil || p.LastSelected() != sneakers.CollectionID || p.Default() != sneakers.CollectionID {
		t.Fatalf("UpsertLastSelected update: got=%+v err=%v", p, err)
	}
	if p.UpdateTime.IsZero() {
		t.Fatalf("UpsertLastSelected: zero update time")
	}
	p, err = s.Preferences().Get(ctx, owner)
	if err != nil || p.UserID != owner || p.LastSelected() != sneakers.CollectionID {
		t.Fatalf("GetPreference: got=%+v err=%v", p, err)
	}
	if _, err := s.Preferences().UpsertDefault(ctx, "missing-user", watches.CollectionID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpsertDefault unknown user: want ErrNotFound, got %v", err)
	}
}
