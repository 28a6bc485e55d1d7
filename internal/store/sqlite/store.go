package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/store"
)

// NewWithDB constructs a SQLite-backed store. The schema must already exist
// (see EnsureSchema).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

// OpenStore opens the database file at path, applies the schema and returns the store.
func OpenStore(ctx context.Context, path string) (store.Store, *sql.DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return NewWithDB(db), db, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users             { return &users{db: s.db} }
func (s *sqliteStore) Collections() store.Collections { return &collections{db: s.db} }
func (s *sqliteStore) Grants() store.Grants           { return &grants{db: s.db} }
func (s *sqliteStore) Preferences() store.Preferences { return &preferences{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name, is_admin, creation_time)
        VALUES (?,?,?,?,?)
    `, m.UserID, m.Email, m.DisplayName, m.IsAdmin, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", m.UserID, model.ErrConflict)
		}
		return nil, err
	}
	out := *m
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, is_admin, creation_time FROM users WHERE user_id=?
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.IsAdmin, &out.CreationTime); err != nil {
		return nil, notFound(err, "user "+userID)
	}
	return &out, nil
}

func (u *users) GetMany(ctx context.Context, userIDs []string) ([]*model.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := u.db.QueryContext(ctx, `
        SELECT user_id, email, display_name, is_admin, creation_time FROM users
        WHERE user_id IN (`+placeholders(len(userIDs))+`)`, anys(userIDs)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.User
	for rows.Next() {
		var m model.User
		if err := rows.Scan(&m.UserID, &m.Email, &m.DisplayName, &m.IsAdmin, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Collections ---
type collections struct{ db *sql.DB }

func (c *collections) Create(ctx context.Context, mc *model.Collection) (*model.Collection, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	id := mc.CollectionID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO collections (collection_id, name, kind, created_by, creation_time, update_time)
        VALUES (?,?,?,?,?,?)
    `, id, mc.Name, string(mc.Kind), mc.CreatedBy, now, now); err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("creator %s: %w", mc.CreatedBy, model.ErrNotFound)
		}
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO access_grants (user_id, collection_id, role, creation_time) VALUES (?,?,?,?)
    `, mc.CreatedBy, id, string(model.RoleOwner), now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := *mc
	out.CollectionID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (c *collections) GetByID(ctx context.Context, collectionID string) (*model.Collection, error) {
	var out model.Collection
	var kind string
	row := c.db.QueryRowContext(ctx, `
        SELECT collection_id, name, kind, created_by, creation_time, update_time
        FROM collections WHERE collection_id=?
    `, collectionID)
	if err := row.Scan(&out.CollectionID, &out.Name, &kind, &out.CreatedBy, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err, "collection "+collectionID)
	}
	out.Kind = model.Kind(kind)
	return &out, nil
}

func (c *collections) GetMany(ctx context.Context, collectionIDs []string) ([]*model.Collection, error) {
	if len(collectionIDs) == 0 {
		return nil, nil
	}
	rows, err := c.db.QueryContext(ctx, `
        SELECT collection_id, name, kind, created_by, creation_time, update_time
        FROM collections WHERE collection_id IN (`+placeholders(len(collectionIDs))+`)`, anys(collectionIDs)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Collection
	for rows.Next() {
		var m model.Collection
		var kind string
		if err := rows.Scan(&m.CollectionID, &m.Name, &kind, &m.CreatedBy, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
		m.Kind = model.Kind(kind)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Grants ---
type grants struct{ db *sql.DB }

func (g *grants) Upsert(ctx context.Context, mg *model.AccessGrant) (*model.AccessGrant, error) {
	now := time.Now().UTC()
	if _, err := g.db.ExecContext(ctx, `
        INSERT INTO access_grants (user_id, collection_id, role, creation_time) VALUES (?,?,?,?)
        ON CONFLICT(user_id, collection_id) DO UPDATE SET role=excluded.role
    `, mg.UserID, mg.CollectionID, string(mg.Role), now); err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("grant %s/%s: %w", mg.UserID, mg.CollectionID, model.ErrNotFound)
		}
		return nil, err
	}
	return g.Get(ctx, mg.UserID, mg.CollectionID)
}

func (g *grants) Get(ctx context.Context, userID, collectionID string) (*model.AccessGrant, error) {
	out := model.AccessGrant{UserID: userID, CollectionID: collectionID}
	var role string
	row := g.db.QueryRowContext(ctx, `
        SELECT role, creation_time FROM access_grants WHERE user_id=? AND collection_id=?
    `, userID, collectionID)
	if err := row.Scan(&role, &out.CreationTime); err != nil {
		return nil, notFound(err, "grant "+userID+"/"+collectionID)
	}
	out.Role = model.Role(role)
	return &out, nil
}

func (g *grants) ListByUser(ctx context.Context, userID string) ([]*model.AccessGrant, error) {
	rows, err := g.db.QueryContext(ctx, `
        SELECT collection_id, role, creation_time FROM access_grants WHERE user_id=?
        ORDER BY creation_time ASC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.AccessGrant
	for rows.Next() {
		m := model.AccessGrant{UserID: userID}
		var role string
		if err := rows.Scan(&m.CollectionID, &role, &m.CreationTime); err != nil {
			return nil, err
		}
		m.Role = model.Role(role)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (g *grants) Delete(ctx context.Context, userID, collectionID string) error {
	res, err := g.db.ExecContext(ctx, `DELETE FROM access_grants WHERE user_id=? AND collection_id=?`, userID, collectionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("grant %s/%s: %w", userID, collectionID, model.ErrNotFound)
	}
	return nil
}

// --- Preferences ---
type preferences struct{ db *sql.DB }

func (p *preferences) Get(ctx context.Context, userID string) (*model.SelectionPreference, error) {
	out := model.SelectionPreference{UserID: userID}
	row := p.db.QueryRowContext(ctx, `
        SELECT default_collection_id, last_selected_collection_id, update_time
        FROM selection_preferences WHERE user_id=?
    `, userID)
	if err := row.Scan(&out.DefaultCollectionID, &out.LastSelectedCollectionID, &out.UpdateTime); err != nil {
		return nil, notFound(err, "preference "+userID)
	}
	return &out, nil
}

func (p *preferences) UpsertLastSelected(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	if _, err := p.db.ExecContext(ctx, `
        INSERT INTO selection_preferences (user_id, last_selected_collection_id, update_time) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET
            last_selected_collection_id=excluded.last_selected_collection_id,
            update_time=excluded.update_time
    `, userID, collectionID, time.Now().UTC()); err != nil {
		return nil, p.upsertErr(err, userID)
	}
	return p.Get(ctx, userID)
}

func (p *preferences) UpsertDefault(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	if _, err := p.db.ExecContext(ctx, `
        INSERT INTO selection_preferences (user_id, default_collection_id, update_time) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET
            default_collection_id=excluded.default_collection_id,
            update_time=excluded.update_time
    `, userID, collectionID, time.Now().UTC()); err != nil {
		return nil, p.upsertErr(err, userID)
	}
	return p.Get(ctx, userID)
}

func (p *preferences) upsertErr(err error, userID string) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("preference %s: %w", userID, model.ErrNotFound)
	}
	return err
}

// helpers
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return err
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func anys(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
