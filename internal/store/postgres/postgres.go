package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users             { return &users{db: s.db} }
func (s *pgStore) Collections() store.Collections { return &collections{db: s.db} }
func (s *pgStore) Grants() store.Grants           { return &grants{db: s.db} }
func (s *pgStore) Preferences() store.Preferences { return &preferences{db: s.db} }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap checks connectivity and applies the schema.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	return EnsureSchema(ctx, db)
}

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name, is_admin)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, m.UserID, m.Email, m.DisplayName, m.IsAdmin)
	if err := row.Scan(&created); err != nil {
		if pgCode(err) == "23505" {
			return nil, fmt.Errorf("user %s: %w", m.UserID, model.ErrConflict)
		}
		return nil, err
	}
	out := *m
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, is_admin, creation_time FROM users WHERE user_id=$1
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
        WHERE user_id = ANY($1)
    `, userIDs)
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
	out := *mc
	out.CollectionID = id
	if err := tx.QueryRowContext(ctx, `
        INSERT INTO collections (collection_id, name, kind, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time, update_time
    `, id, mc.Name, string(mc.Kind), mc.CreatedBy).Scan(&out.CreationTime, &out.UpdateTime); err != nil {
		if pgCode(err) == "23503" {
			return nil, fmt.Errorf("creator %s: %w", mc.CreatedBy, model.ErrNotFound)
		}
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO access_grants (user_id, collection_id, role) VALUES ($1,$2,$3)
    `, mc.CreatedBy, id, string(model.RoleOwner)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *collections) GetByID(ctx context.Context, collectionID string) (*model.Collection, error) {
	var out model.Collection
	var kind string
	row := c.db.QueryRowContext(ctx, `
        SELECT collection_id, name, kind, created_by, creation_time, update_time
        FROM collections WHERE collection_id=$1
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
        FROM collections WHERE collection_id = ANY($1)
    `, collectionIDs)
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
	out := *mg
	if err := g.db.QueryRowContext(ctx, `
        INSERT INTO access_grants (user_id, collection_id, role) VALUES ($1,$2,$3)
        ON CONFLICT (user_id, collection_id) DO UPDATE SET role=EXCLUDED.role
        RETURNING creation_time
    `, mg.UserID, mg.CollectionID, string(mg.Role)).Scan(&out.CreationTime); err != nil {
		if pgCode(err) == "23503" {
			return nil, fmt.Errorf("grant %s/%s: %w", mg.UserID, mg.CollectionID, model.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

func (g *grants) Get(ctx context.Context, userID, collectionID string) (*model.AccessGrant, error) {
	out := model.AccessGrant{UserID: userID, CollectionID: collectionID}
	var role string
	row := g.db.QueryRowContext(ctx, `
        SELECT role, creation_time FROM access_grants WHERE user_id=$1 AND collection_id=$2
    `, userID, collectionID)
	if err := row.Scan(&role, &out.CreationTime); err != nil {
		return nil, notFound(err, "grant "+userID+"/"+collectionID)
	}
	out.Role = model.Role(role)
	return &out, nil
}

func (g *grants) ListByUser(ctx context.Context, userID string) ([]*model.AccessGrant, error) {
	rows, err := g.db.QueryContext(ctx, `
        SELECT collection_id, role, creation_time FROM access_grants WHERE user_id=$1
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
	res, err := g.db.ExecContext(ctx, `DELETE FROM access_grants WHERE user_id=$1 AND collection_id=$2`, userID, collectionID)
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
        FROM selection_preferences WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.DefaultCollectionID, &out.LastSelectedCollectionID, &out.UpdateTime); err != nil {
		return nil, notFound(err, "preference "+userID)
	}
	return &out, nil
}

func (p *preferences) UpsertLastSelected(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	return p.upsert(ctx, userID, "last_selected_collection_id", collectionID)
}

func (p *preferences) UpsertDefault(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	return p.upsert(ctx, userID, "default_collection_id", collectionID)
}

// upsert writes one column; column is always a constant chosen by the callers above.
func (p *preferences) upsert(ctx context.Context, userID, column, collectionID string) (*model.SelectionPreference, error) {
	out := model.SelectionPreference{UserID: userID}
	q := `INSERT INTO selection_preferences (user_id, ` + column + `, update_time) VALUES ($1,$2,now())
        ON CONFLICT (user_id) DO UPDATE SET ` + column + `=EXCLUDED.` + column + `, update_time=now()
        RETURNING default_collection_id, last_selected_collection_id, update_time`
	if err := p.db.QueryRowContext(ctx, q, userID, collectionID).Scan(&out.DefaultCollectionID, &out.LastSelectedCollectionID, &out.UpdateTime); err != nil {
		if pgCode(err) == "23503" {
			return nil, fmt.Errorf("preference %s: %w", userID, model.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

// helpers
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	// stdlib wraps some errors without preserving the type
	if strings.Contains(err.Error(), "SQLSTATE 23505") {
		return "23505"
	}
	return ""
}
