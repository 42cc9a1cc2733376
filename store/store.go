package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"notedesk/models"
)

// Supported database/sql driver names.
const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
	MySQL    = "mysql"
)

// Store persists users and notes. Every operation is a single statement;
// there are no multi-statement transactions and no cross-request locking.
type Store struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
}

// New opens the database, verifies the connection and bootstraps the
// schema. Callers treat any error here as fatal.
func New(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == Postgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	s := &Store{db: db, driver: driver, builder: builder}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != Postgres {
		return query
	}
	var b strings.Builder
	argNum := 1
	for _, c := range query {
		if c == '?' {
			fmt.Fprintf(&b, "$%d", argNum)
			argNum++
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (s *Store) initSchema() error {
	var usersTable, notesTable string

	switch s.driver {
	case Postgres:
		usersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`
		notesTable = `
		CREATE TABLE IF NOT EXISTS notes (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			is_global BOOLEAN NOT NULL DEFAULT FALSE,
			user_id INTEGER REFERENCES users(id),
			origin_id INTEGER REFERENCES notes(id),
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`
	case MySQL:
		usersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(255) NOT NULL UNIQUE,
			display_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL
		);`
		notesTable = `
		CREATE TABLE IF NOT EXISTS notes (
			id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(512) NOT NULL,
			content TEXT NOT NULL,
			is_global BOOLEAN NOT NULL DEFAULT FALSE,
			user_id INT,
			origin_id INT,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (origin_id) REFERENCES notes(id)
		);`
	default:
		usersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`
		notesTable = `
		CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			is_global BOOLEAN NOT NULL DEFAULT 0,
			user_id INTEGER,
			origin_id INTEGER,
			is_deleted BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (origin_id) REFERENCES notes(id)
		);`
	}

	for _, stmt := range []string{usersTable, notesTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateUser inserts a new user. The username existence check here is
// check-then-insert; the UNIQUE constraint on username closes the race
// between concurrent registrations at the storage layer.
func (s *Store) CreateUser(ctx context.Context, username, displayName, email, passwordHash string) (*models.User, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)"), username).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check username %q: %w", username, err)
	}
	if exists {
		return nil, models.ErrUsernameTaken
	}

	now := time.Now().UTC()
	query := "INSERT INTO users (username, display_name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)"
	args := []any{username, displayName, email, passwordHash, now}

	var id int64
	if s.driver == Postgres {
		err = s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
	} else {
		var res sql.Result
		res, err = s.db.ExecContext(ctx, query, args...)
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}

	return &models.User{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		Email:       email,
		CreatedAt:   now,
	}, nil
}

// GetUserByUsername returns the user including the password hash, or
// models.ErrUserNotFound. Callers must not expose which of the two login
// failure modes occurred.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id, username, display_name, email, password_hash, created_at FROM users WHERE username = ?"),
		username).
		Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

// NoteParams carries the fields for a new note row. OriginID is accepted
// as-is: no existence check is done, so it may point at a nonexistent or
// foreign row.
type NoteParams struct {
	UserID   int64
	Title    string
	Content  string
	IsGlobal bool
	OriginID *int64
}

// CreateNote inserts a new note row and returns it as stored.
func (s *Store) CreateNote(ctx context.Context, p NoteParams) (*models.Note, error) {
	now := time.Now().UTC()
	query := "INSERT INTO notes (title, content, is_global, user_id, origin_id, is_deleted, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	args := []any{p.Title, p.Content, p.IsGlobal, p.UserID, p.OriginID, false, now, now}

	var id int64
	var err error
	if s.driver == Postgres {
		err = s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
	} else {
		var res sql.Result
		res, err = s.db.ExecContext(ctx, query, args...)
		if err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create note for user %d: %w", p.UserID, err)
	}
	return s.getNote(ctx, id)
}

// CreateVersion inserts a new row linked to originID with is_global forced
// false. The prior row is left untouched; the logical note's history is the
// chain of origin_id pointers.
func (s *Store) CreateVersion(ctx context.Context, originID, userID int64, title, content string) (*models.Note, error) {
	return s.CreateNote(ctx, NoteParams{
		UserID:   userID,
		Title:    title,
		Content:  content,
		IsGlobal: false,
		OriginID: &originID,
	})
}

// ListVisible returns every non-deleted note that is either global or owned
// by userID, newest update first, creation time breaking ties.
func (s *Store) ListVisible(ctx context.Context, userID int64) ([]models.Note, error) {
	query, args, err := s.builder.
		Select("id", "title", "content", "is_global", "user_id", "origin_id", "is_deleted", "created_at", "updated_at").
		From("notes").
		Where(sq.Or{
			sq.And{sq.Eq{"is_global": false}, sq.Eq{"user_id": userID}, sq.Eq{"is_deleted": false}},
			sq.And{sq.Eq{"is_global": true}, sq.Eq{"is_deleted": false}},
		}).
		OrderBy("updated_at DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes for user %d: %w", userID, err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes for user %d: %w", userID, err)
	}
	return notes, nil
}

// SoftDelete flips is_deleted on the row with that id and returns the
// updated row, or (nil, nil) when no row matched, mirroring an UPDATE with
// an empty result.
func (s *Store) SoftDelete(ctx context.Context, noteID int64) (*models.Note, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE notes SET is_deleted = ? WHERE id = ?"), true, noteID)
	if err != nil {
		return nil, fmt.Errorf("soft delete note %d: %w", noteID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("soft delete note %d: %w", noteID, err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.getNote(ctx, noteID)
}

func (s *Store) getNote(ctx context.Context, id int64) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id, title, content, is_global, user_id, origin_id, is_deleted, created_at, updated_at FROM notes WHERE id = ?"), id)
	n, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("get note %d: %w", id, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*models.Note, error) {
	n := &models.Note{}
	var userID, originID sql.NullInt64
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.IsGlobal, &userID, &originID, &n.IsDeleted, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		n.UserID = &userID.Int64
	}
	if originID.Valid {
		n.OriginID = &originID.Int64
	}
	return n, nil
}
