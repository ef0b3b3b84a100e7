package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	uid        TEXT PRIMARY KEY,
	parent_uid TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	is_page    INTEGER NOT NULL DEFAULT 0,
	position   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS nodes_parent ON nodes(parent_uid, position);
`

// subtree selects uid and all of its descendants.
const subtree = `
WITH RECURSIVE sub(uid) AS (
	SELECT uid FROM nodes WHERE uid = ?
	UNION ALL
	SELECT n.uid FROM nodes n JOIN sub ON n.parent_uid = sub.uid
)`

// SQLite is a Store persisted in a single SQLite file. Containers and
// entries share the nodes table; is_page tells them apart. Subscriptions
// live in process.
type SQLite struct {
	hub

	path string
	db   *sql.DB
}

// OpenSQLite opens (creating if needed) the store at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("sqlite store requires a path")
	}
	db, err := sql.Open("sqlite", buildSQLiteDSN(trimmed))
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{path: trimmed, db: db}, nil
}

// buildSQLiteDSN creates a read-write WAL DSN for the given path.
func buildSQLiteDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Set("mode", "rwc")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Path returns the database file.
func (s *SQLite) Path() string { return s.path }

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) lookup(ctx context.Context, id string) (Node, error) {
	var n Node
	var isPage int
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, parent_uid, title, content, is_page, position FROM nodes WHERE uid = ?`, id,
	).Scan(&n.UID, &n.ParentUID, &n.Title, &n.Content, &isPage, &n.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, notFoundError(id)
	}
	if err != nil {
		return Node{}, storeError("lookup "+id, err)
	}
	n.IsPage = isPage == 1
	return n, nil
}

func (s *SQLite) exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM nodes WHERE uid = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storeError("lookup "+id, err)
	}
	return true, nil
}

func (s *SQLite) insert(ctx context.Context, n Node) error {
	ok, err := s.exists(ctx, n.UID)
	if err != nil {
		return err
	}
	if ok {
		return alreadyExistsError(n.UID)
	}
	isPage := 0
	if n.IsPage {
		isPage = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (uid, parent_uid, title, content, is_page, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM nodes WHERE parent_uid = ?))
	`, n.UID, n.ParentUID, n.Title, n.Content, isPage, n.ParentUID)
	if err != nil {
		return storeError("insert "+n.UID, err)
	}
	return nil
}

// CreateContainer adds a top-level node.
func (s *SQLite) CreateContainer(ctx context.Context, id, title string) error {
	return s.insert(ctx, Node{UID: id, Title: title, IsPage: true})
}

// CreateEntry appends an entry as the last child of parentID.
func (s *SQLite) CreateEntry(ctx context.Context, parentID, id, content string) error {
	ok, err := s.exists(ctx, parentID)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundError(parentID)
	}
	return s.insert(ctx, Node{UID: id, ParentUID: parentID, Content: content})
}

// UpdateEntry replaces an entry's content and notifies its subscribers.
func (s *SQLite) UpdateEntry(ctx context.Context, id, content string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE nodes SET content = ? WHERE uid = ? AND is_page = 0`, content, id)
	if err != nil {
		return storeError("update "+id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFoundError(id)
	}
	node, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	s.notify(node)
	return nil
}

func (s *SQLite) deleteTree(ctx context.Context, id string, page bool) error {
	n, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if n.IsPage != page {
		return notFoundError(id)
	}
	if _, err := s.db.ExecContext(ctx, subtree+` DELETE FROM nodes WHERE uid IN (SELECT uid FROM sub)`, id); err != nil {
		return storeError("delete "+id, err)
	}
	if !page {
		_, err = s.db.ExecContext(ctx,
			`UPDATE nodes SET position = position - 1 WHERE parent_uid = ? AND position > ?`, n.ParentUID, n.Position)
		if err != nil {
			return storeError("reorder "+n.ParentUID, err)
		}
	}
	return nil
}

// DeleteEntry removes an entry and its descendants.
func (s *SQLite) DeleteEntry(ctx context.Context, id string) error {
	return s.deleteTree(ctx, id, false)
}

// DeleteContainer removes a container and everything below it.
func (s *SQLite) DeleteContainer(ctx context.Context, id string) error {
	return s.deleteTree(ctx, id, true)
}

// RenderEntryInto attaches the entry to region.
func (s *SQLite) RenderEntryInto(ctx context.Context, id string, region Region) error {
	n, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if n.IsPage {
		return notFoundError(id)
	}
	region.Attach(id, n.Content, func(next string) error {
		return s.UpdateEntry(context.WithoutCancel(ctx), id, next)
	})
	return nil
}

// Subscribe watches the selected attribute of entryID.
func (s *SQLite) Subscribe(ctx context.Context, entryID string, sel Selector, fn ChangeFunc) (Subscription, error) {
	if !validSelector(sel) {
		return Subscription{}, invalidSelectorError(sel)
	}
	ok, err := s.exists(ctx, entryID)
	if err != nil {
		return Subscription{}, err
	}
	if !ok {
		return Subscription{}, notFoundError(entryID)
	}
	return s.add(entryID, sel, fn), nil
}

// Unsubscribe removes a subscription.
func (s *SQLite) Unsubscribe(_ context.Context, sub Subscription) error {
	if !s.remove(sub) {
		return notFoundError(sub.entryID)
	}
	return nil
}

// ResolveExists reports whether id is stored.
func (s *SQLite) ResolveExists(ctx context.Context, id string) bool {
	ok, err := s.exists(ctx, id)
	if err != nil {
		log.Logf("resolve %s: %v", id, err)
		return false
	}
	return ok
}

// ResolveText returns an entry's content or a container's title.
func (s *SQLite) ResolveText(ctx context.Context, id string) (string, error) {
	n, err := s.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if n.IsPage {
		return n.Title, nil
	}
	return n.Content, nil
}

// ReferenceNames lists container titles in creation order.
func (s *SQLite) ReferenceNames() []string {
	rows, err := s.db.Query(`SELECT title FROM nodes WHERE is_page = 1 ORDER BY rowid`)
	if err != nil {
		log.Logf("list reference names: %v", err)
		return nil
	}
	defer func() {
		_ = rows.Close()
	}()
	var names []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			log.Logf("scan reference name: %v", err)
			return names
		}
		names = append(names, title)
	}
	return names
}

// BlockCandidates lists every non-empty entry in insertion order.
func (s *SQLite) BlockCandidates() []BlockCandidate {
	rows, err := s.db.Query(`SELECT uid, content FROM nodes WHERE is_page = 0 AND content != '' ORDER BY rowid`)
	if err != nil {
		log.Logf("list block candidates: %v", err)
		return nil
	}
	defer func() {
		_ = rows.Close()
	}()
	var out []BlockCandidate
	for rows.Next() {
		var c BlockCandidate
		if err := rows.Scan(&c.UID, &c.Text); err != nil {
			log.Logf("scan block candidate: %v", err)
			return out
		}
		out = append(out, c)
	}
	return out
}

// Children returns the ordered child ids of id.
func (s *SQLite) Children(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uid FROM nodes WHERE parent_uid = ? ORDER BY position`, id)
	if err != nil {
		return nil, storeError("children "+id, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var ids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, storeError("scan child", err)
		}
		ids = append(ids, uid)
	}
	return ids, rows.Err()
}
