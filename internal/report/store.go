// Package report persists check results in a SQLite database so that
// separate runs can be compared.
package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/pyhint/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id      TEXT PRIMARY KEY,
	started INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS signatures (
	session TEXT NOT NULL REFERENCES sessions(id),
	file    TEXT NOT NULL,
	name    TEXT NOT NULL,
	line    INTEGER NOT NULL,
	params  TEXT NOT NULL,
	returns TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS bindings (
	session TEXT NOT NULL REFERENCES sessions(id),
	file    TEXT NOT NULL,
	name    TEXT NOT NULL,
	line    INTEGER NOT NULL,
	types   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS signatures_session ON signatures(session);
CREATE INDEX IF NOT EXISTS bindings_session ON bindings(session);
`

// Store is a report database.
type Store struct {
	db *sql.DB
}

// Signature is a stored signature together with its file.
type Signature struct {
	File string
	pipeline.Signature
}

// Binding is a stored module-level binding together with its file.
type Binding struct {
	File string
	pipeline.Binding
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening report %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating report schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save records the results of checking one file within session.
func (s *Store) Save(session, file string, signatures []pipeline.Signature, bindings []pipeline.Binding) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("saving %s: %w", file, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO sessions(id, started) VALUES(?, ?)`, session, time.Now().Unix()); err != nil {
		return fmt.Errorf("saving session %s: %w", session, err)
	}
	for _, sig := range signatures {
		params, err := json.Marshal(sig.Params)
		if err != nil {
			return err
		}
		returns, err := json.Marshal(sig.Returns)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO signatures(session, file, name, line, params, returns) VALUES(?, ?, ?, ?, ?, ?)`,
			session, file, sig.Name, sig.Line, string(params), string(returns)); err != nil {
			return fmt.Errorf("saving signature %s: %w", sig.Name, err)
		}
	}
	for _, b := range bindings {
		types, err := json.Marshal(b.Types)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO bindings(session, file, name, line, types) VALUES(?, ?, ?, ?, ?)`,
			session, file, b.Name, b.Line, string(types)); err != nil {
			return fmt.Errorf("saving binding %s: %w", b.Name, err)
		}
	}
	return tx.Commit()
}

// Sessions returns the recorded session ids, oldest first.
func (s *Store) Sessions() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM sessions ORDER BY started, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Signatures returns the signatures saved for session in insertion order.
func (s *Store) Signatures(session string) ([]Signature, error) {
	rows, err := s.db.Query(`SELECT file, name, line, params, returns FROM signatures WHERE session = ? ORDER BY rowid`, session)
	if err != nil {
		return nil, fmt.Errorf("reading signatures: %w", err)
	}
	defer rows.Close()
	var out []Signature
	for rows.Next() {
		var sig Signature
		var params, returns string
		if err := rows.Scan(&sig.File, &sig.Name, &sig.Line, &params, &returns); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(params), &sig.Params); err != nil {
			return nil, fmt.Errorf("decoding params of %s: %w", sig.Name, err)
		}
		if err := json.Unmarshal([]byte(returns), &sig.Returns); err != nil {
			return nil, fmt.Errorf("decoding returns of %s: %w", sig.Name, err)
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

// Bindings returns the bindings saved for session in insertion order.
func (s *Store) Bindings(session string) ([]Binding, error) {
	rows, err := s.db.Query(`SELECT file, name, line, types FROM bindings WHERE session = ? ORDER BY rowid`, session)
	if err != nil {
		return nil, fmt.Errorf("reading bindings: %w", err)
	}
	defer rows.Close()
	var out []Binding
	for rows.Next() {
		var b Binding
		var types string
		if err := rows.Scan(&b.File, &b.Name, &b.Line, &types); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(types), &b.Types); err != nil {
			return nil, fmt.Errorf("decoding types of %s: %w", b.Name, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
