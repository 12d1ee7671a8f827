package repo

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

type note struct {
	ID   int64
	Body string
}

func openNotesDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func notesRepo(db *sql.DB) *Repository[note] {
	return New(db, Config[note]{
		Table: "notes",
		Scan: func(rows *sql.Rows) (note, error) {
			var n note
			err := rows.Scan(&n.ID, &n.Body)
			return n, err
		},
		ID: func(n note) any { return n.ID },
		Insert: func(n note) (string, []any) {
			return "INSERT INTO notes (id, body) VALUES (?, ?)", []any{n.ID, n.Body}
		},
		Update: func(n note) (string, []any) {
			return "UPDATE notes SET body = ? WHERE id = ?", []any{n.Body, n.ID}
		},
	})
}

func TestRepositoryAddAndGet(t *testing.T) {
	db := openNotesDB(t)
	r := notesRepo(db)

	if _, err := r.Add(context.Background(), note{ID: 1, Body: "hello"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, ok, err := r.Get(context.Background(), "id = ?", 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected row to be found")
	}
	if got.Body != "hello" {
		t.Fatalf("expected body hello, got %q", got.Body)
	}
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	db := openNotesDB(t)
	r := notesRepo(db)

	r.Add(context.Background(), note{ID: 1, Body: "hello"})
	if _, err := r.Update(context.Background(), note{ID: 1, Body: "updated"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _, _ := r.Get(context.Background(), "id = ?", 1)
	if got.Body != "updated" {
		t.Fatalf("expected updated body, got %q", got.Body)
	}

	deleted, err := r.Delete(context.Background(), "id = ?", 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report a removed row")
	}
}

func TestRepositoryGetAllAndSearch(t *testing.T) {
	db := openNotesDB(t)
	r := notesRepo(db)

	r.Add(context.Background(), note{ID: 1, Body: "alpha"})
	r.Add(context.Background(), note{ID: 2, Body: "beta"})

	all, err := r.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}

	filtered, err := r.Search(context.Background(), "body = ?", "beta")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Body != "beta" {
		t.Fatalf("expected single beta row, got %v", filtered)
	}
}

func TestUnitOfWorkCommitsAndRollsBack(t *testing.T) {
	db := openNotesDB(t)
	uow := NewUnitOfWork(db)

	err := uow.Run(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO notes (id, body) VALUES (1, 'committed')")
		return err
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count)
	if count != 1 {
		t.Fatalf("expected 1 row after commit, got %d", count)
	}

	wantErr := sql.ErrNoRows
	err = uow.Run(context.Background(), func(tx *sql.Tx) error {
		tx.Exec("INSERT INTO notes (id, body) VALUES (2, 'rolled back')")
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected propagated error, got %v", err)
	}

	db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&count)
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 row, got %d", count)
	}
}
