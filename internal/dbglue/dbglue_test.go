package dbglue

import (
	"testing"

	"europa/internal/runtime"
	"europa/internal/stdlib"
)

func evalWithSQL(t *testing.T, src string) {
	t.Helper()
	g := runtime.New()
	stdlib.Register(g)
	Register(g)
	s := g.NewState()
	if _, err := s.DoString(src); err != nil {
		t.Fatalf("%q: %v", src, err)
	}
}

func TestSQLiteConnectQueryExecClose(t *testing.T) {
	evalWithSQL(t, `
		(define conn (sql-connect 'sqlite ":memory:"))
		(sql-exec conn "create table people (id integer, name text)")
		(sql-exec conn "insert into people (id, name) values (1, 'ada')")
		(define rows (sql-query conn "select id, name from people"))
		(if (not (= (vector-length rows) 1))
		    (error "expected one row"))
		(define row (vector-ref rows 0))
		(if (not (equal? (table-ref row 'name) "ada"))
		    (error "expected name ada"))
		(sql-close conn)
	`)
}

func TestSQLConnectRejectsUnknownConnection(t *testing.T) {
	g := runtime.New()
	stdlib.Register(g)
	Register(g)
	s := g.NewState()
	_, err := s.DoString(`(sql-query "no-such-conn" "select 1")`)
	if err == nil {
		t.Fatal("expected an error querying an unknown connection id")
	}
}
