// Package dbglue implements the SQL built-in library SPEC_FULL.md §B.2
// describes: sql-connect/sql-query/sql-exec/sql-close bound into the
// global environment by this package's Register, backed by database/sql with the
// teacher's three drivers registered via blank imports. Grounded on
// internal/database/db_manager.go's connection-registry pattern and
// internal/stdlib/database_funcs.go's args-driven query/execute/close
// built-ins, translated from Sentra's interface{} calling convention to
// Europa's value.Value/native-closure one.
package dbglue

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"europa/internal/gcheap"
	"europa/internal/runtime"
	"europa/internal/table"
	"europa/internal/value"
	"europa/internal/vm"
)

// Registry holds every open *sql.DB handle a script has created via
// sql-connect, keyed by the connection id it returned — mirroring
// DBManager's connections map, minus the id/dsn/created bookkeeping this
// package's built-ins don't expose to scripts.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*sql.DB
	next  int
}

func newRegistry() *Registry { return &Registry{conns: make(map[string]*sql.DB)} }

func (r *Registry) add(db *sql.DB) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := fmt.Sprintf("db%d", r.next)
	r.conns[id] = db
	return id
}

func (r *Registry) get(id string) (*sql.DB, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.conns[id]
	return db, ok
}

func (r *Registry) remove(id string) (*sql.DB, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	return db, ok
}

func driverName(dbType string) (string, error) {
	switch dbType {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// Register binds sql-connect/sql-query/sql-exec/sql-close into g's top
// level environment. Call this alongside stdlib.Register from
// register_standard_library; it is a separate package (not stdlib
// itself) so an embedder who doesn't want the SQL driver weight can skip
// importing it.
func Register(g *runtime.Global) {
	reg := newRegistry()
	bind(g, "sql-connect", sqlConnect(reg))
	bind(g, "sql-query", sqlQuery(g, reg))
	bind(g, "sql-exec", sqlExec(reg))
	bind(g, "sql-close", sqlClose(reg))
}

func bind(g *runtime.Global, name string, fn vm.NativeFunc) {
	cl := vm.NewNativeClosure(g.Heap, name, fn)
	g.Bind(name, value.FromObject(cl))
}

func argSlice(rib value.Value) []value.Value {
	items, _ := value.ListToSlice(rib)
	return items
}

func dbError(name string, cause error) error {
	wrapped := errors.Wrap(cause, name)
	return &vm.RuntimeError{Flag: value.ErrBadResource, Msg: wrapped.Error()}
}

// sqlConnect implements (sql-connect type dsn) -> connection-id string,
// grounded on DBManager.Connect's driver-mapping/Open/Ping/pool-sizing
// sequence.
func sqlConnect(reg *Registry) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := argSlice(rib)
		if len(a) != 2 || !a[0].IsSymbol() && !a[0].IsString() || !a[1].IsString() {
			return value.Null, &vm.RuntimeError{Flag: value.ErrBadArgument, Msg: "sql-connect: expected (type dsn)"}
		}
		dbType := textOf(a[0])
		driver, err := driverName(dbType)
		if err != nil {
			return value.Null, dbError("sql-connect", err)
		}
		db, err := sql.Open(driver, a[1].AsString().Text)
		if err != nil {
			return value.Null, dbError("sql-connect", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return value.Null, dbError("sql-connect", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		id := reg.add(db)
		str := value.NewString(id, value.FNV1a(id))
		s.Heap.Track(str)
		return value.FromObject(str), nil
	}
}

func textOf(v value.Value) string {
	if v.IsSymbol() {
		return v.AsSymbol().Text
	}
	return v.AsString().Text
}

// sqlQuery implements (sql-query conn-id sql arg...) -> vector of tables,
// one table per row mapping column-name symbols to values, grounded on
// dbQuery's rows.Columns()/rows.Scan() loop.
func sqlQuery(g *runtime.Global, reg *Registry) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := argSlice(rib)
		if len(a) < 2 || !a[0].IsString() || !a[1].IsString() {
			return value.Null, &vm.RuntimeError{Flag: value.ErrBadArgument, Msg: "sql-query: expected (conn-id sql arg...)"}
		}
		db, ok := reg.get(a[0].AsString().Text)
		if !ok {
			return value.Null, dbError("sql-query", fmt.Errorf("no such connection: %s", a[0].AsString().Text))
		}
		queryArgs := toDriverArgs(a[2:])
		rows, err := db.Query(a[1].AsString().Text, queryArgs...)
		if err != nil {
			return value.Null, dbError("sql-query", err)
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return value.Null, dbError("sql-query", err)
		}

		var out []value.Value
		for rows.Next() {
			row, err := scanRow(s.Heap, g, cols, rows)
			if err != nil {
				return value.Null, dbError("sql-query", err)
			}
			out = append(out, value.FromObject(row))
		}
		if err := rows.Err(); err != nil {
			return value.Null, dbError("sql-query", err)
		}

		vec := value.NewVector(out)
		s.Heap.Track(vec)
		return value.FromObject(vec), nil
	}
}

func scanRow(h *gcheap.Heap, g *runtime.Global, cols []string, rows *sql.Rows) (*table.Table, error) {
	dest := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	t := table.New(h, len(cols))
	for i, col := range cols {
		t.Set(g.InternSymbol(col), fromDriverValue(h, dest[i]))
	}
	return t, nil
}

func fromDriverValue(h *gcheap.Heap, v interface{}) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Boolean(false)
	case int64:
		return value.Fixnum(x)
	case float64:
		return value.Real(x)
	case bool:
		return value.Boolean(x)
	case []byte:
		str := value.NewString(string(x), value.FNV1a(string(x)))
		h.Track(str)
		return value.FromObject(str)
	case string:
		str := value.NewString(x, value.FNV1a(x))
		h.Track(str)
		return value.FromObject(str)
	case time.Time:
		text := x.Format(time.RFC3339)
		str := value.NewString(text, value.FNV1a(text))
		h.Track(str)
		return value.FromObject(str)
	default:
		text := fmt.Sprintf("%v", x)
		str := value.NewString(text, value.FNV1a(text))
		h.Track(str)
		return value.FromObject(str)
	}
}

func toDriverArgs(vals []value.Value) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		switch {
		case v.IsFixnum():
			out[i] = v.AsFixnum()
		case v.IsReal():
			out[i] = v.AsReal()
		case v.IsBoolean():
			out[i] = v.AsBoolean()
		case v.IsString():
			out[i] = v.AsString().Text
		case v.IsSymbol():
			out[i] = v.AsSymbol().Text
		default:
			out[i] = nil
		}
	}
	return out
}

// sqlExec implements (sql-exec conn-id sql arg...) -> rows-affected
// fixnum, grounded on DBManager.Execute.
func sqlExec(reg *Registry) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := argSlice(rib)
		if len(a) < 2 || !a[0].IsString() || !a[1].IsString() {
			return value.Null, &vm.RuntimeError{Flag: value.ErrBadArgument, Msg: "sql-exec: expected (conn-id sql arg...)"}
		}
		db, ok := reg.get(a[0].AsString().Text)
		if !ok {
			return value.Null, dbError("sql-exec", fmt.Errorf("no such connection: %s", a[0].AsString().Text))
		}
		result, err := db.Exec(a[1].AsString().Text, toDriverArgs(a[2:])...)
		if err != nil {
			return value.Null, dbError("sql-exec", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return value.Null, dbError("sql-exec", err)
		}
		return value.Fixnum(n), nil
	}
}

// sqlClose implements (sql-close conn-id), grounded on DBManager's close
// path (not shown above but symmetrical with Connect).
func sqlClose(reg *Registry) vm.NativeFunc {
	return func(s *vm.State, rib value.Value) (value.Value, error) {
		a := argSlice(rib)
		if len(a) != 1 || !a[0].IsString() {
			return value.Null, &vm.RuntimeError{Flag: value.ErrBadArgument, Msg: "sql-close: expected (conn-id)"}
		}
		db, ok := reg.remove(a[0].AsString().Text)
		if !ok {
			return value.Null, dbError("sql-close", fmt.Errorf("no such connection: %s", a[0].AsString().Text))
		}
		if err := db.Close(); err != nil {
			return value.Null, dbError("sql-close", err)
		}
		return value.Null, nil
	}
}
