package tabular

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// parquet 读写借助内存中的 DuckDB
func openDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}
	return db, nil
}

func readParquet(path string) (*Table, error) {
	db, err := openDuckDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SELECT * FROM read_parquet(" + quoteLiteral(path) + ")")
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet columns: %w", err)
	}

	t := &Table{Columns: make([]Column, len(types))}
	for i, ct := range types {
		t.Columns[i] = Column{Name: ct.Name(), Kind: kindOfDuckType(ct.DatabaseTypeName())}
	}

	for rows.Next() {
		vals := make([]interface{}, len(types))
		ptrs := make([]interface{}, len(types))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan parquet row: %w", err)
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = formatDuckValue(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parquet rows: %w", err)
	}
	return t, nil
}

func writeParquet(path string, t *Table) error {
	db, err := openDuckDB()
	if err != nil {
		return err
	}
	defer db.Close()

	defs := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quoteIdent(c.Name) + " " + duckType(c.Kind)
		marks[i] = "?"
	}
	if _, err := db.Exec("CREATE TABLE export_data (" + strings.Join(defs, ", ") + ")"); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO export_data VALUES (" + strings.Join(marks, ", ") + ")")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	for _, row := range t.Rows {
		args := make([]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			s := ""
			if i < len(row) {
				s = row[i]
			}
			args[i] = duckArg(c.Kind, s)
		}
		if _, err := stmt.Exec(args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	if _, err := db.Exec("COPY export_data TO " + quoteLiteral(path) + " (FORMAT PARQUET)"); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

func duckType(k Kind) string {
	switch k {
	case KindNumber:
		return "DOUBLE"
	case KindDate:
		return "DATE"
	}
	return "VARCHAR"
}

func duckArg(k Kind, s string) interface{} {
	if s == "" {
		return nil
	}
	switch k {
	case KindNumber:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return nil
	case KindDate:
		if d, err := time.Parse(DateLayout, s); err == nil {
			return d
		}
		return nil
	}
	return s
}

func kindOfDuckType(name string) Kind {
	switch strings.ToUpper(name) {
	case "DATE", "TIMESTAMP", "TIMESTAMP_NS", "TIMESTAMP_MS", "TIMESTAMP_S", "TIMESTAMPTZ":
		return KindDate
	case "DOUBLE", "FLOAT", "REAL", "DECIMAL", "BIGINT", "INTEGER", "SMALLINT", "TINYINT",
		"HUGEINT", "UBIGINT", "UINTEGER", "USMALLINT", "UTINYINT":
		return KindNumber
	}
	return KindString
}

func formatDuckValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(DateLayout)
	}
	return fmt.Sprint(v)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
