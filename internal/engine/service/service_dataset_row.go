package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/pkg/taskconf"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const rowIDKey = "_rowid"

// RowUpdate body of PUT /data-mgmt/table/:table/row/:rowID
type RowUpdate struct {
	RowID any            `json:"row_id"`
	Data  map[string]any `json:"data"`
}

// tableRef a table in one of the system databases
type tableRef struct {
	name       string
	db         *gorm.DB
	clickhouse bool
}

type column struct {
	name     string
	dbType   string
	nullable bool
	primary  bool
}

func (t tableRef) source() string {
	if t.clickhouse {
		return string(taskconf.SourceClickHouse)
	}
	return string(taskconf.SourceMySQL)
}

func (t tableRef) ident() clause.Table {
	return clause.Table{Name: t.name}
}

func (t tableRef) columns() ([]column, error) {
	types, err := t.db.Migrator().ColumnTypes(t.name)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", t.name, err)
	}
	cols := make([]column, 0, len(types))
	for _, ct := range types {
		c := column{name: ct.Name(), dbType: ct.DatabaseTypeName()}
		if full, ok := ct.ColumnType(); ok && full != "" {
			c.dbType = full
		}
		c.nullable, _ = ct.Nullable()
		c.primary, _ = ct.PrimaryKey()
		cols = append(cols, c)
	}
	return cols, nil
}

// rowIDColumn picks the column rows are addressed by. ClickHouse: id, else
// the first column. Otherwise the first primary key column, else id, else
// none.
func (t tableRef) rowIDColumn(cols []column) string {
	for _, c := range cols {
		if !t.clickhouse && c.primary {
			return c.name
		}
	}
	for _, c := range cols {
		if c.name == "id" {
			return c.name
		}
	}
	if t.clickhouse && len(cols) > 0 {
		return cols[0].name
	}
	return ""
}

// limitOne only MySQL accepts LIMIT on single-table DELETE/UPDATE
func (t tableRef) limitOne() string {
	if t.db.Dialector.Name() == "mysql" {
		return " LIMIT 1"
	}
	return ""
}

func validIdent(name string) bool {
	return name != "" && !strings.ContainsAny(name, "`\"\x00")
}

// tableFor resolves the store of a table. Registry entries synced from
// ClickHouse live in ClickHouse, everything else in the system MySQL.
func (as *AssetService) tableFor(ctx context.Context, name string, entry *model.SyncedTable) (tableRef, error) {
	if !validIdent(name) {
		return tableRef{}, invalid(fmt.Sprintf("invalid table name %q", name))
	}
	ref := tableRef{name: name, db: as.stores.MySQL}
	if entry != nil && taskconf.DeriveTargetType(entry.SourceType) == taskconf.TargetSystemClickHouse {
		if as.stores.ClickHouse == nil {
			return tableRef{}, fmt.Errorf("%w: clickhouse", ErrStorageUnavailable)
		}
		ref.db, ref.clickhouse = as.stores.ClickHouse, true
	}
	ref.db = ref.db.WithContext(ctx)
	if !ref.db.Migrator().HasTable(name) {
		return tableRef{}, ErrTableNotFound
	}
	return ref, nil
}

// rowTable resolves the table addressed by a row operation.
func (as *AssetService) rowTable(ctx context.Context, table string) (tableRef, []column, string, error) {
	entry, err := as.registered(0, table)
	if err != nil {
		return tableRef{}, nil, "", err
	}
	ref, err := as.tableFor(ctx, table, entry)
	if err != nil {
		return tableRef{}, nil, "", err
	}
	cols, err := ref.columns()
	if err != nil {
		return tableRef{}, nil, "", err
	}
	if ref.clickhouse && len(cols) == 0 {
		return tableRef{}, nil, "", invalid("Empty ClickHouse table schema")
	}
	return ref, cols, ref.rowIDColumn(cols), nil
}

// DeleteRow removes the row whose row id column equals rowID.
func (as *AssetService) DeleteRow(ctx context.Context, table, rowID string) error {
	ref, cols, idCol, err := as.rowTable(ctx, table)
	if err != nil {
		return err
	}
	if idCol == "" {
		return invalid("Table has no primary key or id column; cannot delete rows")
	}

	if ref.clickhouse {
		// mutation 异步执行, 不返回影响行数
		err = ref.db.Exec("ALTER TABLE ? DELETE WHERE ? = ?",
			ref.ident(), clause.Column{Name: idCol}, coerce(rowID, typeOf(cols, idCol))).Error
		if err != nil {
			return err
		}
	} else {
		res := ref.db.Exec("DELETE FROM ? WHERE ? = ?"+ref.limitOne(),
			ref.ident(), clause.Column{Name: idCol}, rowID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRowNotFound
		}
	}

	as.auditSvc.Record(model.UserAdmin, model.ActionDeleteRow, table,
		fmt.Sprintf("Deleted row %s from table %s", rowID, table))
	return nil
}

// UpdateRow sets the known columns of update.Data on one row. _rowid, the
// row id column and unknown columns are ignored; nothing left is a no-op.
func (as *AssetService) UpdateRow(ctx context.Context, table, rowID string, update *RowUpdate) error {
	if update == nil || fmt.Sprint(update.RowID) != rowID {
		return invalid("row_id mismatch")
	}
	ref, cols, idCol, err := as.rowTable(ctx, table)
	if err != nil {
		return err
	}
	if idCol == "" {
		return invalid("Table has no primary key or id column; cannot update rows")
	}

	fields := make([]string, 0, len(update.Data))
	for k := range update.Data {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var (
		sets []string
		vars = []any{ref.ident()}
	)
	for _, k := range fields {
		if k == rowIDKey || k == idCol {
			continue
		}
		dbType, ok := lookupType(cols, k)
		if !ok {
			continue
		}
		value := update.Data[k]
		if ref.clickhouse {
			value = coerce(value, dbType)
		}
		sets = append(sets, "? = ?")
		vars = append(vars, clause.Column{Name: k}, value)
	}
	if len(sets) == 0 {
		return nil
	}

	if ref.clickhouse {
		vars = append(vars, clause.Column{Name: idCol}, coerce(rowID, typeOf(cols, idCol)))
		err := ref.db.Exec("ALTER TABLE ? UPDATE "+strings.Join(sets, ", ")+" WHERE ? = ?", vars...).Error
		if err != nil {
			return err
		}
	} else {
		vars = append(vars, clause.Column{Name: idCol}, rowID)
		res := ref.db.Exec("UPDATE ? SET "+strings.Join(sets, ", ")+" WHERE ? = ?"+ref.limitOne(), vars...)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// MySQL 对未变化的行返回 0, 需确认行是否存在
			var n int64
			err := ref.db.Raw("SELECT COUNT(*) FROM ? WHERE ? = ?",
				ref.ident(), clause.Column{Name: idCol}, rowID).Scan(&n).Error
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrRowNotFound
			}
		}
	}

	as.auditSvc.Record(model.UserAdmin, model.ActionUpdateRow, table,
		fmt.Sprintf("Updated row %s in table %s. Fields: [%s]", rowID, table, strings.Join(fields, ", ")))
	return nil
}

func lookupType(cols []column, name string) (string, bool) {
	for _, c := range cols {
		if c.name == name {
			return c.dbType, true
		}
	}
	return "", false
}

func typeOf(cols []column, name string) string {
	t, _ := lookupType(cols, name)
	return t
}

// coerce converts string values to the numeric type of a ClickHouse column.
func coerce(value any, dbType string) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	t := strings.ToLower(dbType)
	t = strings.TrimSuffix(strings.TrimPrefix(t, "nullable("), ")")
	switch {
	case strings.HasPrefix(t, "uint"):
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	case strings.HasPrefix(t, "int"):
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case strings.HasPrefix(t, "float"), strings.HasPrefix(t, "decimal"):
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
