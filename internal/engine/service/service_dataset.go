package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/ingest/internal/engine/model"
	"github.com/go-arcade/ingest/internal/pkg/storage"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/xuri/excelize/v2"
)

const (
	previewLimit  = 20
	presignExpiry = 5 * time.Minute
	maxLinks      = 50
	// 文件结构按前几行推断
	inferRows = 5
)

const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatExcel = "excel"
)

type PreviewMeta struct {
	Source   string `json:"source"`
	Editable bool   `json:"editable"`
	// RowIDColumn nil when rows cannot be addressed
	RowIDColumn *string `json:"rowid_col"`
}

// Preview one page of an asset. Every row carries _rowid.
type Preview struct {
	Columns []string         `json:"columns"`
	Data    []map[string]any `json:"data"`
	Total   int64            `json:"total"`
	Meta    PreviewMeta      `json:"meta"`
}

type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

var bucketColumns = []ColumnInfo{
	{Name: "Key", Type: "String"},
	{Name: "Size", Type: "Int64"},
	{Name: "LastModified", Type: "DateTime"},
	{Name: "ETag", Type: "String"},
}

// Preview pages through a local file (path relative to the data directory,
// id zero), a bucket, or a table. Registry ids win over names.
func (as *AssetService) Preview(ctx context.Context, path string, id uint64, offset, limit int) (*Preview, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = previewLimit
	}
	if id == 0 {
		if file, ok := storage.Resolve(as.stores.DataDir, path); ok {
			return previewFile(file, offset, limit)
		}
	}
	entry, err := as.registered(id, path)
	if err != nil {
		return nil, err
	}
	if isBucket(entry) {
		return as.previewBucket(ctx, entry.Name, offset, limit)
	}
	name := path
	if entry != nil {
		name = entry.Name
	}
	ref, err := as.tableFor(ctx, name, entry)
	if errors.Is(err, ErrTableNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return previewTable(ref, offset, limit)
}

func previewFile(path string, offset, limit int) (*Preview, error) {
	t, err := storage.ReadFile(path)
	if err != nil {
		return nil, err
	}
	total := len(t.Rows)
	start, end := min(offset, total), min(offset+limit, total)
	data := make([]map[string]any, 0, end-start)
	for i, row := range t.Rows[start:end] {
		row[rowIDKey] = offset + i
		data = append(data, row)
	}
	return &Preview{
		Columns: t.Columns,
		Data:    data,
		Total:   int64(total),
		Meta:    PreviewMeta{Source: AssetFile},
	}, nil
}

func (as *AssetService) previewBucket(ctx context.Context, bucket string, offset, limit int) (*Preview, error) {
	b, err := as.buckets()
	if err != nil {
		return nil, err
	}
	objects, total, err := b.List(ctx, bucket, offset, limit)
	if err != nil && !errors.Is(err, storage.ErrNoSuchBucket) {
		return nil, err
	}
	data := make([]map[string]any, 0, len(objects))
	for _, o := range objects {
		data = append(data, map[string]any{
			"Key":          o.Key,
			"Size":         o.Size,
			"LastModified": o.LastModified,
			rowIDKey:       o.ETag,
		})
	}
	return &Preview{
		Columns: []string{"Key", "Size", "LastModified"},
		Data:    data,
		Total:   int64(total),
		Meta:    PreviewMeta{Source: "minio"},
	}, nil
}

func previewTable(ref tableRef, offset, limit int) (*Preview, error) {
	cols, err := ref.columns()
	if err != nil {
		return nil, err
	}
	var total int64
	if err := ref.db.Raw("SELECT COUNT(*) FROM ?", ref.ident()).Scan(&total).Error; err != nil {
		return nil, err
	}
	var rows []map[string]any
	err = ref.db.Raw("SELECT * FROM ? LIMIT ? OFFSET ?", ref.ident(), limit, offset).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	idCol := ref.rowIDColumn(cols)
	for i, row := range rows {
		normalize(row)
		if idCol != "" {
			row[rowIDKey] = row[idCol]
		} else {
			row[rowIDKey] = offset + i
		}
	}
	p := &Preview{
		Columns: columnNames(cols),
		Data:    rows,
		Total:   total,
		Meta:    PreviewMeta{Source: ref.source(), Editable: idCol != ""},
	}
	if p.Data == nil {
		p.Data = []map[string]any{}
	}
	if idCol != "" {
		p.Meta.RowIDColumn = &idCol
	}
	return p, nil
}

// Structure lists the columns of an asset. Lookup order follows Preview.
func (as *AssetService) Structure(ctx context.Context, path string, id uint64) ([]ColumnInfo, error) {
	if id == 0 {
		if file, ok := storage.Resolve(as.stores.DataDir, path); ok {
			return fileStructure(file)
		}
	}
	entry, err := as.registered(id, path)
	if err != nil {
		return nil, err
	}
	if isBucket(entry) {
		return bucketColumns, nil
	}
	name := path
	if entry != nil {
		name = entry.Name
	}
	ref, err := as.tableFor(ctx, name, entry)
	if errors.Is(err, ErrTableNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	cols, err := ref.columns()
	if err != nil {
		return nil, err
	}
	out := make([]ColumnInfo, 0, len(cols))
	for _, c := range cols {
		out = append(out, ColumnInfo{Name: c.name, Type: c.dbType, Nullable: c.nullable})
	}
	return out, nil
}

func fileStructure(path string) ([]ColumnInfo, error) {
	t, err := storage.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sample := t.Rows[:min(inferRows, len(t.Rows))]
	out := make([]ColumnInfo, 0, len(t.Columns))
	for _, col := range t.Columns {
		out = append(out, ColumnInfo{Name: col, Type: inferType(sample, col), Nullable: true})
	}
	return out, nil
}

// inferType names the narrowest of int64, float64, bool that every sampled
// value fits, object otherwise.
func inferType(rows []map[string]any, col string) string {
	kinds := []string{"int64", "float64", "bool"}
	fits := map[string]bool{"int64": true, "float64": true, "bool": true}
	seen := false
	for _, row := range rows {
		v, ok := row[col]
		if !ok || v == nil || v == "" {
			continue
		}
		seen = true
		s := fmt.Sprint(v)
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			fits["int64"] = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			fits["float64"] = false
		}
		if _, err := strconv.ParseBool(s); err != nil {
			fits["bool"] = false
		}
	}
	if !seen {
		return "object"
	}
	for _, k := range kinds {
		if fits[k] {
			return k
		}
	}
	return "object"
}

// DeleteAsset drops a registered table or bucket, or removes a local data
// file. A numeric argument is a registry id, then a file name, then a
// registry name.
func (as *AssetService) DeleteAsset(ctx context.Context, nameOrID string) (string, error) {
	if id := parseAssetID(nameOrID); id > 0 {
		entry, err := as.registered(id, "")
		if err != nil {
			return "", err
		}
		if entry != nil {
			details := fmt.Sprintf("Deleted asset %s (ID: %d) of type %s", entry.Name, entry.ID, entry.SourceType)
			if err := as.dropRegistered(ctx, entry, details); err != nil {
				return "", err
			}
			return fmt.Sprintf("Asset %s deleted", entry.Name), nil
		}
	}

	if file, ok := storage.Resolve(as.stores.DataDir, nameOrID); ok {
		if err := os.Remove(file); err != nil {
			return "", err
		}
		as.auditSvc.Record(model.UserAdmin, model.ActionDeleteAsset, nameOrID, "Deleted local file "+nameOrID)
		return fmt.Sprintf("File %s deleted", nameOrID), nil
	}

	entry, err := as.registered(0, nameOrID)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return "", ErrAssetNotFound
	}
	details := fmt.Sprintf("Deleted asset %s of type %s", entry.Name, entry.SourceType)
	if err := as.dropRegistered(ctx, entry, details); err != nil {
		return "", err
	}
	return fmt.Sprintf("Table %s deleted", entry.Name), nil
}

// dropRegistered drops the stored data first; the registry row goes only
// once that succeeded.
func (as *AssetService) dropRegistered(ctx context.Context, entry *model.SyncedTable, details string) error {
	if isBucket(entry) {
		b, err := as.buckets()
		if err != nil {
			return err
		}
		if err := b.Remove(ctx, entry.Name); err != nil {
			return fmt.Errorf("failed to remove bucket %s: %w", entry.Name, err)
		}
	} else {
		ref, err := as.tableFor(ctx, entry.Name, entry)
		switch {
		case errors.Is(err, ErrTableNotFound):
			log.Warnw("registered table already gone", "table", entry.Name)
		case err != nil:
			return err
		default:
			if err := ref.db.Exec("DROP TABLE IF EXISTS ?", ref.ident()).Error; err != nil {
				return fmt.Errorf("failed to drop table %s: %w", entry.Name, err)
			}
		}
	}
	if err := as.syncedRepo.DeleteSyncedTable(entry.ID); err != nil {
		return err
	}
	as.auditSvc.Record(model.UserAdmin, model.ActionDeleteAsset, entry.Name, details)
	return nil
}

// PresignedLink a temporary GET url of one object.
type PresignedLink struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Export the content of a downloaded asset. Buckets export links instead
// of content.
type Export struct {
	Name   string
	Format string
	Links  []PresignedLink
	table  *storage.Table
}

func (e *Export) Filename() string {
	switch e.Format {
	case FormatJSON:
		return e.Name + ".json"
	case FormatExcel:
		return e.Name + ".xlsx"
	}
	return e.Name + ".csv"
}

func (e *Export) ContentType() string {
	switch e.Format {
	case FormatJSON:
		return "application/json"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Download resolves an asset by registry id, registry name or local file
// and loads it for export. The download is audited before the data is read.
func (as *AssetService) Download(ctx context.Context, nameOrID, format string) (*Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = FormatCSV
	case FormatCSV, FormatJSON, FormatExcel:
	default:
		return nil, invalid("Invalid format")
	}

	entry, err := as.registered(parseAssetID(nameOrID), nameOrID)
	if err != nil {
		return nil, err
	}
	name := nameOrID
	var file string
	if entry != nil {
		name = entry.Name
	} else {
		var ok bool
		if file, ok = storage.Resolve(as.stores.DataDir, nameOrID); !ok {
			return nil, ErrAssetNotFound
		}
	}
	as.auditSvc.Record(model.UserAdmin, model.ActionDownloadAsset, name,
		fmt.Sprintf("Exported/Downloaded asset %s in format %s", name, format))

	exp := &Export{Name: name, Format: format}
	switch {
	case isBucket(entry):
		exp.Links, err = as.presign(ctx, entry.Name)
	case entry != nil:
		exp.table, err = as.loadTable(ctx, entry)
	default:
		exp.Name = strings.TrimSuffix(name, fileExt(name))
		exp.table, err = storage.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func fileExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

func (as *AssetService) presign(ctx context.Context, bucket string) ([]PresignedLink, error) {
	b, err := as.buckets()
	if err != nil {
		return nil, err
	}
	objects, _, err := b.List(ctx, bucket, 0, maxLinks)
	if errors.Is(err, storage.ErrNoSuchBucket) || (err == nil && len(objects) == 0) {
		return nil, fmt.Errorf("%w: bucket %s is empty or not found", ErrAssetNotFound, bucket)
	}
	if err != nil {
		return nil, err
	}
	links := make([]PresignedLink, 0, len(objects))
	for _, o := range objects {
		u, err := b.Presign(ctx, bucket, o.Key, presignExpiry)
		if err != nil {
			return nil, err
		}
		links = append(links, PresignedLink{Key: o.Key, URL: u})
	}
	return links, nil
}

func (as *AssetService) loadTable(ctx context.Context, entry *model.SyncedTable) (*storage.Table, error) {
	ref, err := as.tableFor(ctx, entry.Name, entry)
	if errors.Is(err, ErrTableNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	cols, err := ref.columns()
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := ref.db.Raw("SELECT * FROM ?", ref.ident()).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		normalize(row)
	}
	return &storage.Table{Columns: columnNames(cols), Rows: rows}, nil
}

// Write encodes the exported rows in the requested format.
func (e *Export) Write(w io.Writer) error {
	if e.table == nil {
		return errors.New("export has no rows to write")
	}
	switch e.Format {
	case FormatJSON:
		rows := e.table.Rows
		if rows == nil {
			rows = []map[string]any{}
		}
		return sonic.ConfigStd.NewEncoder(w).Encode(rows)
	case FormatExcel:
		return writeExcel(w, e.table)
	}
	return writeCSV(w, e.table)
}

func writeCSV(w io.Writer, t *storage.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = cell(row[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeExcel(w io.Writer, t *storage.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for i, col := range t.Columns {
		name, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, col); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheet, name, name, header)
	}
	for r, row := range t.Rows {
		for i, col := range t.Columns {
			name, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, name, row[col]); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.DateTime)
	}
	return fmt.Sprint(v)
}

// normalize byte columns become strings so they encode as text
func normalize(row map[string]any) {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
}

func columnNames(cols []column) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.name)
	}
	return names
}
