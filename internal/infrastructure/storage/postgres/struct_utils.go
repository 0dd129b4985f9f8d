package postgres

import (
	"reflect"
	"sync"
)

// columnMeta is the cached "db" tag layout of a struct type.
type columnMeta struct {
	columns  []string
	fields   []int // index of the field behind columns[i]
	embedded []int
}

var columnCache sync.Map // map[reflect.Type]*columnMeta

func metaOf(t reflect.Type) *columnMeta {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.(*columnMeta)
	}

	meta := &columnMeta{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				meta.embedded = append(meta.embedded, i)
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.columns = append(meta.columns, tag)
			meta.fields = append(meta.fields, i)
		}
	}

	columnCache.Store(t, meta)
	return meta
}

// ExtractDBColumns lists the columns of T from its "db" tags, embedded
// structs (entity.Catalog, entity.Document) first.
//
// Usage:
//
//	columns := ExtractDBColumns[item.Item]()
//	// ["deletion_mark", "version", "created_at", "updated_at", "code", "name", "unit", ...]
func ExtractDBColumns[T any]() []string {
	return columnsOf(reflect.TypeOf((*T)(nil)).Elem())
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	meta := metaOf(t)
	var cols []string
	for _, idx := range meta.embedded {
		cols = append(cols, columnsOf(t.Field(idx).Type)...)
	}
	return append(cols, meta.columns...)
}

// StructToMap converts a struct to a column -> value map using "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metaOf(rv.Type())
	res := make(map[string]any, len(meta.columns))
	for _, idx := range meta.embedded {
		for k, val := range StructToMap(rv.Field(idx).Interface()) {
			res[k] = val
		}
	}
	for i, col := range meta.columns {
		res[col] = rv.Field(meta.fields[i]).Interface()
	}
	return res
}
