package association

import (
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const capturedTypesKey = "polymorphic:captured_types"

// capturedType is the stored discriminator of one member row before an update.
type capturedType struct {
	assoc *Association
	kind  *memberType
	id    interface{}
	typ   string
}

// targets returns the associations modelType takes part in, as owner or member.
func (r *Registry) targets(modelType reflect.Type) []*Association {
	var out []*Association
	for _, a := range r.Associations() {
		if a.owner.ModelType == modelType || a.memberByType(modelType) != nil {
			out = append(out, a)
		}
	}
	return out
}

// cascade runs before gorm:delete and removes the link rows of every record
// the statement is about to delete, whether it carries the records or only
// conditions.
func (r *Registry) cascade(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	targets := r.targets(db.Statement.Schema.ModelType)
	if len(targets) == 0 {
		return
	}

	tx := db.Session(&gorm.Session{NewDB: true})
	records, err := affectedRows(tx, db.Statement)
	if err != nil {
		_ = db.AddError(err)
		return
	}
	for _, record := range records {
		for _, a := range targets {
			if err := a.unlink(tx, record); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	}
}

// captureTypes runs before gorm:update and remembers the stored discriminator
// of every single-table-inheritance member row the statement may change.
func (r *Registry) captureTypes(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	modelType := db.Statement.Schema.ModelType
	var kinds []capturedType
	for _, a := range r.Associations() {
		if m := a.memberByType(modelType); m != nil && m.sti != nil {
			kinds = append(kinds, capturedType{assoc: a, kind: m})
		}
	}
	if len(kinds) == 0 {
		return
	}

	ctx := db.Statement.Context
	records, err := affectedRows(db.Session(&gorm.Session{NewDB: true}), db.Statement)
	if err != nil {
		_ = db.AddError(err)
		return
	}
	var captured []capturedType
	for _, record := range records {
		for _, k := range kinds {
			id, _ := k.kind.schema.PrioritizedPrimaryField.ValueOf(ctx, record)
			k.id, k.typ = id, k.kind.effectiveType(ctx, record)
			captured = append(captured, k)
		}
	}
	if len(captured) > 0 {
		db.InstanceSet(capturedTypesKey, captured)
	}
}

// retypeLinks runs after gorm:update and moves the links of every member whose
// discriminator changed to the new type name.
func (r *Registry) retypeLinks(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	v, ok := db.InstanceGet(capturedTypesKey)
	if !ok {
		return
	}

	ctx := db.Statement.Context
	tx := db.Session(&gorm.Session{NewDB: true})
	for _, c := range v.([]capturedType) {
		row := newModel(c.kind.schema)
		pk := clause.Column{Table: c.kind.schema.Table, Name: c.kind.schema.PrioritizedPrimaryField.DBName}
		if err := tx.Where("? = ?", pk, c.id).Take(row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			_ = db.AddError(fmt.Errorf("reload %s: %w", c.kind.name, err))
			return
		}
		typ := c.kind.effectiveType(ctx, reflect.ValueOf(row).Elem())
		if typ == c.typ {
			continue
		}
		if err := c.assoc.retype(tx, c.id, c.typ, typ); err != nil {
			_ = db.AddError(err)
			return
		}
	}
}

// affectedRows loads the stored rows stmt is about to delete or update: the
// records it carries by primary key narrowed by its conditions, or every row
// matching its conditions when it carries none. Rows come from storage, so
// they hold discriminators the caller never loaded.
func affectedRows(tx *gorm.DB, stmt *gorm.Statement) ([]reflect.Value, error) {
	s := stmt.Schema
	pk := s.PrioritizedPrimaryField
	if pk == nil {
		return nil, nil
	}

	ids := primaryKeys(stmt, s)
	where, hasWhere := stmt.Clauses["WHERE"].Expression.(clause.Where)
	if len(ids) == 0 && !hasWhere && !stmt.AllowGlobalUpdate {
		// gorm refuses the statement itself
		return nil, nil
	}

	q := tx.Model(newModel(s))
	if len(ids) > 0 {
		q = q.Where("? IN ?", clause.Column{Table: s.Table, Name: pk.DBName}, ids)
	}
	if hasWhere {
		q = q.Clauses(where)
	}
	rows := reflect.New(reflect.SliceOf(reflect.PointerTo(s.ModelType)))
	if err := q.Find(rows.Interface()).Error; err != nil {
		return nil, fmt.Errorf("load %s rows: %w", s.Table, err)
	}

	out := make([]reflect.Value, rows.Elem().Len())
	for i := range out {
		out[i] = rows.Elem().Index(i).Elem()
	}
	return out, nil
}

// primaryKeys collects the non-zero primary keys of the records stmt carries.
func primaryKeys(stmt *gorm.Statement, s *schema.Schema) []interface{} {
	var ids []interface{}
	collect := func(v reflect.Value) {
		v = reflect.Indirect(v)
		if v.Kind() != reflect.Struct || v.Type() != s.ModelType {
			return
		}
		if id, zero := s.PrioritizedPrimaryField.ValueOf(stmt.Context, v); !zero {
			ids = append(ids, id)
		}
	}

	rv := reflect.Indirect(stmt.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			collect(rv.Index(i))
		}
	case reflect.Struct:
		collect(rv)
	}
	return ids
}
