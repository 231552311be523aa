package association

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	apperrors "has-many-polymorphic/internal/errors"
	"has-many-polymorphic/internal/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one entry of a merged collection.
type Record struct {
	// Type is the type name the link is written with.
	Type string
	// ID is the member's primary key.
	ID interface{}
	// Value is a pointer to the member model.
	Value interface{}
	// Persisted is true when a link row for the member already exists.
	Persisted bool

	kind *memberType
}

func (r Record) key() string {
	return r.kind.name + ":" + fmt.Sprint(r.ID)
}

// Collection is the merged collection of one owner instance: members added
// in memory but not flushed yet, merged on read with the persisted members
// of every member type. A Collection is not safe for concurrent use.
type Collection struct {
	assoc   *Association
	owner   interface{}
	rv      reflect.Value
	pending []Record
}

// Owner returns the bound owner instance.
func (c *Collection) Owner() interface{} { return c.owner }

// Add queues members of any registered type. A member already queued is
// ignored. Members must have a primary key.
func (c *Collection) Add(members ...interface{}) error {
	for _, member := range members {
		rec, err := c.assoc.record(context.Background(), member)
		if err != nil {
			return err
		}
		c.push(rec)
	}
	return nil
}

// Append queues members through one filtered collection, e.g.
// Append("bears", bear). Every member must be of that collection's type.
func (c *Collection) Append(accessor string, members ...interface{}) error {
	m, err := c.assoc.accessor(accessor)
	if err != nil {
		return err
	}
	for _, member := range members {
		rec, err := c.assoc.record(context.Background(), member)
		if err != nil {
			return err
		}
		if rec.kind != m {
			return fmt.Errorf("%s is a %s: %w", accessor, rec.kind.name, apperrors.ErrAccessorMismatch)
		}
		c.push(rec)
	}
	return nil
}

func (c *Collection) push(rec Record) {
	for _, p := range c.pending {
		if p.key() == rec.key() {
			return
		}
	}
	c.pending = append(c.pending, rec)
}

// Pending returns the members queued since the last flush or reload.
func (c *Collection) Pending() []Record {
	out := make([]Record, len(c.pending))
	copy(out, c.pending)
	return out
}

// Reset drops every queued member without touching storage.
func (c *Collection) Reset() {
	c.pending = nil
}

// Records returns the merged collection: the persisted members of each type in
// declaration order followed by queued members that are not persisted yet.
func (c *Collection) Records(ctx context.Context) ([]Record, error) {
	out := make([]Record, 0, len(c.pending))
	seen := make(map[string]bool)

	ownerID, zero := c.assoc.owner.PrioritizedPrimaryField.ValueOf(ctx, c.rv)
	if !zero {
		db := c.assoc.db.WithContext(ctx)
		for _, m := range c.assoc.members {
			rows := reflect.New(reflect.SliceOf(reflect.PointerTo(m.schema.ModelType)))
			if err := c.assoc.findMembers(db, m, ownerID, rows.Interface()); err != nil {
				return nil, err
			}
			for i := 0; i < rows.Elem().Len(); i++ {
				item := rows.Elem().Index(i)
				id, _ := m.schema.PrioritizedPrimaryField.ValueOf(ctx, item.Elem())
				rec := Record{Type: m.effectiveType(ctx, item.Elem()), ID: id, Value: item.Interface(), Persisted: true, kind: m}
				if seen[rec.key()] {
					continue
				}
				seen[rec.key()] = true
				out = append(out, rec)
			}
		}
	}

	for _, rec := range c.pending {
		if seen[rec.key()] {
			continue
		}
		seen[rec.key()] = true
		out = append(out, rec)
	}
	return out, nil
}

// Values returns the member pointers of Records.
func (c *Collection) Values(ctx context.Context) ([]interface{}, error) {
	records, err := c.Records(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(records))
	for i, rec := range records {
		out[i] = rec.Value
	}
	return out, nil
}

// Len returns the size of the merged collection.
func (c *Collection) Len(ctx context.Context) (int, error) {
	records, err := c.Records(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Find loads one filtered collection into dest, a pointer to a slice of the
// member type or of pointers to it. Queued members of that type are appended
// after the persisted ones.
func (c *Collection) Find(ctx context.Context, accessor string, dest interface{}) error {
	m, err := c.assoc.accessor(accessor)
	if err != nil {
		return err
	}
	if err := checkDest(dest, m.schema.ModelType); err != nil {
		return err
	}

	slice := reflect.ValueOf(dest).Elem()
	slice.Set(slice.Slice(0, 0))
	if ownerID, zero := c.assoc.owner.PrioritizedPrimaryField.ValueOf(ctx, c.rv); !zero {
		if err := c.assoc.findMembers(c.assoc.db.WithContext(ctx), m, ownerID, dest); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		id, _ := m.schema.PrioritizedPrimaryField.ValueOf(ctx, reflect.Indirect(slice.Index(i)))
		seen[fmt.Sprint(id)] = true
	}
	for _, rec := range c.pending {
		if rec.kind != m || seen[fmt.Sprint(rec.ID)] {
			continue
		}
		appendValue(slice, rec.Value)
	}
	return nil
}

// Flush writes a link for every queued member in one transaction and returns
// the number of rows created. Existing links are left alone. The queue is
// cleared once the transaction commits.
func (c *Collection) Flush(ctx context.Context) (int64, error) {
	var created int64
	err := c.assoc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = c.FlushTx(tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	c.pending = nil
	return created, nil
}

// FlushTx writes the queued links using tx. The queue is kept; call Reset
// after the surrounding transaction commits.
func (c *Collection) FlushTx(tx *gorm.DB) (int64, error) {
	ctx := tx.Statement.Context
	ownerID, zero := c.assoc.owner.PrioritizedPrimaryField.ValueOf(ctx, c.rv)
	if zero {
		return 0, apperrors.ErrOwnerNotPersisted
	}

	var created int64
	for _, rec := range c.pending {
		ok, err := c.assoc.insert(tx, ownerID, rec.Type, rec.ID)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	logger.WithAssociation(ctx, c.assoc.owner.Table, c.assoc.name).WithFields(map[string]interface{}{
		"owner_id": ownerID,
		"pending":  len(c.pending),
		"created":  created,
	}).Debugf("flushed owner links")
	return created, nil
}

// Save saves the owner and flushes its queued links in one transaction.
func (c *Collection) Save(ctx context.Context) (int64, error) {
	var created int64
	err := c.assoc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(c.owner).Error; err != nil {
			return fmt.Errorf("save %s: %w", c.assoc.owner.Name, err)
		}
		var err error
		created, err = c.FlushTx(tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	c.pending = nil
	return created, nil
}

// Reload drops every queued member and re-reads the owner from storage.
func (c *Collection) Reload(ctx context.Context) error {
	c.pending = nil
	id, zero := c.assoc.owner.PrioritizedPrimaryField.ValueOf(ctx, c.rv)
	if zero {
		return apperrors.ErrOwnerNotPersisted
	}
	pk := clause.Column{Table: c.assoc.owner.Table, Name: c.assoc.owner.PrioritizedPrimaryField.DBName}
	if err := c.assoc.db.WithContext(ctx).Where("? = ?", pk, id).Take(c.owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError(c.assoc.owner.Name)
		}
		return fmt.Errorf("reload %s: %w", c.assoc.owner.Name, err)
	}
	return nil
}

// Members returns one filtered collection of c as a typed slice.
func Members[T any](ctx context.Context, c *Collection, accessor string) ([]*T, error) {
	var out []*T
	if err := c.Find(ctx, accessor, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkDest verifies dest is a pointer to []T or []*T.
func checkDest(dest interface{}, model reflect.Type) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return apperrors.ErrInvalidDestination
	}
	elem := rv.Elem().Type().Elem()
	if elem == model || (elem.Kind() == reflect.Ptr && elem.Elem() == model) {
		return nil
	}
	return fmt.Errorf("%s is not %s: %w", elem, model, apperrors.ErrInvalidDestination)
}

// appendValue appends ptr, a pointer to the slice's model, to slice.
func appendValue(slice reflect.Value, ptr interface{}) {
	v := reflect.ValueOf(ptr)
	if slice.Type().Elem().Kind() != reflect.Ptr {
		v = v.Elem()
	}
	slice.Set(reflect.Append(slice, v))
}
