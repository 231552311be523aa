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

// Reverse is the owner collection of one member instance, e.g. bear.zoos.
// Owners added here are linked by Flush or Save. A Reverse is not safe for
// concurrent use.
type Reverse struct {
	assoc   *Association
	kind    *memberType
	member  interface{}
	rv      reflect.Value
	pending []interface{}
}

// Member returns the bound member instance.
func (r *Reverse) Member() interface{} { return r.member }

// Accessor returns the collection name, e.g. "zoos".
func (r *Reverse) Accessor() string { return r.assoc.ownerAccessor }

// Add queues owners to be linked to the member. Owners must have a primary key.
func (r *Reverse) Add(owners ...interface{}) error {
	for _, owner := range owners {
		id, err := r.assoc.ownerID(context.Background(), owner)
		if err != nil {
			return err
		}
		if r.queued(id) {
			continue
		}
		r.pending = append(r.pending, owner)
	}
	return nil
}

func (r *Reverse) queued(id interface{}) bool {
	for _, owner := range r.pending {
		if other, _ := r.assoc.ownerID(context.Background(), owner); fmt.Sprint(other) == fmt.Sprint(id) {
			return true
		}
	}
	return false
}

// Pending returns the owners queued since the last flush or reload.
func (r *Reverse) Pending() []interface{} {
	out := make([]interface{}, len(r.pending))
	copy(out, r.pending)
	return out
}

// Reset drops every queued owner without touching storage.
func (r *Reverse) Reset() {
	r.pending = nil
}

// Owners loads the persisted owners of the member into dest, a pointer to a
// slice of the owner type or of pointers to it, followed by queued owners.
func (r *Reverse) Owners(ctx context.Context, dest interface{}) error {
	owner := r.assoc.owner
	if err := checkDest(dest, owner.ModelType); err != nil {
		return err
	}

	slice := reflect.ValueOf(dest).Elem()
	slice.Set(slice.Slice(0, 0))
	if memberID, zero := r.kind.schema.PrioritizedPrimaryField.ValueOf(ctx, r.rv); !zero {
		if err := r.assoc.findOwners(r.assoc.db.WithContext(ctx), memberID, r.kind.roleTypes(ctx, r.rv), dest); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		id, _ := owner.PrioritizedPrimaryField.ValueOf(ctx, reflect.Indirect(slice.Index(i)))
		seen[fmt.Sprint(id)] = true
	}
	for _, o := range r.pending {
		id, _ := r.assoc.ownerID(ctx, o)
		if seen[fmt.Sprint(id)] {
			continue
		}
		seen[fmt.Sprint(id)] = true
		appendValue(slice, o)
	}
	return nil
}

// Flush links every queued owner in one transaction and returns the number
// of rows created. The queue is cleared once the transaction commits.
func (r *Reverse) Flush(ctx context.Context) (int64, error) {
	var created int64
	err := r.assoc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = r.FlushTx(tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	r.pending = nil
	return created, nil
}

// FlushTx links the queued owners using tx. The queue is kept; call Reset
// after the surrounding transaction commits.
func (r *Reverse) FlushTx(tx *gorm.DB) (int64, error) {
	ctx := tx.Statement.Context
	memberID, zero := r.kind.schema.PrioritizedPrimaryField.ValueOf(ctx, r.rv)
	if zero {
		return 0, apperrors.ErrMemberNotPersisted
	}
	roleType := r.kind.effectiveType(ctx, r.rv)

	var created int64
	for _, owner := range r.pending {
		ownerID, err := r.assoc.ownerID(ctx, owner)
		if err != nil {
			return created, err
		}
		ok, err := r.assoc.insert(tx, ownerID, roleType, memberID)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	logger.WithAssociation(ctx, r.assoc.owner.Table, r.assoc.name).WithFields(map[string]interface{}{
		"member":    roleType,
		"member_id": memberID,
		"created":   created,
	}).Debugf("flushed member links")
	return created, nil
}

// Save saves the member and flushes its queued owners in one transaction.
func (r *Reverse) Save(ctx context.Context) (int64, error) {
	var created int64
	err := r.assoc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(r.member).Error; err != nil {
			return fmt.Errorf("save %s: %w", r.kind.name, err)
		}
		var err error
		created, err = r.FlushTx(tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	r.pending = nil
	return created, nil
}

// Reload drops every queued owner and re-reads the member from storage.
func (r *Reverse) Reload(ctx context.Context) error {
	r.pending = nil
	pkField := r.kind.schema.PrioritizedPrimaryField
	id, zero := pkField.ValueOf(ctx, r.rv)
	if zero {
		return apperrors.ErrMemberNotPersisted
	}
	pk := clause.Column{Table: r.kind.schema.Table, Name: pkField.DBName}
	if err := r.assoc.db.WithContext(ctx).Where("? = ?", pk, id).Take(r.member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError(r.kind.name)
		}
		return fmt.Errorf("reload %s: %w", r.kind.name, err)
	}
	return nil
}

// OwnersOf returns the owners of r as a typed slice.
func OwnersOf[T any](ctx context.Context, r *Reverse) ([]*T, error) {
	var out []*T
	if err := r.Owners(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
