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
	"gorm.io/gorm/schema"
)

// Association is one registered has-many-polymorphic association. It is
// immutable after registration and safe for concurrent use.
type Association struct {
	db            *gorm.DB
	name          string
	owner         *schema.Schema
	through       *schema.Schema
	ownerAccessor string
	ownerField    *schema.Field // <owner>_id on the through table
	typeField     *schema.Field // <singular name>_type
	idField       *schema.Field // <singular name>_id
	indexName     string
	members       []*memberType
}

type memberType struct {
	name     string
	accessor string
	schema   *schema.Schema
	sti      *schema.Field
}

// effectiveType is the STI discriminator when present, else the registered name.
func (m *memberType) effectiveType(ctx context.Context, rv reflect.Value) string {
	if m.sti != nil {
		if v, zero := m.sti.ValueOf(ctx, rv); !zero {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return m.name
}

// roleTypes lists the discriminators a link to rv may have been written with.
func (m *memberType) roleTypes(ctx context.Context, rv reflect.Value) []string {
	if t := m.effectiveType(ctx, rv); t != m.name {
		return []string{m.name, t}
	}
	return []string{m.name}
}

// Name returns the association label, e.g. "animals".
func (a *Association) Name() string { return a.name }

// OwnerAccessor returns the reverse collection name on member types, e.g. "zoos".
func (a *Association) OwnerAccessor() string { return a.ownerAccessor }

// ThroughTable returns the join table name.
func (a *Association) ThroughTable() string { return a.through.Table }

// Columns returns the owner, type and id column names of the join table.
func (a *Association) Columns() (owner, roleType, roleID string) {
	return a.ownerField.DBName, a.typeField.DBName, a.idField.DBName
}

// Accessors returns the owner-side filtered collection names in declaration order.
func (a *Association) Accessors() []string {
	out := make([]string, 0, len(a.members))
	for _, m := range a.members {
		out = append(out, m.accessor)
	}
	return out
}

// MemberTypes returns the registered discriminators in declaration order.
func (a *Association) MemberTypes() []string {
	out := make([]string, 0, len(a.members))
	for _, m := range a.members {
		out = append(out, m.name)
	}
	return out
}

// Migrate creates the owner, member and through tables and the unique
// (owner, type, id) index on the through table.
func (a *Association) Migrate(ctx context.Context) error {
	db := a.db.WithContext(ctx)
	tables := []interface{}{newModel(a.owner), newModel(a.through)}
	for _, m := range a.members {
		tables = append(tables, newModel(m.schema))
	}
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto-migrate %s: %w", a.name, err)
	}

	throughModel := newModel(a.through)
	if db.Migrator().HasIndex(throughModel, a.indexName) {
		return nil
	}
	err := db.Exec("CREATE UNIQUE INDEX ? ON ? (?, ?, ?)",
		clause.Column{Name: a.indexName},
		clause.Table{Name: a.through.Table},
		clause.Column{Name: a.ownerField.DBName},
		clause.Column{Name: a.typeField.DBName},
		clause.Column{Name: a.idField.DBName},
	).Error
	if err != nil {
		return fmt.Errorf("create index %s: %w", a.indexName, err)
	}
	logger.WithAssociation(ctx, a.owner.Table, a.name).Debugf("created unique index %s", a.indexName)
	return nil
}

// TypeOf returns the type name a link to member is written with: the value of
// its "type" column when the member uses single-table inheritance, otherwise
// the registered discriminator.
func (a *Association) TypeOf(member interface{}) (string, error) {
	m, rv, err := a.member(member)
	if err != nil {
		return "", err
	}
	return m.effectiveType(context.Background(), rv), nil
}

// Bind returns the merged collection of one owner instance.
func (a *Association) Bind(owner interface{}) (*Collection, error) {
	rv, err := a.ownerValue(owner)
	if err != nil {
		return nil, err
	}
	return &Collection{assoc: a, owner: owner, rv: rv}, nil
}

// BindMember returns the reverse collection of one member instance.
func (a *Association) BindMember(member interface{}) (*Reverse, error) {
	m, rv, err := a.member(member)
	if err != nil {
		return nil, err
	}
	return &Reverse{assoc: a, kind: m, member: member, rv: rv}, nil
}

// Link inserts the link between owner and member unless it already exists.
// It reports whether a row was created.
func (a *Association) Link(ctx context.Context, owner, member interface{}) (bool, error) {
	ownerID, err := a.ownerID(ctx, owner)
	if err != nil {
		return false, err
	}
	rec, err := a.record(ctx, member)
	if err != nil {
		return false, err
	}
	return a.insert(a.db.WithContext(ctx), ownerID, rec.Type, rec.ID)
}

// Exists reports whether owner and member are linked.
func (a *Association) Exists(ctx context.Context, owner, member interface{}) (bool, error) {
	ownerID, err := a.ownerID(ctx, owner)
	if err != nil {
		return false, err
	}
	m, rv, err := a.member(member)
	if err != nil {
		return false, err
	}
	memberID, zero := m.schema.PrioritizedPrimaryField.ValueOf(ctx, rv)
	if zero {
		return false, apperrors.ErrMemberNotPersisted
	}

	var count int64
	err = a.db.WithContext(ctx).Model(newModel(a.through)).
		Where("? = ? AND ? = ? AND ? IN ?",
			clause.Column{Name: a.ownerField.DBName}, ownerID,
			clause.Column{Name: a.idField.DBName}, memberID,
			clause.Column{Name: a.typeField.DBName}, m.roleTypes(ctx, rv),
		).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count %s links: %w", a.through.Table, err)
	}
	return count > 0, nil
}

// Filtered loads the persisted members of one type linked to owner into dest,
// a pointer to a slice of that member type (or of pointers to it).
func (a *Association) Filtered(ctx context.Context, owner interface{}, accessor string, dest interface{}) error {
	m, err := a.accessor(accessor)
	if err != nil {
		return err
	}
	if err := checkDest(dest, m.schema.ModelType); err != nil {
		return err
	}
	ownerID, err := a.ownerID(ctx, owner)
	if err != nil {
		return err
	}
	return a.findMembers(a.db.WithContext(ctx), m, ownerID, dest)
}

// Owners loads the persisted owners linked to member into dest, a pointer to a
// slice of the owner type (or of pointers to it).
func (a *Association) Owners(ctx context.Context, member interface{}, dest interface{}) error {
	if err := checkDest(dest, a.owner.ModelType); err != nil {
		return err
	}
	m, rv, err := a.member(member)
	if err != nil {
		return err
	}
	memberID, zero := m.schema.PrioritizedPrimaryField.ValueOf(ctx, rv)
	if zero {
		return apperrors.ErrMemberNotPersisted
	}
	return a.findOwners(a.db.WithContext(ctx), memberID, m.roleTypes(ctx, rv), dest)
}

// Links loads the through rows of owner into dest.
func (a *Association) Links(ctx context.Context, owner interface{}, dest interface{}) error {
	if err := checkDest(dest, a.through.ModelType); err != nil {
		return err
	}
	ownerID, err := a.ownerID(ctx, owner)
	if err != nil {
		return err
	}
	err = a.db.WithContext(ctx).
		Where("? = ?", clause.Column{Name: a.ownerField.DBName}, ownerID).
		Find(dest).Error
	if err != nil {
		return fmt.Errorf("load %s links: %w", a.through.Table, err)
	}
	return nil
}

// MemberLinks loads the through rows that reference member into dest.
func (a *Association) MemberLinks(ctx context.Context, member interface{}, dest interface{}) error {
	if err := checkDest(dest, a.through.ModelType); err != nil {
		return err
	}
	m, rv, err := a.member(member)
	if err != nil {
		return err
	}
	memberID, zero := m.schema.PrioritizedPrimaryField.ValueOf(ctx, rv)
	if zero {
		return apperrors.ErrMemberNotPersisted
	}
	err = a.db.WithContext(ctx).
		Where("? = ? AND ? IN ?",
			clause.Column{Name: a.idField.DBName}, memberID,
			clause.Column{Name: a.typeField.DBName}, m.roleTypes(ctx, rv),
		).Find(dest).Error
	if err != nil {
		return fmt.Errorf("load %s links: %w", a.through.Table, err)
	}
	return nil
}

// Target loads the member a through row points at. The returned value is a
// pointer to a new instance of the member model.
func (a *Association) Target(ctx context.Context, link interface{}) (interface{}, error) {
	rv := reflect.Indirect(reflect.ValueOf(link))
	if !rv.IsValid() || rv.Type() != a.through.ModelType {
		return nil, apperrors.NewValidationError("link", fmt.Sprintf("expected %s, got %T", a.through.Name, link))
	}
	roleType, _ := a.typeField.ValueOf(ctx, rv)
	roleID, zero := a.idField.ValueOf(ctx, rv)
	if zero {
		return nil, apperrors.NewValidationError("link", a.idField.DBName+" is empty")
	}

	db := a.db.WithContext(ctx)
	name := fmt.Sprint(roleType)
	for _, m := range a.members {
		if m.name != name {
			continue
		}
		return a.loadMember(db, m, roleID, "")
	}
	// Not a registered discriminator: look for an STI subtype with that name.
	for _, m := range a.members {
		if m.sti == nil {
			continue
		}
		target, err := a.loadMember(db, m, roleID, name)
		if apperrors.IsNotFound(err) {
			continue
		}
		return target, err
	}
	return nil, fmt.Errorf("%s: %w", name, apperrors.ErrMemberTypeNotRegistered)
}

func (a *Association) loadMember(db *gorm.DB, m *memberType, id interface{}, sti string) (interface{}, error) {
	target := newModel(m.schema)
	q := db.Where("? = ?", clause.Column{Table: m.schema.Table, Name: m.schema.PrioritizedPrimaryField.DBName}, id)
	if sti != "" {
		q = q.Where("? = ?", clause.Column{Table: m.schema.Table, Name: m.sti.DBName}, sti)
	}
	if err := q.Take(target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(m.name)
		}
		return nil, fmt.Errorf("load %s: %w", m.name, err)
	}
	return target, nil
}

// findMembers selects the rows of m's table joined to owner's links.
func (a *Association) findMembers(db *gorm.DB, m *memberType, ownerID interface{}, dest interface{}) error {
	link, table := a.through.Table, m.schema.Table
	typeColumn := clause.Column{Table: link, Name: a.typeField.DBName}

	q := db.Select("?.*", clause.Table{Name: table}).
		Joins("JOIN ? ON ? = ?",
			clause.Table{Name: link},
			clause.Column{Table: link, Name: a.idField.DBName},
			clause.Column{Table: table, Name: m.schema.PrioritizedPrimaryField.DBName},
		).
		Where("? = ?", clause.Column{Table: link, Name: a.ownerField.DBName}, ownerID)
	if m.sti != nil {
		q = q.Where("(? = ? OR ? = ?)", typeColumn, m.name, typeColumn, clause.Column{Table: table, Name: m.sti.DBName})
	} else {
		q = q.Where("? = ?", typeColumn, m.name)
	}
	if err := q.Find(dest).Error; err != nil {
		return fmt.Errorf("load %s of %s: %w", m.accessor, a.owner.Table, err)
	}
	return nil
}

// findOwners selects the owner rows joined to links of one member.
func (a *Association) findOwners(db *gorm.DB, memberID interface{}, roleTypes []string, dest interface{}) error {
	link, table := a.through.Table, a.owner.Table
	err := db.Select("?.*", clause.Table{Name: table}).
		Joins("JOIN ? ON ? = ?",
			clause.Table{Name: link},
			clause.Column{Table: link, Name: a.ownerField.DBName},
			clause.Column{Table: table, Name: a.owner.PrioritizedPrimaryField.DBName},
		).
		Where("? = ? AND ? IN ?",
			clause.Column{Table: link, Name: a.idField.DBName}, memberID,
			clause.Column{Table: link, Name: a.typeField.DBName}, roleTypes,
		).
		Find(dest).Error
	if err != nil {
		return fmt.Errorf("load %s: %w", a.ownerAccessor, err)
	}
	return nil
}

// insert writes one link row, ignoring a conflict with the unique index.
func (a *Association) insert(db *gorm.DB, ownerID interface{}, roleType string, roleID interface{}) (bool, error) {
	ctx := db.Statement.Context
	row := reflect.New(a.through.ModelType)
	if err := a.ownerField.Set(ctx, row.Elem(), ownerID); err != nil {
		return false, fmt.Errorf("set %s: %w", a.ownerField.DBName, err)
	}
	if err := a.typeField.Set(ctx, row.Elem(), roleType); err != nil {
		return false, fmt.Errorf("set %s: %w", a.typeField.DBName, err)
	}
	if err := a.idField.Set(ctx, row.Elem(), roleID); err != nil {
		return false, fmt.Errorf("set %s: %w", a.idField.DBName, err)
	}

	result := db.Clauses(a.onConflict()).Create(row.Interface())
	if result.Error != nil {
		return false, fmt.Errorf("insert %s link: %w", a.through.Table, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// onConflict names the unique (owner, type, id) columns so dialects that
// build the conflict target from them, such as the sqlserver MERGE, match on
// the link identity rather than the row's own primary key.
func (a *Association) onConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{
			{Name: a.ownerField.DBName},
			{Name: a.typeField.DBName},
			{Name: a.idField.DBName},
		},
		DoNothing: true,
	}
}

// retype moves the links of one member from one type name to another. A link
// that already exists under the new name is kept and the old one dropped.
func (a *Association) retype(db *gorm.DB, memberID interface{}, from, to string) error {
	ctx := db.Statement.Context
	idColumn := clause.Column{Name: a.idField.DBName}
	typeColumn := clause.Column{Name: a.typeField.DBName}

	links := reflect.New(reflect.SliceOf(reflect.PointerTo(a.through.ModelType)))
	if err := db.Where("? = ? AND ? = ?", idColumn, memberID, typeColumn, from).Find(links.Interface()).Error; err != nil {
		return fmt.Errorf("load %s links of %s: %w", a.through.Table, from, err)
	}
	if links.Elem().Len() == 0 {
		return nil
	}
	for i := 0; i < links.Elem().Len(); i++ {
		ownerID, _ := a.ownerField.ValueOf(ctx, links.Elem().Index(i).Elem())
		if _, err := a.insert(db, ownerID, to, memberID); err != nil {
			return err
		}
	}
	err := db.Where("? = ? AND ? = ?", idColumn, memberID, typeColumn, from).
		Delete(newModel(a.through)).Error
	if err != nil {
		return fmt.Errorf("delete %s links of %s: %w", a.through.Table, from, err)
	}

	logger.WithAssociation(ctx, a.owner.Table, a.name).WithFields(map[string]interface{}{
		"member_id": memberID,
		"from":      from,
		"to":        to,
		"links":     links.Elem().Len(),
	}).Debugf("retyped member links")
	return nil
}

// unlink deletes the links of a record being deleted, on whichever side of
// the association its type sits.
func (a *Association) unlink(db *gorm.DB, rv reflect.Value) error {
	ctx := db.Statement.Context
	if rv.Type() == a.owner.ModelType {
		if id, zero := a.owner.PrioritizedPrimaryField.ValueOf(ctx, rv); !zero {
			err := db.Where("? = ?", clause.Column{Name: a.ownerField.DBName}, id).
				Delete(newModel(a.through)).Error
			if err != nil {
				return fmt.Errorf("delete %s links of %s: %w", a.through.Table, a.owner.Name, err)
			}
		}
	}
	if m := a.memberByType(rv.Type()); m != nil {
		if id, zero := m.schema.PrioritizedPrimaryField.ValueOf(ctx, rv); !zero {
			err := db.Where("? = ? AND ? IN ?",
				clause.Column{Name: a.idField.DBName}, id,
				clause.Column{Name: a.typeField.DBName}, m.roleTypes(ctx, rv),
			).Delete(newModel(a.through)).Error
			if err != nil {
				return fmt.Errorf("delete %s links of %s: %w", a.through.Table, m.name, err)
			}
		}
	}
	return nil
}

func (a *Association) accessor(name string) (*memberType, error) {
	for _, m := range a.members {
		if m.accessor == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%s.%s: %w", a.owner.Table, name, apperrors.ErrAccessorNotFound)
}

func (a *Association) memberByType(t reflect.Type) *memberType {
	for _, m := range a.members {
		if m.schema.ModelType == t {
			return m
		}
	}
	return nil
}

// member resolves a pointer to a registered member model.
func (a *Association) member(value interface{}) (*memberType, reflect.Value, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, reflect.Value{}, apperrors.NewValidationError("member", fmt.Sprintf("expected a non-nil pointer, got %T", value))
	}
	rv = rv.Elem()
	m := a.memberByType(rv.Type())
	if m == nil {
		return nil, reflect.Value{}, fmt.Errorf("%s in %s.%s: %w", rv.Type(), a.owner.Table, a.name, apperrors.ErrMemberTypeNotRegistered)
	}
	return m, rv, nil
}

// record resolves a persisted member into its link identity.
func (a *Association) record(ctx context.Context, value interface{}) (Record, error) {
	m, rv, err := a.member(value)
	if err != nil {
		return Record{}, err
	}
	id, zero := m.schema.PrioritizedPrimaryField.ValueOf(ctx, rv)
	if zero {
		return Record{}, apperrors.ErrMemberNotPersisted
	}
	return Record{Type: m.effectiveType(ctx, rv), ID: id, Value: value, kind: m}, nil
}

func (a *Association) ownerValue(value interface{}) (reflect.Value, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, apperrors.NewValidationError("owner", fmt.Sprintf("expected a non-nil pointer, got %T", value))
	}
	rv = rv.Elem()
	if rv.Type() != a.owner.ModelType {
		return reflect.Value{}, fmt.Errorf("%s: %w", rv.Type(), apperrors.ErrOwnerTypeMismatch)
	}
	return rv, nil
}

func (a *Association) ownerID(ctx context.Context, owner interface{}) (interface{}, error) {
	rv, err := a.ownerValue(owner)
	if err != nil {
		return nil, err
	}
	id, zero := a.owner.PrioritizedPrimaryField.ValueOf(ctx, rv)
	if zero {
		return nil, apperrors.ErrOwnerNotPersisted
	}
	return id, nil
}

func newModel(s *schema.Schema) interface{} {
	return reflect.New(s.ModelType).Interface()
}
