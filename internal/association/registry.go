// Package association implements has-many-polymorphic associations on top of
// gorm: one owner model linked, through a single join table, to records of
// several unrelated member models treated as one named collection.
//
// Associations are declared once at program initialisation with
// Registry.Register. Per-instance state lives in Collection (owner side) and
// Reverse (member side); links are only ever appended by an explicit Flush or
// Save and are removed when an owner or member record is deleted through gorm.
package association

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	apperrors "has-many-polymorphic/internal/errors"
	"has-many-polymorphic/internal/logger"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	pluginName       = "polymorphic"
	cascadeCallback  = "polymorphic:cascade"
	captureCallback  = "polymorphic:capture_types"
	retypeCallback   = "polymorphic:retype_links"
	stiDiscriminator = "type"
)

// Registry holds every registered polymorphic association of one database
// handle. It is a gorm plugin: deleting a registered owner or member record
// removes its link rows in the same transaction, and changing a member's
// "type" column rewrites the type of its links.
type Registry struct {
	db        *gorm.DB
	validator *validator.Validate
	cache     *sync.Map

	mu           sync.RWMutex
	associations map[string]*Association
	order        []string
}

// Ensure Registry implements gorm.Plugin
var _ gorm.Plugin = (*Registry)(nil)

// NewRegistry creates a registry and installs its delete and update callbacks on db.
func NewRegistry(db *gorm.DB, validate *validator.Validate) (*Registry, error) {
	if validate == nil {
		validate = validator.New()
	}
	r := &Registry{
		db:           db,
		validator:    validate,
		cache:        &sync.Map{},
		associations: make(map[string]*Association),
	}
	if err := db.Use(r); err != nil {
		return nil, fmt.Errorf("install %s plugin: %w", pluginName, err)
	}
	return r, nil
}

// Name implements gorm.Plugin
func (r *Registry) Name() string {
	return pluginName
}

// Initialize implements gorm.Plugin
func (r *Registry) Initialize(db *gorm.DB) error {
	err := db.Callback().Delete().
		After("gorm:begin_transaction").
		Before("gorm:delete").
		Register(cascadeCallback, r.cascade)
	if err != nil {
		return err
	}
	err = db.Callback().Update().
		After("gorm:begin_transaction").
		Before("gorm:update").
		Register(captureCallback, r.captureTypes)
	if err != nil {
		return err
	}
	return db.Callback().Update().
		After("gorm:update").
		Before("gorm:commit_or_rollback_transaction").
		Register(retypeCallback, r.retypeLinks)
}

// Register validates def and builds its association. Registering the same
// name twice for one owner replaces the earlier association.
func (r *Registry) Register(def Definition) (*Association, error) {
	if len(def.Members) == 0 {
		return nil, apperrors.ErrNoMemberTypes
	}
	if err := r.validator.Struct(def); err != nil {
		return nil, apperrors.NewConfigurationErrorf("invalid association definition %q: %v", def.Name, err)
	}

	a, err := r.build(def)
	if err != nil {
		return nil, err
	}

	key := a.owner.Table + "." + a.name
	r.mu.Lock()
	if _, exists := r.associations[key]; exists {
		logger.WithAssociation(context.Background(), a.owner.Table, a.name).
			Warnf("association %s re-registered, replacing the previous definition", key)
	} else {
		r.order = append(r.order, key)
	}
	r.associations[key] = a
	r.mu.Unlock()

	logger.WithAssociation(context.Background(), a.owner.Table, a.name).WithFields(map[string]interface{}{
		"through": a.through.Table,
		"members": a.MemberTypes(),
	}).Debugf("registered polymorphic association")
	return a, nil
}

// Lookup returns the association registered under name for owner's type.
func (r *Registry) Lookup(owner interface{}, name string) (*Association, error) {
	s, err := r.parse(owner)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.associations[s.Table+"."+name]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", s.Table, name, apperrors.ErrAssociationNotFound)
	}
	return a, nil
}

// Associations returns all registered associations in registration order.
func (r *Registry) Associations() []*Association {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Association, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.associations[key])
	}
	return out
}

// Migrate runs Association.Migrate for every registered association.
func (r *Registry) Migrate(ctx context.Context) error {
	for _, a := range r.Associations() {
		if err := a.Migrate(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) parse(model interface{}) (*schema.Schema, error) {
	if model == nil {
		return nil, apperrors.NewConfigurationError("model must not be nil")
	}
	s, err := schema.Parse(model, r.cache, r.db.NamingStrategy)
	if err != nil {
		return nil, apperrors.NewConfigurationErrorf("parse %T: %v", model, err)
	}
	return s, nil
}

func (r *Registry) build(def Definition) (*Association, error) {
	owner, err := r.parse(def.Owner)
	if err != nil {
		return nil, err
	}
	if owner.PrioritizedPrimaryField == nil {
		return nil, apperrors.NewConfigurationErrorf("owner %s must have a single primary key", owner.Name)
	}
	through, err := r.parse(def.Through)
	if err != nil {
		return nil, err
	}

	namer := r.db.NamingStrategy
	ownerColumn, typeColumn, idColumn := columnNames(namer, owner.Name, def.Name)
	a := &Association{
		db:            r.db,
		name:          def.Name,
		owner:         owner,
		through:       through,
		ownerAccessor: def.OwnerAccessor,
		indexName:     indexName(through.Table, roleName(namer, def.Name)),
	}
	if a.ownerAccessor == "" {
		a.ownerAccessor = owner.Table
	}

	if a.ownerField, err = throughColumn(through, ownerColumn); err != nil {
		return nil, err
	}
	if a.typeField, err = throughColumn(through, typeColumn); err != nil {
		return nil, err
	}
	if a.typeField.FieldType.Kind() != reflect.String {
		return nil, apperrors.NewConfigurationErrorf("%s.%s must be a string column", through.Table, typeColumn)
	}
	if a.idField, err = throughColumn(through, idColumn); err != nil {
		return nil, err
	}
	if err := assignable(owner.PrioritizedPrimaryField, a.ownerField); err != nil {
		return nil, err
	}

	names := make(map[string]bool)
	accessors := map[string]bool{def.Name: true}
	models := make(map[reflect.Type]bool)
	for _, m := range def.Members {
		s, err := r.parse(m.Model)
		if err != nil {
			return nil, err
		}
		if s.PrioritizedPrimaryField == nil {
			return nil, apperrors.NewConfigurationErrorf("member %s must have a single primary key", s.Name)
		}
		if err := assignable(s.PrioritizedPrimaryField, a.idField); err != nil {
			return nil, err
		}
		mt := &memberType{name: m.Name, accessor: m.Accessor, schema: s}
		if mt.name == "" {
			mt.name = s.Name
		}
		if mt.accessor == "" {
			mt.accessor = s.Table
		}
		switch {
		case models[s.ModelType]:
			return nil, apperrors.NewConfigurationErrorf("member type %s declared twice", s.Name)
		case names[mt.name]:
			return nil, apperrors.NewConfigurationErrorf("member discriminator %q declared twice", mt.name)
		case accessors[mt.accessor]:
			return nil, apperrors.NewConfigurationErrorf("accessor %q of %s collides with another accessor", mt.accessor, s.Name)
		}
		models[s.ModelType], names[mt.name], accessors[mt.accessor] = true, true, true

		if f := s.LookUpField(stiDiscriminator); f != nil && f.FieldType.Kind() == reflect.String {
			mt.sti = f
		}
		a.members = append(a.members, mt)
	}
	return a, nil
}

func throughColumn(through *schema.Schema, column string) (*schema.Field, error) {
	f := through.LookUpField(column)
	if f == nil || f.DBName != column {
		return nil, apperrors.NewConfigurationErrorf("through table %s has no column %s", through.Table, column)
	}
	return f, nil
}

func assignable(pk, column *schema.Field) error {
	if pk.FieldType.AssignableTo(column.FieldType) || pk.FieldType.ConvertibleTo(column.FieldType) {
		return nil
	}
	return apperrors.NewConfigurationErrorf("%s.%s (%s) cannot hold %s.%s (%s)",
		column.Schema.Table, column.DBName, column.FieldType, pk.Schema.Name, pk.DBName, pk.FieldType)
}
