package association

import (
	"github.com/jinzhu/inflection"
	"gorm.io/gorm/schema"
)

// Member declares one model type taking part in a polymorphic association.
type Member struct {
	// Model is a pointer to a zero value of the member model, e.g. &models.Bear{}.
	Model interface{} `validate:"-"`
	// Name is the discriminator written to the <name>_type column.
	// Defaults to the Go struct name ("Bear").
	Name string `validate:"omitempty,max=100"`
	// Accessor names the owner-side collection filtered to this type.
	// Defaults to the member table name ("bears").
	Accessor string `validate:"omitempty,max=64"`
}

// Definition is the explicit declaration of a has-many-polymorphic
// association, consumed once by Registry.Register.
type Definition struct {
	// Name labels the merged collection ("animals"). Its singular form names
	// the <name>_type and <name>_id columns of the through table.
	Name string `validate:"required,max=64"`
	// Owner is a pointer to a zero value of the owner model.
	Owner interface{} `validate:"-"`
	// Through is a pointer to a zero value of the join model.
	Through interface{} `validate:"-"`
	// Members lists the participating member types, at least one.
	Members []Member `validate:"required,min=1,dive"`
	// OwnerAccessor names the reverse collection on every member type.
	// Defaults to the owner table name ("zoos").
	OwnerAccessor string `validate:"omitempty,max=64"`
}

// roleName is the singular, snake-cased association name ("animal").
func roleName(namer schema.Namer, name string) string {
	return inflection.Singular(namer.ColumnName("", name))
}

// columnNames derives the through table columns:
// <underscored owner type>_id, <singular name>_type and <singular name>_id.
func columnNames(namer schema.Namer, ownerType, name string) (owner, roleType, roleID string) {
	role := roleName(namer, name)
	return namer.ColumnName("", ownerType) + "_id", role + "_type", role + "_id"
}

func indexName(throughTable, role string) string {
	return "idx_" + throughTable + "_" + role + "_link"
}
