package models

// Zoo owns the polymorphic "animals" collection
type Zoo struct {
	BaseModel
	City string `json:"city" gorm:"size:100" validate:"max=100"`
}

// TableName returns the table name for Zoo
func (Zoo) TableName() string {
	return "zoos"
}
