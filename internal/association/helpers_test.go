package association

import (
	"context"
	"path/filepath"
	"testing"

	"has-many-polymorphic/internal/database/models"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// keeper and keeperAnimal back a second association with integer owner keys
type keeper struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type keeperAnimal struct {
	ID         uint      `gorm:"primaryKey"`
	KeeperID   uint      `gorm:"not null"`
	AnimalType string    `gorm:"size:100;not null"`
	AnimalID   uuid.UUID `gorm:"type:uuid;not null"`
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "association.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func zooAnimals() Definition {
	return Definition{
		Name:    "animals",
		Owner:   &models.Zoo{},
		Through: &models.ZooAnimal{},
		Members: []Member{
			{Model: &models.Bear{}},
			{Model: &models.Bird{}},
			{Model: &models.Monkey{}},
		},
	}
}

// dbSuite gives every test a fresh database with the zoo animals association
// registered and migrated.
type dbSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	registry *Registry
	animals  *Association
}

func (s *dbSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = openTestDB(s.T())

	var err error
	s.registry, err = NewRegistry(s.db, validator.New())
	s.Require().NoError(err)
	s.animals, err = s.registry.Register(zooAnimals())
	s.Require().NoError(err)
	s.Require().NoError(s.registry.Migrate(s.ctx))
}

func (s *dbSuite) zoo(name string) *models.Zoo {
	z := &models.Zoo{BaseModel: models.BaseModel{Name: name}, City: "Springfield"}
	s.Require().NoError(s.db.Create(z).Error)
	return z
}

func (s *dbSuite) bear(name string) *models.Bear {
	b := &models.Bear{BaseModel: models.BaseModel{Name: name}, Species: "grizzly"}
	s.Require().NoError(s.db.Create(b).Error)
	return b
}

func (s *dbSuite) bird(name, sti string) *models.Bird {
	b := &models.Bird{BaseModel: models.BaseModel{Name: name}, Type: sti, Wingspan: 1.2}
	s.Require().NoError(s.db.Create(b).Error)
	return b
}

func (s *dbSuite) monkey(name string) *models.Monkey {
	m := &models.Monkey{BaseModel: models.BaseModel{Name: name}, Troop: "north"}
	s.Require().NoError(s.db.Create(m).Error)
	return m
}

func (s *dbSuite) link(owner, member interface{}) {
	created, err := s.animals.Link(s.ctx, owner, member)
	s.Require().NoError(err)
	s.Require().True(created)
}

// countLinks counts zoo_animals rows matching the given conditions.
func (s *dbSuite) countLinks(query string, args ...interface{}) int64 {
	var n int64
	q := s.db.Model(&models.ZooAnimal{})
	if query != "" {
		q = q.Where(query, args...)
	}
	s.Require().NoError(q.Count(&n).Error)
	return n
}
