package association

import (
	"testing"

	"has-many-polymorphic/internal/database/models"
	apperrors "has-many-polymorphic/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// RegistryTestSuite tests association registration and lookup
type RegistryTestSuite struct {
	dbSuite
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) TestInstallsPlugin() {
	plugin, ok := s.db.Config.Plugins[pluginName]
	s.True(ok)
	s.Same(s.registry, plugin)
}

func (s *RegistryTestSuite) TestDerivedNames() {
	owner, roleType, roleID := s.animals.Columns()
	s.Equal("zoo_id", owner)
	s.Equal("animal_type", roleType)
	s.Equal("animal_id", roleID)

	s.Equal("animals", s.animals.Name())
	s.Equal("zoos", s.animals.OwnerAccessor())
	s.Equal("zoo_animals", s.animals.ThroughTable())
	s.Equal([]string{"bears", "birds", "monkeys"}, s.animals.Accessors())
	s.Equal([]string{"Bear", "Bird", "Monkey"}, s.animals.MemberTypes())
}

func (s *RegistryTestSuite) TestMigrateCreatesUniqueIndex() {
	s.True(s.db.Migrator().HasIndex(&models.ZooAnimal{}, "idx_zoo_animals_animal_link"))
	// a second run finds the index and leaves it alone
	s.NoError(s.registry.Migrate(s.ctx))

	zooID, bearID := uuid.New(), uuid.New()
	s.NoError(s.db.Create(&models.ZooAnimal{ZooID: zooID, AnimalType: "Bear", AnimalID: bearID}).Error)
	s.Error(s.db.Create(&models.ZooAnimal{ZooID: zooID, AnimalType: "Bear", AnimalID: bearID}).Error)
}

func (s *RegistryTestSuite) TestRegisterRequiresMembers() {
	def := zooAnimals()
	def.Members = nil

	a, err := s.registry.Register(def)

	s.Nil(a)
	s.ErrorIs(err, apperrors.ErrNoMemberTypes)
	s.True(apperrors.IsConfiguration(err))
}

func (s *RegistryTestSuite) TestRegisterRejectsInvalidDefinitions() {
	testCases := []struct {
		name   string
		mutate func(*Definition)
	}{
		{
			name:   "missing name",
			mutate: func(d *Definition) { d.Name = "" },
		},
		{
			name:   "missing owner",
			mutate: func(d *Definition) { d.Owner = nil },
		},
		{
			name:   "missing through",
			mutate: func(d *Definition) { d.Through = nil },
		},
		{
			name:   "nil member model",
			mutate: func(d *Definition) { d.Members = append(d.Members, Member{}) },
		},
		{
			name:   "member declared twice",
			mutate: func(d *Definition) { d.Members = append(d.Members, Member{Model: &models.Bear{}, Accessor: "ursines"}) },
		},
		{
			name:   "duplicate discriminator",
			mutate: func(d *Definition) { d.Members[2].Name = "Bear" },
		},
		{
			name:   "duplicate accessor",
			mutate: func(d *Definition) { d.Members[2].Accessor = "bears" },
		},
		{
			name:   "accessor shadows the collection",
			mutate: func(d *Definition) { d.Members[0].Accessor = "animals" },
		},
		{
			name:   "through table misses role columns",
			mutate: func(d *Definition) { d.Name = "residents" },
		},
		{
			name:   "through table misses the owner column",
			mutate: func(d *Definition) { d.Owner = &keeper{} },
		},
		{
			name:   "member key does not fit the through table",
			mutate: func(d *Definition) {
				d.Owner, d.Through = &keeper{}, &keeperAnimal{}
				d.Members = []Member{{Model: &keeper{}, Accessor: "keepers"}}
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			def := zooAnimals()
			tc.mutate(&def)

			a, err := s.registry.Register(def)

			s.Nil(a)
			s.Error(err)
			s.True(apperrors.IsConfiguration(err), "got %v", err)
		})
	}
	s.Len(s.registry.Associations(), 1)
}

func (s *RegistryTestSuite) TestLookup() {
	a, err := s.registry.Lookup(&models.Zoo{}, "animals")
	s.NoError(err)
	s.Same(s.animals, a)

	_, err = s.registry.Lookup(&models.Zoo{}, "plants")
	s.ErrorIs(err, apperrors.ErrAssociationNotFound)

	_, err = s.registry.Lookup(&models.Bear{}, "animals")
	s.ErrorIs(err, apperrors.ErrAssociationNotFound)
}

func (s *RegistryTestSuite) TestLastRegistrationWins() {
	def := zooAnimals()
	def.Members[0].Accessor = "ursines"
	def.OwnerAccessor = "habitats"

	replaced, err := s.registry.Register(def)
	s.Require().NoError(err)

	a, err := s.registry.Lookup(&models.Zoo{}, "animals")
	s.NoError(err)
	s.Same(replaced, a)
	s.Equal([]string{"ursines", "birds", "monkeys"}, a.Accessors())
	s.Equal("habitats", a.OwnerAccessor())
	s.Len(s.registry.Associations(), 1)
}

func (s *RegistryTestSuite) TestSeveralAssociations() {
	keepers, err := s.registry.Register(Definition{
		Name:    "animals",
		Owner:   &keeper{},
		Through: &keeperAnimal{},
		Members: []Member{
			{Model: &models.Bear{}, Name: "Ursine"},
			{Model: &models.Monkey{}},
		},
		OwnerAccessor: "carers",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.registry.Migrate(s.ctx))

	all := s.registry.Associations()
	s.Require().Len(all, 2)
	s.Same(s.animals, all[0])
	s.Same(keepers, all[1])

	owner, _, _ := keepers.Columns()
	s.Equal("keeper_id", owner)
	s.Equal("keeper_animals", keepers.ThroughTable())
	s.Equal([]string{"Ursine", "Monkey"}, keepers.MemberTypes())

	k := &keeper{Name: "Ranger Rick"}
	s.Require().NoError(s.db.Create(k).Error)
	smokey := s.bear("Smokey")
	zoo := s.zoo("Zoo Lander")

	created, err := keepers.Link(s.ctx, k, smokey)
	s.NoError(err)
	s.True(created)
	s.link(zoo, smokey)

	var links []keeperAnimal
	s.Require().NoError(keepers.MemberLinks(s.ctx, smokey, &links))
	s.Require().Len(links, 1)
	s.Equal("Ursine", links[0].AnimalType)
	s.Equal(k.ID, links[0].KeeperID)

	// the zoo association keeps its own discriminator for the same bear
	exists, err := s.animals.Exists(s.ctx, zoo, smokey)
	s.NoError(err)
	s.True(exists)
	s.Equal(int64(1), s.countLinks("animal_type = ?", "Bear"))

	// deleting the bear cascades through both associations
	s.Require().NoError(s.db.Delete(smokey).Error)
	s.Require().NoError(keepers.MemberLinks(s.ctx, smokey, &links))
	s.Empty(links)
	s.Equal(int64(0), s.countLinks(""))
}
