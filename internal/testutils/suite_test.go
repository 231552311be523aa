package testutils

import (
	"testing"

	"has-many-polymorphic/internal/database/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSQLiteSuite(t *testing.T) {
	s := SetupSQLiteSuite(t)
	require.NotNil(t, s.DB)
	require.NotNil(t, s.Animals)
	assert.Equal(t, "sqlite", s.Config.DatabaseDriver)

	zoo := NewZooFactory().Create()
	bear := NewAnimalFactory().Bear("Smokey")
	require.NoError(t, s.DB.Create(zoo).Error)
	require.NoError(t, s.DB.Create(bear).Error)
	created, err := s.Animals.Link(t.Context(), zoo, bear)
	require.NoError(t, err)
	assert.True(t, created)

	s.CleanTestDB()

	for _, model := range models.All() {
		var n int64
		require.NoError(t, s.DB.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}

func TestAnimalFactory(t *testing.T) {
	f := NewAnimalFactory()
	for _, kind := range models.AnimalKinds {
		animal := f.Of(kind, "Rex")
		require.NotNil(t, animal)
		assert.Equal(t, kind, animal.Kind())
		assert.Equal(t, "Rex", animal.GetName())
	}
	assert.Nil(t, f.Of("lion", "Rex"))
	assert.Equal(t, "Penguin", f.Penguin("Pingu").Type)
	assert.Equal(t, "Zoo Lander", NewZooFactory().Create().Name)
	assert.Equal(t, "Other", NewZooFactory().WithName("Other").Name)
}
