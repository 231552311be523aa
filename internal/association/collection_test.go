package association

import (
	"errors"
	"testing"

	"has-many-polymorphic/internal/database/models"
	apperrors "has-many-polymorphic/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// CollectionTestSuite tests the owner-side merged collection
type CollectionTestSuite struct {
	dbSuite
}

func TestCollectionTestSuite(t *testing.T) {
	suite.Run(t, new(CollectionTestSuite))
}

func (s *CollectionTestSuite) bind(zoo *models.Zoo) *Collection {
	c, err := s.animals.Bind(zoo)
	s.Require().NoError(err)
	return c
}

func recordIDs(records []Record) []interface{} {
	ids := make([]interface{}, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}

func (s *CollectionTestSuite) TestZooLander() {
	zoo := &models.Zoo{BaseModel: models.BaseModel{Name: "Zoo Lander"}}
	smokey := s.bear("Smokey")
	bigBird := s.bird("Big Bird", "")
	george := s.monkey("George")

	c := s.bind(zoo)
	s.Require().NoError(c.Append("bears", smokey))
	s.Require().NoError(c.Append("birds", bigBird))
	s.Require().NoError(c.Append("monkeys", george))

	created, err := c.Save(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), created)
	s.NotEqual(uuid.Nil, zoo.ID)
	s.Empty(c.Pending())

	n, err := c.Len(s.ctx)
	s.NoError(err)
	s.Equal(3, n)

	bears, err := Members[models.Bear](s.ctx, c, "bears")
	s.NoError(err)
	s.Require().Len(bears, 1)
	s.Equal("Smokey", bears[0].Name)

	birds, err := Members[models.Bird](s.ctx, c, "birds")
	s.NoError(err)
	s.Require().Len(birds, 1)
	s.Equal("Big Bird", birds[0].Name)

	monkeys, err := Members[models.Monkey](s.ctx, c, "monkeys")
	s.NoError(err)
	s.Require().Len(monkeys, 1)
	s.Equal("George", monkeys[0].Name)

	for _, member := range []interface{}{smokey, bigBird, george} {
		r, err := s.animals.BindMember(member)
		s.Require().NoError(err)
		zoos, err := OwnersOf[models.Zoo](s.ctx, r)
		s.NoError(err)
		s.Require().Len(zoos, 1)
		s.Equal(zoo.ID, zoos[0].ID)
	}
}

func (s *CollectionTestSuite) TestFlushIsIdempotent() {
	zoo := s.zoo("Zoo Lander")
	smokey, george := s.bear("Smokey"), s.monkey("George")

	c := s.bind(zoo)
	s.Require().NoError(c.Add(smokey, george))
	created, err := c.Flush(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), created)

	// nothing queued
	created, err = c.Flush(s.ctx)
	s.NoError(err)
	s.Equal(int64(0), created)

	// queued again but already linked
	s.Require().NoError(c.Add(smokey, george))
	created, err = c.Save(s.ctx)
	s.NoError(err)
	s.Equal(int64(0), created)
	s.Equal(int64(2), s.countLinks("zoo_id = ?", zoo.ID))
}

func (s *CollectionTestSuite) TestDoubleAddCreatesOneLink() {
	zoo := s.zoo("Zoo Lander")
	smokey := s.bear("Smokey")

	c := s.bind(zoo)
	s.Require().NoError(c.Add(smokey))
	s.Require().NoError(c.Add(smokey))
	s.Require().NoError(c.Append("bears", smokey))
	s.Len(c.Pending(), 1)

	created, err := c.Flush(s.ctx)
	s.NoError(err)
	s.Equal(int64(1), created)
	s.Equal(int64(1), s.countLinks("zoo_id = ?", zoo.ID))
}

func (s *CollectionTestSuite) TestRecordsIsUnionOfFilteredCollections() {
	zoo := s.zoo("Zoo Lander")
	smokey, yogi := s.bear("Smokey"), s.bear("Yogi")
	george := s.monkey("George")
	other := s.zoo("Other Zoo")
	for _, member := range []interface{}{smokey, yogi, george} {
		s.link(zoo, member)
	}
	s.link(other, s.monkey("Abu"))

	c := s.bind(zoo)
	// a persisted member queued again is not repeated
	s.Require().NoError(c.Add(yogi))
	records, err := c.Records(s.ctx)
	s.Require().NoError(err)

	bears, err := Members[models.Bear](s.ctx, c, "bears")
	s.Require().NoError(err)
	monkeys, err := Members[models.Monkey](s.ctx, c, "monkeys")
	s.Require().NoError(err)
	var union []interface{}
	for _, b := range bears {
		union = append(union, b.ID)
	}
	for _, m := range monkeys {
		union = append(union, m.ID)
	}

	s.Len(records, 3)
	s.ElementsMatch(union, recordIDs(records))
	for _, rec := range records {
		s.True(rec.Persisted)
	}
	// declaration order: bears before monkeys
	s.Equal("Bear", records[0].Type)
	s.Equal("Bear", records[1].Type)
	s.Equal("Monkey", records[2].Type)
}

func (s *CollectionTestSuite) TestRecordsMergesPendingAfterPersisted() {
	zoo := s.zoo("Zoo Lander")
	smokey, george := s.bear("Smokey"), s.monkey("George")
	s.link(zoo, george)

	c := s.bind(zoo)
	s.Require().NoError(c.Add(smokey))

	records, err := c.Records(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(george.ID, records[0].ID)
	s.True(records[0].Persisted)
	s.Equal(smokey.ID, records[1].ID)
	s.False(records[1].Persisted)
	s.Same(smokey, records[1].Value)

	values, err := c.Values(s.ctx)
	s.NoError(err)
	s.Len(values, 2)
}

func (s *CollectionTestSuite) TestRecordsOfUnsavedOwner() {
	c := s.bind(&models.Zoo{BaseModel: models.BaseModel{Name: "Draft"}})
	s.Require().NoError(c.Add(s.bear("Smokey")))

	records, err := c.Records(s.ctx)
	s.NoError(err)
	s.Len(records, 1)
	s.False(records[0].Persisted)
}

func (s *CollectionTestSuite) TestFindAppendsPendingOfThatType() {
	zoo := s.zoo("Zoo Lander")
	smokey, yogi := s.bear("Smokey"), s.bear("Yogi")
	s.link(zoo, smokey)

	c := s.bind(zoo)
	s.Require().NoError(c.Add(smokey, yogi, s.monkey("George")))

	var bears []models.Bear
	s.Require().NoError(c.Find(s.ctx, "bears", &bears))
	s.Require().Len(bears, 2)
	s.Equal(smokey.ID, bears[0].ID)
	s.Equal(yogi.ID, bears[1].ID)

	var stored []*models.Bear
	s.Require().NoError(s.animals.Filtered(s.ctx, zoo, "bears", &stored))
	s.Len(stored, 1)
}

func (s *CollectionTestSuite) TestFindValidatesArguments() {
	c := s.bind(s.zoo("Zoo Lander"))

	var monkeys []models.Monkey
	s.ErrorIs(c.Find(s.ctx, "bears", &monkeys), apperrors.ErrInvalidDestination)
	s.ErrorIs(c.Find(s.ctx, "bears", monkeys), apperrors.ErrInvalidDestination)
	s.ErrorIs(c.Find(s.ctx, "lions", &monkeys), apperrors.ErrAccessorNotFound)
}

func (s *CollectionTestSuite) TestReloadDiscardsPending() {
	zoo := s.zoo("Zoo Lander")
	smokey := s.bear("Smokey")
	s.link(zoo, smokey)

	c := s.bind(zoo)
	s.Require().NoError(c.Add(s.monkey("George")))
	n, err := c.Len(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	s.Require().NoError(s.db.Model(&models.Zoo{}).Where("id = ?", zoo.ID).Update("city", "Shelbyville").Error)
	s.Require().NoError(c.Reload(s.ctx))

	s.Empty(c.Pending())
	s.Equal("Shelbyville", zoo.City)
	records, err := c.Records(s.ctx)
	s.NoError(err)
	s.Require().Len(records, 1)
	s.Equal(smokey.ID, records[0].ID)
}

func (s *CollectionTestSuite) TestReloadErrors() {
	draft := s.bind(&models.Zoo{})
	s.ErrorIs(draft.Reload(s.ctx), apperrors.ErrOwnerNotPersisted)

	zoo := s.zoo("Zoo Lander")
	c := s.bind(zoo)
	s.Require().NoError(s.db.Where("id = ?", zoo.ID).Delete(&models.Zoo{}).Error)
	err := c.Reload(s.ctx)
	s.True(apperrors.IsNotFound(err))
}

func (s *CollectionTestSuite) TestAddRejectsInvalidMembers() {
	c := s.bind(s.zoo("Zoo Lander"))

	s.ErrorIs(c.Add(&models.Bear{}), apperrors.ErrMemberNotPersisted)
	s.ErrorIs(c.Add(s.zoo("Other")), apperrors.ErrMemberTypeNotRegistered)
	s.True(apperrors.IsValidation(c.Add(models.Bear{})))
	s.ErrorIs(c.Append("bears", s.monkey("George")), apperrors.ErrAccessorMismatch)
	s.ErrorIs(c.Append("lions", s.bear("Smokey")), apperrors.ErrAccessorNotFound)
	s.Empty(c.Pending())
}

func (s *CollectionTestSuite) TestFlushRequiresSavedOwner() {
	c := s.bind(&models.Zoo{BaseModel: models.BaseModel{Name: "Draft"}})
	s.Require().NoError(c.Add(s.bear("Smokey")))

	created, err := c.Flush(s.ctx)
	s.ErrorIs(err, apperrors.ErrOwnerNotPersisted)
	s.Zero(created)
	s.Len(c.Pending(), 1)
}

func (s *CollectionTestSuite) TestFlushTxFollowsCallerTransaction() {
	zoo := s.zoo("Zoo Lander")
	c := s.bind(zoo)
	s.Require().NoError(c.Add(s.bear("Smokey")))

	abort := errors.New("abort")
	err := s.db.Transaction(func(tx *gorm.DB) error {
		created, err := c.FlushTx(tx)
		s.NoError(err)
		s.Equal(int64(1), created)
		return abort
	})
	s.ErrorIs(err, abort)
	s.Equal(int64(0), s.countLinks(""))
	s.Len(c.Pending(), 1)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		_, err := c.FlushTx(tx)
		return err
	})
	s.NoError(err)
	c.Reset()
	s.Equal(int64(1), s.countLinks("zoo_id = ?", zoo.ID))
	s.Empty(c.Pending())
}

func (s *CollectionTestSuite) TestSaveRollsBackOnLinkFailure() {
	zoo := &models.Zoo{BaseModel: models.BaseModel{Name: "Zoo Lander"}}
	c := s.bind(zoo)
	s.Require().NoError(c.Add(s.bear("Smokey")))
	s.Require().NoError(s.db.Migrator().DropTable(&models.ZooAnimal{}))

	_, err := c.Save(s.ctx)
	s.Error(err)
	s.Len(c.Pending(), 1)

	var count int64
	s.Require().NoError(s.db.Model(&models.Zoo{}).Where("name = ?", "Zoo Lander").Count(&count).Error)
	s.Zero(count)
}

func (s *CollectionTestSuite) TestBindRejectsOtherTypes() {
	_, err := s.animals.Bind(&models.Bear{})
	s.ErrorIs(err, apperrors.ErrOwnerTypeMismatch)

	_, err = s.animals.Bind(models.Zoo{})
	s.True(apperrors.IsValidation(err))
}
