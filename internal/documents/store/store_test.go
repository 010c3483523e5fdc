package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"assistflow/internal/documents/models"
	"assistflow/internal/platform/kvstore"
	"assistflow/pkg/platform/sentinel"
)

type DocumentStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
	now   time.Time
}

func TestDocumentStoreSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreSuite))
}

func (s *DocumentStoreSuite) SetupTest() {
	s.store = New(kvstore.NewMemory())
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *DocumentStoreSuite) newDoc(id, email string, offset time.Duration) *models.Document {
	d, err := models.NewDocument(id, email, models.Upload{
		Category:    models.CategoryOther,
		Type:        "utility_bills",
		FileRef:     "blob://" + id,
		FileName:    id + ".pdf",
		FileSize:    100,
		ContentType: "application/pdf",
	}, s.now.Add(offset))
	s.Require().NoError(err)
	return d
}

func (s *DocumentStoreSuite) TestCreateAndFind() {
	d := s.newDoc("d1", "a@x.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, d))

	byID, err := s.store.FindByID(s.ctx, "d1")
	s.Require().NoError(err)
	s.Equal("a@x.com", byID.Email)
	s.Equal(d.Version, byID.Version)

	s.ErrorIs(s.store.Create(s.ctx, s.newDoc("d1", "b@x.com", 0)), sentinel.ErrConflict)

	_, err = s.store.FindByID(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DocumentStoreSuite) TestUpdateIsCompareAndSwap() {
	d := s.newDoc("d1", "a@x.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, d))

	first, err := s.store.FindByID(s.ctx, "d1")
	s.Require().NoError(err)
	second, err := s.store.FindByID(s.ctx, "d1")
	s.Require().NoError(err)

	first.ApplyDecision(models.DecisionApprove, "", "r1", s.now)
	s.Require().NoError(s.store.Update(s.ctx, first))

	second.ApplyDecision(models.DecisionReject, "blurry", "r2", s.now)
	s.ErrorIs(s.store.Update(s.ctx, second), sentinel.ErrConflict)
}

func (s *DocumentStoreSuite) TestListByEmailIsScopedAndOrdered() {
	s.Require().NoError(s.store.Create(s.ctx, s.newDoc("d2", "a@x.com", time.Minute)))
	s.Require().NoError(s.store.Create(s.ctx, s.newDoc("d1", "a@x.com", 2*time.Minute)))
	s.Require().NoError(s.store.Create(s.ctx, s.newDoc("d3", "a@x.com.au", 0)))

	docs, err := s.store.ListByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("d2", docs[0].ID)
	s.Equal("d1", docs[1].ID)

	all, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *DocumentStoreSuite) TestWithdraw() {
	d := s.newDoc("d1", "a@x.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, d))

	s.Run("stale copy loses to a decision", func() {
		stale, err := s.store.FindByID(s.ctx, "d1")
		s.Require().NoError(err)
		decided, err := s.store.FindByID(s.ctx, "d1")
		s.Require().NoError(err)
		decided.ApplyDecision(models.DecisionApprove, "", "r", s.now)
		s.Require().NoError(s.store.Update(s.ctx, decided))

		s.ErrorIs(s.store.Withdraw(s.ctx, stale), sentinel.ErrConflict)
	})

	s.Run("pending document is removed with its index", func() {
		p := s.newDoc("d9", "a@x.com", 0)
		s.Require().NoError(s.store.Create(s.ctx, p))
		s.Require().NoError(s.store.Withdraw(s.ctx, p))

		_, err := s.store.FindByID(s.ctx, "d9")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
