package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"assistflow/internal/platform/kvstore"
	"assistflow/internal/verification/store"
	dErrors "assistflow/pkg/domain-errors"
	"assistflow/pkg/requestcontext"
)

type HandshakeSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
	codes   []string
	next    int
}

func TestHandshakeSuite(t *testing.T) {
	suite.Run(t, new(HandshakeSuite))
}

func (s *HandshakeSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.codes = []string{"111111", "222222", "333333", "444444"}
	s.next = 0
	s.service = New(store.New(kvstore.NewMemory()), WithCodeGenerator(func() (string, error) {
		code := s.codes[s.next%len(s.codes)]
		s.next++
		return code, nil
	}))
}

func (s *HandshakeSuite) TestIssueInvalidatesAtMostOnePriorChallenge() {
	first, err := s.service.Issue(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(0, first.Invalidated)
	s.Equal("111111", first.Challenge.Code)

	second, err := s.service.Issue(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(1, second.Invalidated)

	third, err := s.service.Issue(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(1, third.Invalidated, "never more than one prior unconsumed challenge")

	_, err = s.service.Consume(s.ctx, "a@x.com", "111111")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCode), "old code no longer valid")

	_, err = s.service.Consume(s.ctx, "a@x.com", "333333")
	s.Require().NoError(err)

	fourth, err := s.service.Issue(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal(0, fourth.Invalidated, "a consumed challenge is not invalidated")
}

func (s *HandshakeSuite) TestConsume() {
	s.Run("no challenge issued", func() {
		_, err := s.service.Consume(s.ctx, "nobody@x.com", "111111")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("wrong code leaves the challenge unconsumed", func() {
		_, err := s.service.Issue(s.ctx, "b@x.com")
		s.Require().NoError(err)

		_, err = s.service.Consume(s.ctx, "b@x.com", "999999")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCode))

		current, err := s.service.Current(s.ctx, "b@x.com")
		s.Require().NoError(err)
		s.False(current.IsConsumed())

		consumed, err := s.service.Consume(s.ctx, "b@x.com", current.Code)
		s.Require().NoError(err)
		s.NotNil(consumed.ConsumedAt)
	})

	s.Run("second submission conflicts", func() {
		current, err := s.service.Current(s.ctx, "b@x.com")
		s.Require().NoError(err)
		_, err = s.service.Consume(s.ctx, "b@x.com", current.Code)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *HandshakeSuite) TestConcurrentConsumeHasSingleWinner() {
	issued, err := s.service.Issue(s.ctx, "c@x.com")
	s.Require().NoError(err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.service.Consume(s.ctx, "c@x.com", issued.Challenge.Code); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.EqualValues(1, wins.Load())
}

func (s *HandshakeSuite) TestResendRequestConsumedByIssue() {
	_, err := s.service.RequestResend(s.ctx, "d@x.com", "Dee")
	s.Require().NoError(err)

	reqs, err := s.service.ListResendRequests(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(reqs, 1)
	s.Equal("d@x.com", reqs[0].Email)

	issued, err := s.service.Issue(s.ctx, "d@x.com")
	s.Require().NoError(err)
	s.True(issued.ResendConsumed)

	reqs, err = s.service.ListResendRequests(s.ctx)
	s.Require().NoError(err)
	s.Empty(reqs)
}

func (s *HandshakeSuite) TestGeneratorFailure() {
	svc := New(store.New(kvstore.NewMemory()), WithCodeGenerator(func() (string, error) {
		return "", fmt.Errorf("entropy exhausted")
	}))
	_, err := svc.Issue(s.ctx, "e@x.com")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
