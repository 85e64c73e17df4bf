package service_test

import (
	"context"
	"errors"
	"testing"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/repository"
	"cordi-chat/internal/repository/mocks"
	"cordi-chat/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAutoResponseService_Match(t *testing.T) {
	ctx := context.Background()

	t.Run("exact", func(t *testing.T) {
		repo := new(mocks.AutoResponseRepository)
		repo.On("FindExact", ctx, "hours").Return(&domain.AutoResponse{Question: "hours", Response: "9-5"}, nil).Once()

		reply, matched, err := service.NewAutoResponseService(repo).Match(ctx, " hours ")

		require.NoError(t, err)
		assert.True(t, matched)
		assert.Equal(t, "9-5", reply)
		repo.AssertNotCalled(t, "FindContainedIn", mock.Anything, mock.Anything)
	})

	t.Run("substring", func(t *testing.T) {
		repo := new(mocks.AutoResponseRepository)
		repo.On("FindExact", ctx, "when is the library open").Return(nil, repository.ErrAutoResponseNotFound).Once()
		repo.On("FindContainedIn", ctx, "when is the library open").
			Return(&domain.AutoResponse{Question: "library", Response: "8am-10pm"}, nil).Once()

		reply, matched, err := service.NewAutoResponseService(repo).Match(ctx, "when is the library open")

		require.NoError(t, err)
		assert.True(t, matched)
		assert.Equal(t, "8am-10pm", reply)
	})

	t.Run("no match", func(t *testing.T) {
		repo := new(mocks.AutoResponseRepository)
		repo.On("FindExact", ctx, "???").Return(nil, repository.ErrAutoResponseNotFound).Once()
		repo.On("FindContainedIn", ctx, "???").Return(nil, repository.ErrAutoResponseNotFound).Once()

		reply, matched, err := service.NewAutoResponseService(repo).Match(ctx, "???")

		require.NoError(t, err)
		assert.False(t, matched)
		assert.Equal(t, service.DefaultAutoReply, reply)
	})

	t.Run("empty question", func(t *testing.T) {
		repo := new(mocks.AutoResponseRepository)
		_, _, err := service.NewAutoResponseService(repo).Match(ctx, "  ")
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := new(mocks.AutoResponseRepository)
		repo.On("FindExact", ctx, "hours").Return(nil, errors.New("boom")).Once()
		_, _, err := service.NewAutoResponseService(repo).Match(ctx, "hours")
		assert.ErrorIs(t, err, service.ErrStorage)
	})
}

func TestAutoResponseService_Save(t *testing.T) {
	repo := new(mocks.AutoResponseRepository)
	svc := service.NewAutoResponseService(repo)
	ctx := context.Background()

	repo.On("Upsert", ctx, mock.MatchedBy(func(e *domain.AutoResponse) bool {
		return e.Question == "hours" && e.Response == "9-5"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.AutoResponse).ID = 4
	}).Return(nil).Once()

	entry, err := svc.Save(ctx, " hours ", " 9-5 ")
	require.NoError(t, err)
	assert.Equal(t, uint(4), entry.ID)

	_, err = svc.Save(ctx, "hours", "  ")
	assert.ErrorIs(t, err, service.ErrValidation)
	repo.AssertExpectations(t)
}

func TestAutoResponseService_Update(t *testing.T) {
	repo := new(mocks.AutoResponseRepository)
	svc := service.NewAutoResponseService(repo)
	ctx := context.Background()

	repo.On("Update", ctx, mock.MatchedBy(func(e *domain.AutoResponse) bool { return e.ID == 4 })).Return(nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(e *domain.AutoResponse) bool { return e.ID == 5 })).Return(repository.ErrDuplicateEntry).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(e *domain.AutoResponse) bool { return e.ID == 6 })).Return(repository.ErrAutoResponseNotFound).Once()

	entry, err := svc.Update(ctx, 4, "hours", "10-6")
	require.NoError(t, err)
	assert.Equal(t, "10-6", entry.Response)

	_, err = svc.Update(ctx, 5, "hours", "10-6")
	assert.ErrorIs(t, err, service.ErrQuestionTaken)

	_, err = svc.Update(ctx, 6, "hours", "10-6")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Update(ctx, 0, "hours", "10-6")
	assert.ErrorIs(t, err, service.ErrValidation)
	repo.AssertExpectations(t)
}

func TestAutoResponseService_ListAndDelete(t *testing.T) {
	repo := new(mocks.AutoResponseRepository)
	svc := service.NewAutoResponseService(repo)
	ctx := context.Background()

	repo.On("List", ctx).Return([]domain.AutoResponse{{ID: 1, Question: "hours", Response: "9-5"}}, nil).Once()
	repo.On("Delete", ctx, uint(1)).Return(nil).Once()
	repo.On("Delete", ctx, uint(2)).Return(repository.ErrAutoResponseNotFound).Once()

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 2), service.ErrAutoResponseNotFound)
	repo.AssertExpectations(t)
}
