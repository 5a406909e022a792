package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/lobby-backend/internal/entity"
	"github.com/rocketscienceinc/lobby-backend/internal/repository"
)

type mockBackend struct {
	mock.Mock
}

func (that *mockBackend) Open(credential string) repository.Session {
	args := that.Called(credential)
	return args.Get(0).(repository.Session)
}

type mockSession struct {
	mock.Mock
}

func (that *mockSession) CurrentUser(ctx context.Context) (string, error) {
	args := that.Called(ctx)
	return args.String(0), args.Error(1)
}

func (that *mockSession) InsertGame(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	args := that.Called(ctx, game)
	created, _ := args.Get(0).(*entity.Game)
	return created, args.Error(1)
}

func (that *mockSession) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockSession) JoinGame(ctx context.Context, id, other string) (*entity.Game, error) {
	args := that.Called(ctx, id, other)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func newMocks(credential string) (*mockBackend, *mockSession) {
	backend := &mockBackend{}
	session := &mockSession{}
	backend.On("Open", credential).Return(session).Once()

	return backend, session
}
