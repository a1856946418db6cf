package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pasteapi/internal/model"
	"pasteapi/internal/service"
)

type MockPasteService struct {
	mock.Mock
}

func (m *MockPasteService) Create(ctx context.Context, in service.CreateInput) (*model.Paste, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paste), args.Error(1)
}

func (m *MockPasteService) Get(ctx context.Context, pasteID string) (*model.Paste, error) {
	args := m.Called(ctx, pasteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paste), args.Error(1)
}

func (m *MockPasteService) ResolveRemoval(ctx context.Context, removalID string) (*model.Paste, error) {
	args := m.Called(ctx, removalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paste), args.Error(1)
}

func (m *MockPasteService) Remove(ctx context.Context, removalID string) (string, error) {
	args := m.Called(ctx, removalID)
	return args.String(0), args.Error(1)
}

func (m *MockPasteService) PurgeExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
