package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"pasteapi/internal/model"
)

type MockPasteRepository struct {
	mock.Mock
}

func (m *MockPasteRepository) Create(ctx context.Context, p *model.Paste) (*model.Paste, error) {
	args := m.Called(ctx, p)
	if f, ok := args.Get(0).(func(context.Context, *model.Paste) *model.Paste); ok {
		return f(ctx, p), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paste), args.Error(1)
}

func (m *MockPasteRepository) FindByPasteID(ctx context.Context, pasteID string) (*model.Paste, error) {
	args := m.Called(ctx, pasteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paste), args.Error(1)
}

func (m *MockPasteRepository) FindByRemovalID(ctx context.Context, removalID string) (*model.Paste, error) {
	args := m.Called(ctx, removalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paste), args.Error(1)
}

func (m *MockPasteRepository) DeleteByRemovalID(ctx context.Context, removalID string) (string, error) {
	args := m.Called(ctx, removalID)
	return args.String(0), args.Error(1)
}

func (m *MockPasteRepository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
