package scheduler

import (
	"context"
	"errors"
	"testing"

	"ecshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

type MockAsyncImporter struct {
	mock.Mock
}

func (m *MockAsyncImporter) ImportAsync(ctx context.Context, in usecase.ImportInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func TestEnqueueAll_EnqueuesEveryFeed(t *testing.T) {
	imp := new(MockAsyncImporter)
	imp.On("ImportAsync", mock.Anything, usecase.ImportInput{Source: "a.yaml"}).Return("", errors.New("queue down")).Once()
	imp.On("ImportAsync", mock.Anything, usecase.ImportInput{Source: "https://example.com/b.yaml"}).Return("task-2", nil).Once()

	s := NewImportScheduler(imp, []string{"a.yaml", "https://example.com/b.yaml"}, zaptest.NewLogger(t))
	s.EnqueueAll()

	imp.AssertExpectations(t)
}

func TestStart_InvalidExpression(t *testing.T) {
	s := NewImportScheduler(new(MockAsyncImporter), nil, zaptest.NewLogger(t))
	err := s.Start("not a cron")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := NewImportScheduler(new(MockAsyncImporter), []string{"a.yaml"}, zaptest.NewLogger(t))
	assert.NoError(t, s.Start("0 3 * * *"))
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}
