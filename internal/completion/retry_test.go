package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCollaborator is a mock implementation of Collaborator
type MockCollaborator struct {
	mock.Mock
}

func (m *MockCollaborator) Complete(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestWithRetry_Success(t *testing.T) {
	m := &MockCollaborator{}
	m.On("Complete", mock.Anything, mock.Anything).Return("Estimated Price: 1,000 KRW", nil).Once()

	c := WithRetry(m, RetryConfig{MaxAttempts: 2, Logger: quietLogger()})
	reply, err := c.Complete(context.Background(), Request{User: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "Estimated Price: 1,000 KRW", reply)
	m.AssertNumberOfCalls(t, "Complete", 1)
}

func TestWithRetry_SingleRetry(t *testing.T) {
	m := &MockCollaborator{}
	m.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection reset")).Once()
	m.On("Complete", mock.Anything, mock.Anything).Return("ok", nil).Once()

	c := WithRetry(m, RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: quietLogger()})
	reply, err := c.Complete(context.Background(), Request{User: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	m.AssertNumberOfCalls(t, "Complete", 2)
}

func TestWithRetry_GivesUp(t *testing.T) {
	m := &MockCollaborator{}
	m.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("unauthorized"))

	c := WithRetry(m, RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: quietLogger()})
	_, err := c.Complete(context.Background(), Request{User: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion failed after 2 attempts")
	assert.Contains(t, err.Error(), "unauthorized")
	m.AssertNumberOfCalls(t, "Complete", 2)
}

type slowCollaborator struct{}

func (slowCollaborator) Complete(ctx context.Context, _ Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestWithRetry_Timeout(t *testing.T) {
	c := WithRetry(slowCollaborator{}, RetryConfig{
		MaxAttempts: 1,
		Timeout:     20 * time.Millisecond,
		Logger:      quietLogger(),
	})

	start := time.Now()
	_, err := c.Complete(context.Background(), Request{User: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithRetry_CallerCancelled(t *testing.T) {
	m := &MockCollaborator{}
	ctx, cancel := context.WithCancel(context.Background())
	m.On("Complete", mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).Return("", errors.New("aborted"))

	c := WithRetry(m, RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: quietLogger()})
	_, err := c.Complete(ctx, Request{User: "hi"})

	assert.ErrorIs(t, err, context.Canceled)
	m.AssertNumberOfCalls(t, "Complete", 1)
}
