package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBatchEmbedder is a mock implementation of BatchEmbedder
type MockBatchEmbedder struct {
	mock.Mock
}

func (m *MockBatchEmbedder) ProcessBatch(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	// Stop worker
	worker.Stop()
	wg.Wait()

	// Verify ProcessJobs was called at least once
	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(150 * time.Millisecond)

	// Cancel context
	cancel()
	wg.Wait()

	// Verify ProcessJobs was called
	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestEmbeddingWorker_ProcessJobs_NothingPending tests a tick with nothing to embed
func TestEmbeddingWorker_ProcessJobs_NothingPending(t *testing.T) {
	mockEmbedder := new(MockBatchEmbedder)
	mockEmbedder.On("ProcessBatch", mock.Anything, 10).Return(0, nil)

	worker := NewEmbeddingWorker(mockEmbedder, 10)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockEmbedder.AssertExpectations(t)
}

// TestEmbeddingWorker_ProcessJobs_Success tests a tick that embeds a batch
func TestEmbeddingWorker_ProcessJobs_Success(t *testing.T) {
	mockEmbedder := new(MockBatchEmbedder)
	mockEmbedder.On("ProcessBatch", mock.Anything, 25).Return(25, nil)

	worker := NewEmbeddingWorker(mockEmbedder, 25)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockEmbedder.AssertExpectations(t)
}

// TestEmbeddingWorker_ProcessJobs_BatchError tests error propagation
func TestEmbeddingWorker_ProcessJobs_BatchError(t *testing.T) {
	mockEmbedder := new(MockBatchEmbedder)
	mockEmbedder.On("ProcessBatch", mock.Anything, 10).Return(0, errors.New("database error"))

	worker := NewEmbeddingWorker(mockEmbedder, 10)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process embedding batch")
	mockEmbedder.AssertExpectations(t)
}
