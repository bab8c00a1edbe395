package worker

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

func TestStopIsIdempotent(t *testing.T) {
	w := &BaseWorker{
		server:   asynq.NewServer(asynq.RedisClientOpt{Addr: "localhost:0"}, asynq.Config{}),
		mux:      asynq.NewServeMux(),
		logger:   logger.NewTestLogger(),
		stopChan: make(chan struct{}),
	}

	// Shutdown signals and context cancellation can both reach Stop.
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())

	select {
	case <-w.stopChan:
	default:
		t.Fatal("stop channel not closed")
	}
}
