package queue

import (
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

func TestAttemptsFrom(t *testing.T) {
	assert.Equal(t, 0, attemptsFrom(nil))
	assert.Equal(t, 0, attemptsFrom(amqp.Table{}))
	assert.Equal(t, 2, attemptsFrom(amqp.Table{"x-attempts": 2}))
	assert.Equal(t, 2, attemptsFrom(amqp.Table{"x-attempts": int32(2)}))
	assert.Equal(t, 2, attemptsFrom(amqp.Table{"x-attempts": int64(2)}))
	assert.Equal(t, 2, attemptsFrom(amqp.Table{"x-attempts": "2"}))
	assert.Equal(t, 0, attemptsFrom(amqp.Table{"x-attempts": "junk"}))
}

func TestRetryHeadersBumpCounter(t *testing.T) {
	// a first failure carries no counter yet; every transient consumer
	// failure must leave through this path so nothing loops unbounded
	h := retryHeaders(nil)
	assert.Equal(t, 1, h["x-attempts"])

	h = retryHeaders(amqp.Table{"x-attempts": 2, "trace-id": "abc"})
	assert.Equal(t, 3, h["x-attempts"])
	assert.Equal(t, "abc", h["trace-id"], "unrelated headers survive the bump")
}

func TestRetryCounterReachesDeadLetterBound(t *testing.T) {
	h := amqp.Table(nil)
	for i := 0; i < maxPrintRetries; i++ {
		assert.Less(t, attemptsFrom(h), maxPrintRetries)
		h = retryHeaders(h)
	}
	assert.GreaterOrEqual(t, attemptsFrom(h), maxPrintRetries, "the bump sequence terminates at the DLQ bound")
}
