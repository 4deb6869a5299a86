package gateway

import (
	"errors"
	"fmt"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	rateLimited := &openai.Error{StatusCode: 429}
	assert.ErrorIs(t, mapError(rateLimited), ErrRateLimited)

	payment := &openai.Error{StatusCode: 402}
	assert.ErrorIs(t, mapError(payment), ErrPaymentRequired)

	server := &openai.Error{StatusCode: 500}
	mapped := mapError(server)
	assert.NotErrorIs(t, mapped, ErrRateLimited)
	assert.NotErrorIs(t, mapped, ErrPaymentRequired)
}

func TestHTTPStatusUnwrapsThroughLayers(t *testing.T) {
	inner := &openai.Error{StatusCode: 413}
	wrapped := fmt.Errorf("summarize: %w", mapError(inner))
	assert.Equal(t, 413, HTTPStatus(wrapped))

	assert.Zero(t, HTTPStatus(errors.New("plain failure")))
	assert.Zero(t, HTTPStatus(nil))
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "rate_limited", outcome(mapError(&openai.Error{StatusCode: 429})))
	assert.Equal(t, "payment_required", outcome(mapError(&openai.Error{StatusCode: 402})))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
