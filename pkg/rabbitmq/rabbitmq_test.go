package rabbitmq_test

import (
	"testing"

	"bosma/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrderEvent(t *testing.T) {
	event, err := rabbitmq.DecodeOrderEvent([]byte(`{"type":"order.created","order_id":"o-1","user_id":"u-1","status":"PENDING","total":"2500"}`))
	require.NoError(t, err)
	assert.Equal(t, rabbitmq.OrderEvent{
		Type:    rabbitmq.EventOrderCreated,
		OrderID: "o-1",
		UserID:  "u-1",
		Status:  "PENDING",
		Total:   "2500",
	}, event)

	_, err = rabbitmq.DecodeOrderEvent([]byte(`{"order_id":"o-1"}`))
	assert.Error(t, err)

	_, err = rabbitmq.DecodeOrderEvent([]byte(`not json`))
	assert.Error(t, err)
}
