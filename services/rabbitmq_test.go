package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func deliveryBody(t *testing.T, task DeliveryTask) []byte {
	t.Helper()
	body, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("failed to marshal delivery task: %v", err)
	}
	return body
}

func TestConsumerPushesToRegistry(t *testing.T) {
	conn := &fakeConn{}
	GlobalConnRegistry.Add(100, conn)
	defer GlobalConnRegistry.Remove(100, conn)

	msgs := make(chan amqp.Delivery, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		consumeDeliveryTasks(ctx, msgs)
		close(done)
	}()

	task := DeliveryTask{
		UserID: 100,
		Event:  MessageEvent{Event: "message", ID: 7, SenderID: 2, Text: "hi"},
	}
	msgs <- amqp.Delivery{Body: deliveryBody(t, task)}

	assert.Eventually(t, func() bool {
		return len(conn.sent()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var event MessageEvent
	assert.NoError(t, json.Unmarshal(conn.sent()[0], &event))
	assert.Equal(t, int64(7), event.ID)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop on context cancel")
	}
}

func TestConsumerStopsOnClosedChannel(t *testing.T) {
	msgs := make(chan amqp.Delivery)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		consumeDeliveryTasks(ctx, msgs)
		close(done)
	}()

	// Разрыв соединения с брокером: amqp закрывает канал доставок.
	// Консьюмер обязан завершиться, а не крутиться на нулевых значениях.
	close(msgs)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop when delivery channel closed")
	}
}

func TestConsumerSkipsMalformedTask(t *testing.T) {
	conn := &fakeConn{}
	GlobalConnRegistry.Add(101, conn)
	defer GlobalConnRegistry.Remove(101, conn)

	msgs := make(chan amqp.Delivery, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumeDeliveryTasks(ctx, msgs)

	msgs <- amqp.Delivery{Body: []byte("not json")}
	msgs <- amqp.Delivery{Body: deliveryBody(t, DeliveryTask{
		UserID: 101,
		Event:  MessageEvent{Event: "message", ID: 8, SenderID: 2, Text: "after garbage"},
	})}

	// Мусорная задача пропускается, следующая доставляется
	assert.Eventually(t, func() bool {
		return len(conn.sent()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
