package testutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/kafka"
)

// KafkaImage is the single-node broker used by integration tests.
const KafkaImage = "confluentinc/confluent-local:7.6.1"

// KafkaContainer is a disposable broker for integration tests.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// NewKafkaContainer starts a broker and registers teardown with t.Cleanup.
func NewKafkaContainer(ctx context.Context, t *testing.T) *KafkaContainer {
	t.Helper()

	container, err := kafka.Run(ctx, KafkaImage, kafka.WithClusterID("risk-engine-test"))
	if err != nil {
		t.Fatalf("start kafka container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	if err != nil {
		t.Fatalf("kafka brokers: %v", err)
	}
	return &KafkaContainer{Container: container, Brokers: brokers}
}

// Config returns client settings pointing at the container.
func (kc *KafkaContainer) Config(group string) pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       kc.Brokers,
		ClientID:      "risk-engine-test",
		ConsumerGroup: group,
	}
}

// CreateTopics creates single-partition topics through the cluster controller
// so consumers do not race topic auto-creation.
func (kc *KafkaContainer) CreateTopics(ctx context.Context, t *testing.T, topics ...string) {
	t.Helper()

	conn, err := kafkago.DialContext(ctx, "tcp", kc.Brokers[0])
	if err != nil {
		t.Fatalf("dial kafka: %v", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		t.Fatalf("kafka controller: %v", err)
	}
	ctrl, err := kafkago.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		t.Fatalf("dial kafka controller: %v", err)
	}
	defer ctrl.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	}
	if err := ctrl.CreateTopics(configs...); err != nil {
		t.Fatalf("create topics %v: %v", topics, err)
	}
}
