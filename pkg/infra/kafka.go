package infra

import (
    "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaProducer streams per-case result events to a topic so CI dashboards
// can tail suite runs.
type KafkaProducer struct {
    Producer *kafka.Producer
    Topic    string
}

func NewKafkaProducer(bootstrapServers string, topic string) (*KafkaProducer, error) {
    p, err := kafka.NewProducer(&kafka.ConfigMap{
        "bootstrap.servers": bootstrapServers,
        "client.id":         "scylla-cqltest-producer",
        "acks":              "all",
    })
    if err != nil {
        return nil, err
    }

    return &KafkaProducer{Producer: p, Topic: topic}, nil
}

func (k *KafkaProducer) Publish(key string, payload []byte) error {
    deliveryChan := make(chan kafka.Event)

    err := k.Producer.Produce(&kafka.Message{
        TopicPartition: kafka.TopicPartition{Topic: &k.Topic, Partition: kafka.PartitionAny},
        Key:            []byte(key),
        Value:          payload,
    }, deliveryChan)

    if err != nil {
        return err
    }

    e := <-deliveryChan
    m := e.(*kafka.Message)

    if m.TopicPartition.Error != nil {
        return m.TopicPartition.Error
    }

    close(deliveryChan)
    return nil
}

func (k *KafkaProducer) Close() {
    k.Producer.Flush(15 * 1000)
    k.Producer.Close()
}
