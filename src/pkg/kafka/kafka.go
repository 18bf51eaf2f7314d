package kafka

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"campus-wallet/src/pkg/log"

	"github.com/IBM/sarama"
)

type Producer interface {
	Publish(topic string, key, value []byte) error
	Close() error
}

type Cfg struct {
	Brokers       string
	KafkaUsername string
	KafkaPassword string
	AppName       string
}

type KafkaConfig struct {
	Brokers       []string
	Username      string
	Password      string
	SaslMechanism string
	AppName       string
}

func InitKafkaConfig(cfg Cfg) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers:       brokers,
		Username:      cfg.KafkaUsername,
		Password:      cfg.KafkaPassword,
		AppName:       cfg.AppName,
		SaslMechanism: sarama.SASLTypePlaintext,
	}
}

func (kc KafkaConfig) SaramaConfig() *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = kc.AppName
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Return.Successes = true
	c.Producer.Retry.Max = 3
	c.Producer.Retry.Backoff = 500 * time.Millisecond
	c.Producer.Idempotent = false
	c.Net.DialTimeout = 5 * time.Second
	c.Metadata.Retry.Backoff = 200 * time.Millisecond

	if kc.Username != "" {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLMechanism(kc.SaslMechanism)
		c.Net.SASL.User = kc.Username
		c.Net.SASL.Password = kc.Password
		c.Net.TLS.Enable = true
		c.Net.TLS.Config = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return c
}

type syncProducer struct {
	producer sarama.SyncProducer
	log      log.Log
}

func NewProducer(kc KafkaConfig, logger log.Log) (Producer, error) {
	if len(kc.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}
	p, err := sarama.NewSyncProducer(kc.Brokers, kc.SaramaConfig())
	if err != nil {
		return nil, err
	}
	return NewProducerFromSarama(p, logger), nil
}

// NewProducerFromSarama wraps an existing sarama producer, e.g. sarama/mocks in tests.
func NewProducerFromSarama(p sarama.SyncProducer, logger log.Log) Producer {
	return &syncProducer{producer: p, log: logger}
}

func (p *syncProducer) Publish(topic string, key, value []byte) error {
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return err
	}
	p.log.Info("kafka", "message published", "Publish", fmt.Sprintf("topic=%s partition=%d offset=%d", topic, partition, offset))
	return nil
}

func (p *syncProducer) Close() error {
	return p.producer.Close()
}
