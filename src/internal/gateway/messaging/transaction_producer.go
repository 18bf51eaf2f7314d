package messaging

import (
	"campus-wallet/src/internal/model"
	"campus-wallet/src/pkg/kafka"
	"campus-wallet/src/pkg/log"
)

const DefaultTransactionTopic = "wallet-transaction-completed"

type TransactionProducer struct {
	CompletedProducer Producer[*model.TransactionEvent]
}

func NewTransactionProducer(producer kafka.Producer, topic string, log log.Log) *TransactionProducer {
	if topic == "" {
		topic = DefaultTransactionTopic
	}
	return &TransactionProducer{
		CompletedProducer: Producer[*model.TransactionEvent]{
			Producer: producer,
			Topic:    topic,
			Log:      log,
		},
	}
}

func (p *TransactionProducer) SendTransactionCompleted(event *model.TransactionEvent) error {
	return p.CompletedProducer.Send(event)
}
