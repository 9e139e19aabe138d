package det01

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	kafkaBatchSize    = 100
	kafkaWriteTimeout = 10 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRow is the JSON value of one CosmicData message. Messages are keyed
// by run UUID so that all rows of a run land in the same partition.
type KafkaRow struct {
	RunUUID   string             `json:"run_uuid"`
	RunNumber int                `json:"run_number"`
	Version   string             `json:"version"`
	Columns   map[string]float64 `json:"columns"`
}

// KafkaWriter streams ntuple rows to a topic. Histograms are written next to
// it as a YODA file.
type KafkaWriter struct {
	Brokers []string
	Topic   string
	yoda    *YodaWriter
	writer  messageWriter
	run     RunInfo
	columns []string
	batch   []kafka.Message
	Sent    int
}

func NewKafkaWriter(brokers []string, topic string, histoFile string) *KafkaWriter {
	return &KafkaWriter{
		Brokers: brokers,
		Topic:   topic,
		yoda:    NewYodaWriter(histoFile),
	}
}

func (w *KafkaWriter) Open(run RunInfo, schema *Schema) error {
	if len(w.Brokers) == 0 {
		return fmt.Errorf("kafka output requires at least one broker")
	}
	w.run = run
	w.columns = schema.ColumnNames()
	if w.writer == nil {
		w.writer = &kafka.Writer{
			Addr:         kafka.TCP(w.Brokers...),
			Topic:        w.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
	}
	logger.Info(fmt.Sprintf("Streaming %s to topic %s", NtupleName, w.Topic), "kafkawriter")
	return nil
}

func (w *KafkaWriter) AddRow(row Row) error {
	if w.columns == nil {
		return nil
	}
	msg := KafkaRow{
		RunUUID:   w.run.RunUUID.String(),
		RunNumber: w.run.RunNumber,
		Version:   w.run.Version,
		Columns:   make(map[string]float64, len(row.Values)),
	}
	for i, name := range w.columns {
		msg.Columns[name] = row.Values[i]
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	w.batch = append(w.batch, kafka.Message{Key: []byte(msg.RunUUID), Value: b, Time: time.Now()})
	if len(w.batch) >= kafkaBatchSize {
		return w.flush()
	}
	return nil
}

func (w *KafkaWriter) flush() error {
	if len(w.batch) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), kafkaWriteTimeout)
	defer cancel()
	if err := w.writer.WriteMessages(ctx, w.batch...); err != nil {
		return fmt.Errorf("error publishing %d rows to %s: %w", len(w.batch), w.Topic, err)
	}
	w.Sent += len(w.batch)
	w.batch = w.batch[:0]
	return nil
}

func (w *KafkaWriter) WriteHistograms(histos []Histogram) error {
	return w.yoda.WriteHistograms(histos)
}

func (w *KafkaWriter) Close() error {
	if w.writer == nil {
		return nil
	}
	return errors.Join(w.flush(), w.writer.Close())
}
