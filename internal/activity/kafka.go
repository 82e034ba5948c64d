package activity

import (
	"context"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-retail-backoffice/internal/kafka"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	EventActivityRecorded = "ActivityRecorded"
	DefaultTopic          = "retail.activity"
)

// Publisher is what *kafka.Producer offers.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

// KafkaRecorder ships entries to a topic; cmd/audit persists them.
type KafkaRecorder struct {
	Producer Publisher
	Service  string
}

func (k *KafkaRecorder) Record(ctx context.Context, e Entry) error {
	ev := kafkax.Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventActivityRecorded,
		EventVersion:  1,
		OccurredAt:    e.CreatedAt,
		Producer:      k.Service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: e.ID,
		Payload:       kafkax.MustMarshal(e),
	}
	// partition per user supaya urutan aksi satu user terjaga
	return k.Producer.Publish(ctx, []byte(e.UserID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventActivityRecorded)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// Sink is the consumer side: decode the envelope and write the entry.
type Sink struct {
	Store   Recorder
	Log     logrus.FieldLogger
	Timeout time.Duration
}

func (s *Sink) HandleMessage(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		// pesan rusak tidak akan pernah berhasil; commit saja
		s.Log.WithError(err).WithField("offset", m.Offset).Warn("drop malformed activity event")
		return nil
	}
	if env.EventType != EventActivityRecorded {
		return nil
	} // ignore

	e, err := kafkax.UnwrapPayload[Entry](env.Payload)
	if err != nil {
		s.Log.WithError(err).WithField("event_id", env.EventID).Warn("drop malformed activity payload")
		return nil
	}
	if e.ID == "" {
		e.ID = env.EventID
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if err := s.Store.Record(ctx, e); err != nil {
		return fmt.Errorf("persist activity %s: %w", e.ID, err)
	}
	return nil
}
