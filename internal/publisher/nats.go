package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"resume-export/internal/domain"
)

// SubjectExportCompleted carries domain.ExportCompletedEvent payloads.
const SubjectExportCompleted = "cv.exports.completed"

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes export lifecycle events.
type NATSPublisher struct {
	nc NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: conn}
}

// Connect dials url and returns the connection alongside a publisher on it.
func Connect(url string) (*nats.Conn, *NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("resume-export"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to nats: %w", err)
	}
	return conn, NewNATSPublisher(conn), nil
}

// PublishExportCompleted publishes an export completed event
func (p *NATSPublisher) PublishExportCompleted(ctx context.Context, event domain.ExportCompletedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(SubjectExportCompleted, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
