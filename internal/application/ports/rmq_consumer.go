package ports

import "context"

// AuditConsumer reads published domain events back off the broker and
// records them.
type AuditConsumer interface {
	Connect(dsn string) error
	Init() error
	DeliveryWorker(ctx context.Context)
}
