package ports

import (
	"palmr-api/internal/infrastructure/mq"
)

type EventPublisher interface {
	Publish(e mq.Event)
}
