package rmqconsumer

import (
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func Test_delivery_Table(t *testing.T) {
	type tc struct {
		name       string
		routingKey string
		body       string
		wantAction string
		wantUser   string
		wantErr    bool
	}
	cases := []tc{
		{
			name:       "file registered",
			routingKey: "file.registered",
			body:       `{"event_id":"e1","event_action":"file.registered","user_id":"u1","payload":{"name":"a.txt"}}`,
			wantAction: "file.registered",
			wantUser:   "u1",
		},
		{
			name:       "action falls back to routing key",
			routingKey: "user.registered",
			body:       `{"event_id":"e2","user_id":"u2"}`,
			wantAction: "user.registered",
			wantUser:   "u2",
		},
		{
			name:       "malformed body",
			routingKey: "file.deleted",
			body:       `{`,
			wantErr:    true,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			c := &Consumer{log: zap.New(core)}

			rec, err := c.delivery(amqp091.Delivery{RoutingKey: tt.routingKey, Body: []byte(tt.body)})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, 0, logs.Len())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, rec.Action)
			assert.Equal(t, tt.wantUser, rec.UserID)

			entries := logs.FilterMessage("audit").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantAction, entries[0].ContextMap()["action"])
		})
	}
}
