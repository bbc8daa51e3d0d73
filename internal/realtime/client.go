package realtime

import (
	"sync"

	"github.com/google/uuid"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

const outboundBuffer = 32

// Client is one authenticated connection, whatever its transport.
type Client struct {
	ID        uuid.UUID
	Principal types.Principal
	Rooms     map[string]bool
	Outbound  chan Message
	Logger    *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed when the hub drops the client.
func (c *Client) Done() <-chan struct{} { return c.done }
