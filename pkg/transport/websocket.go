package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 1 << 20
	wsInboxSize    = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// WS adapts a websocket connection to Channel using binary messages.
type WS struct {
	conn *websocket.Conn
	log  *zap.Logger
	in   chan []byte
	done chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

var _ Channel = (*WS)(nil)

func newWS(conn *websocket.Conn, log *zap.Logger) *WS {
	if log == nil {
		log = zap.NewNop()
	}
	conn.SetReadLimit(maxMessageSize)
	c := &WS{
		conn: conn,
		log:  log.With(zap.String("peer", conn.RemoteAddr().String())),
		in:   make(chan []byte, wsInboxSize),
		done: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Dial connects to a websocket endpoint served by Handler.
func Dial(ctx context.Context, url string, log *zap.Logger) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newWS(conn, log), nil
}

// Handler upgrades each request and passes the channel to accept. accept
// owns the channel and must close it.
func Handler(accept func(*WS), log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		accept(newWS(conn, log))
	})
}

func (c *WS) readLoop() {
	defer sentry.Recover()
	defer close(c.in)
	for {
		kind, b, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				select {
				case <-c.done:
				default:
					c.log.Debug("websocket read ended", zap.Error(err))
				}
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		select {
		case c.in <- b:
		case <-c.done:
			return
		}
	}
}

func (c *WS) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return fmt.Errorf("websocket send: %w", err)
	}
	return nil
}

func (c *WS) Recv() <-chan []byte { return c.in }

// Close sends a close frame and closes the connection.
func (c *WS) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
