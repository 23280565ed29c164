package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// message то, что получает клиент
type message struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
	SentAt time.Time       `json:"sent_at"`
}

// client одно websocket-подключение. Личность определяется один раз при подключении.
type client struct {
	userID uuid.UUID
	admin  bool
	conn   *websocket.Conn
	send   chan []byte
}

// Hub реестр подключений: персональный канал на каждого пользователя и общий канал администраторов
type Hub struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]map[*client]struct{}
	admins map[*client]struct{}

	upgrader websocket.Upgrader
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

func NewHub(logger *logrus.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		users:  make(map[uuid.UUID]map[*client]struct{}),
		admins: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		metrics: m,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[*client]struct{})
	}
	h.users[c.userID][c] = struct{}{}
	if c.admin {
		h.admins[c] = struct{}{}
	}
	h.metrics.ConnectionOpened()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.users[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.users, c.userID)
	}
	delete(h.admins, c)
	close(c.send)
	h.metrics.ConnectionClosed()
}

// Connections число открытых подключений пользователя
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Emit доставляет событие подключениям этого процесса
func (h *Hub) Emit(_ context.Context, ev models.RealtimeEvent) error {
	h.Deliver(ev)
	return nil
}

// Deliver рассылает событие адресатам. Клиент, попавший в несколько каналов, получает его один раз.
// Медленный клиент с заполненным буфером пропускает событие.
func (h *Hub) Deliver(ev models.RealtimeEvent) int {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now().UTC()
	}
	payload, err := json.Marshal(message{Event: ev.Name, Data: ev.Data, SentAt: ev.SentAt})
	if err != nil {
		h.logger.WithError(err).WithField("event", ev.Name).Error("Failed to encode realtime event")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := make(map[*client]struct{})
	for _, id := range ev.UserIDs {
		for c := range h.users[id] {
			targets[c] = struct{}{}
		}
	}
	if ev.Admin {
		for c := range h.admins {
			targets[c] = struct{}{}
		}
	}

	delivered := 0
	for c := range targets {
		select {
		case c.send <- payload:
			delivered++
		default:
			h.logger.WithFields(logrus.Fields{
				"event":   ev.Name,
				"user_id": c.userID,
			}).Warn("Realtime client buffer full, dropping event")
		}
	}
	return delivered
}

// ServeWS переводит запрос в websocket и обслуживает подключение до его закрытия
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &client{
		userID: actor.UserID,
		admin:  actor.IsAdmin(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)
	h.logger.WithFields(logrus.Fields{
		"user_id": actor.UserID,
		"role":    actor.Role,
	}).Debug("Realtime client connected")

	go h.writePump(c)
	h.readPump(c)
}

// readPump читает только служебные кадры; входящие сообщения клиента игнорируются
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).WithField("user_id", c.userID).Debug("Realtime client closed unexpectedly")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
