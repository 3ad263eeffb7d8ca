package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/domain/statistic"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/enum"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/ethutil"
	"github.com/wtfpad/backend/pkg/pubsub"
	"github.com/wtfpad/backend/pkg/xcontext"
)

const (
	boardSize      = 100
	connBufferSize = 16
)

var allTimeframes = []model.Timeframe{model.Daily, model.Weekly, model.Monthly, model.AllTime}

type connection struct {
	id        string
	timeframe model.Timeframe
	wallet    string

	c        chan *Message
	done     chan struct{}
	once     sync.Once
	lastSent atomic.Int64
}

func (c *connection) close() {
	c.once.Do(func() { close(c.done) })
}

// send never blocks, a connection which cannot keep up misses messages and
// is eventually dropped as idle.
func (c *connection) send(msg *Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.c <- msg:
		return true
	default:
		return false
	}
}

// Hub pushes leaderboard snapshots to server-sent event connections.
type Hub struct {
	leaderboard statistic.Leaderboard
	refresh     chan struct{}

	// mu serializes registration, reads go through conns only.
	mu    sync.Mutex
	conns *xsync.MapOf[string, *connection]
}

func NewHub(leaderboard statistic.Leaderboard) *Hub {
	return &Hub{
		leaderboard: leaderboard,
		conns:       xsync.NewMapOf[*connection](),
		refresh:     make(chan struct{}, 1),
	}
}

// Start sends heartbeats, drops idle connections and runs pending broadcasts
// until ctx is done.
func (h *Hub) Start(ctx context.Context) {
	cfg := xcontext.Configs(ctx).Stream
	ticker := time.NewTicker(cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.conns.Range(func(id string, conn *connection) bool {
				h.unregister(conn)
				return true
			})
			return

		case now := <-ticker.C:
			h.dropIdle(ctx, now, cfg.IdleTimeout)
			h.heartbeat(now)

		case <-h.refresh:
			h.Broadcast(ctx, "")
		}
	}
}

// Notify schedules a broadcast of every timeframe. Bursts of notifications
// collapse into one broadcast.
func (h *Hub) Notify() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// HandleEvent is the subscriber callback for xp and rotation events.
func (h *Hub) HandleEvent(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	switch pack.Topic {
	case common.TopicXPAwarded, common.TopicRotationCompleted:
		h.Notify()
	default:
		xcontext.Logger(ctx).Warnf("Unexpected topic %s on leaderboard stream", pack.Topic)
	}
}

func (h *Hub) Size() int {
	return h.conns.Size()
}

// Broadcast pushes a fresh board to every connection of timeframe, or of all
// timeframes when it is empty.
func (h *Hub) Broadcast(ctx context.Context, timeframe model.Timeframe) {
	if h.conns.Size() == 0 {
		return
	}

	timeframes := allTimeframes
	if timeframe != "" {
		timeframes = []model.Timeframe{timeframe}
	}

	for _, tf := range timeframes {
		var board []model.LeaderboardEntry
		loaded := false

		h.conns.Range(func(id string, conn *connection) bool {
			if conn.timeframe != tf {
				return true
			}

			if !loaded {
				var err error
				board, err = h.leaderboard.GetLeaderboard(ctx, model.SortByTotalXP, tf, boardSize)
				if err != nil {
					xcontext.Logger(ctx).Errorf("Cannot load %s leaderboard to broadcast: %v", tf, err)
					return false
				}
				loaded = true
			}

			conn.send(h.boardMessage(ctx, LeaderboardUpdate, conn, board))
			return true
		})
	}
}

// Serve streams the leaderboard to one client until the request ends or the
// connection is dropped. Query parameters: timeframe, wallet and id.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter) error {
	req := xcontext.HTTPRequest(ctx)
	query := req.URL.Query()

	timeframe := model.AllTime
	if tf := query.Get("timeframe"); tf != "" {
		parsed, err := enum.ToEnum[model.Timeframe](tf)
		if err != nil {
			return errorx.New(errorx.BadRequest, "Invalid timeframe %s", tf)
		}
		timeframe = parsed
	}

	wallet := ""
	if raw := query.Get("wallet"); raw != "" {
		normalized, err := ethutil.NormalizeAddress(raw)
		if err != nil {
			return errorx.New(errorx.BadRequest, "Invalid wallet %s", raw)
		}
		wallet = normalized
	}

	id := query.Get("id")
	if id == "" {
		id = uuid.NewString()
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		return errorx.New(errorx.Internal, "Streaming is not supported")
	}

	conn := &connection{
		id:        id,
		timeframe: timeframe,
		wallet:    wallet,
		c:         make(chan *Message, connBufferSize),
		done:      make(chan struct{}),
	}
	conn.lastSent.Store(time.Now().UnixNano())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.register(conn)
	defer h.unregister(conn)
	xcontext.Logger(ctx).Debugf("Stream %s opened (timeframe %s, connections %d)", id, timeframe, h.conns.Size())

	conn.send(h.initialMessage(ctx, conn))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-conn.done:
			return nil
		case msg := <-conn.c:
			if err := write(w, flusher, msg); err != nil {
				xcontext.Logger(ctx).Debugf("Stream %s closed: %v", id, err)
				return nil
			}
			conn.lastSent.Store(time.Now().UnixNano())
		}
	}
}

func (h *Hub) register(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A reconnecting client may reuse its id.
	if old, loaded := h.conns.Load(conn.id); loaded {
		old.close()
		common.PromGauges[common.StreamConnections].WithLabelValues(string(old.timeframe)).Dec()
	}

	h.conns.Store(conn.id, conn)
	common.PromGauges[common.StreamConnections].WithLabelValues(string(conn.timeframe)).Inc()
}

func (h *Hub) unregister(conn *connection) {
	conn.close()

	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.conns.Load(conn.id); ok && current == conn {
		h.conns.Delete(conn.id)
		common.PromGauges[common.StreamConnections].WithLabelValues(string(conn.timeframe)).Dec()
	}
}

func (h *Hub) dropIdle(ctx context.Context, now time.Time, timeout time.Duration) {
	h.conns.Range(func(id string, conn *connection) bool {
		if now.Sub(time.Unix(0, conn.lastSent.Load())) > timeout {
			xcontext.Logger(ctx).Infof("Drop idle stream %s", id)
			h.unregister(conn)
		}
		return true
	})
}

func (h *Hub) heartbeat(now time.Time) {
	msg := &Message{Type: Heartbeat, Timestamp: now.UnixMilli()}
	h.conns.Range(func(id string, conn *connection) bool {
		conn.send(msg)
		return true
	})
}

func (h *Hub) initialMessage(ctx context.Context, conn *connection) *Message {
	board, err := h.leaderboard.GetLeaderboard(ctx, model.SortByTotalXP, conn.timeframe, boardSize)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load initial leaderboard: %v", err)
		return &Message{
			Type:      Error,
			Message:   "Failed to load leaderboard data",
			Timestamp: time.Now().UnixMilli(),
		}
	}

	return h.boardMessage(ctx, InitialData, conn, board)
}

func (h *Hub) boardMessage(
	ctx context.Context, msgType MessageType, conn *connection, board []model.LeaderboardEntry,
) *Message {
	msg := &Message{
		Type:        msgType,
		Timeframe:   string(conn.timeframe),
		Leaderboard: board,
		Timestamp:   time.Now().UnixMilli(),
	}

	if conn.wallet != "" {
		rank, err := h.leaderboard.GetRank(ctx, conn.wallet, model.SortByTotalXP, conn.timeframe)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get rank of %s: %v", conn.wallet, err)
		}
		msg.UserRank = rank
	}

	return msg
}

func write(w http.ResponseWriter, flusher http.Flusher, msg *Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
		return err
	}

	flusher.Flush()
	return nil
}
