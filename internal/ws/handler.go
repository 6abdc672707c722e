package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dk400/dk400/internal/engine"
	"github.com/dk400/dk400/internal/logging"
	"github.com/dk400/dk400/internal/monitoring"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/protocol"
	"github.com/dk400/dk400/internal/session"
)

// turnTimeout bounds one dispatched turn, collaborator calls included.
const turnTimeout = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware gates the upgrade request
	},
}

// Handler owns the WebSocket side of the protocol: one goroutine per
// connection reads action frames, dispatches them through the engine and
// writes the outcome frames back. All writes for a connection happen on
// its read loop, so no write lock is needed.
type Handler struct {
	engine  *engine.Engine
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandler creates a WebSocket handler. metrics may be nil in tests.
func NewHandler(eng *engine.Engine, metrics *monitoring.Metrics, log *logging.Logger) *Handler {
	return &Handler{
		engine:  eng,
		metrics: metrics,
		log:     log.Named("ws"),
	}
}

// HandleConnection upgrades the request and runs the connection's read
// loop until the client goes away or the engine ends the session.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.New().String()
	log := h.log.With(zap.String("conn", connID))
	log.Info("connection opened", zap.String("remote", c.ClientIP()))

	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	defer func() {
		h.engine.Close(connID)
		conn.Close()
		if h.metrics != nil {
			h.metrics.DecWSConnections()
			h.metrics.SetSessionsActive(h.engine.Sessions().Count())
		}
		log.Info("connection closed")
	}()

	reqCtx := c.Request.Context()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		in, err := protocol.Decode(data)
		if err != nil {
			// A malformed frame is the client's problem, not the session's.
			log.Warn("malformed frame", zap.Error(err))
			h.writeMessage(conn, session.Message{Text: "Invalid request", Level: session.LevelError})
			continue
		}

		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", in.Action)
		}

		if !h.dispatch(reqCtx, conn, connID, in, log) {
			return
		}
	}
}

// dispatch runs one turn and writes its outcome. It returns false when the
// session ended and the connection should close.
func (h *Handler) dispatch(reqCtx context.Context, conn *websocket.Conn, connID string, in *protocol.Inbound, log *logging.Logger) bool {
	ctx, cancel := context.WithTimeout(reqCtx, turnTimeout)
	defer cancel()

	var timer *monitoring.Timer
	if h.metrics != nil {
		timer = monitoring.NewTimer(h.metrics, in.Action)
		defer timer.Stop()
	}

	var out *engine.Outcome
	switch in.Action {
	case protocol.ActionInit:
		out = h.engine.Init(ctx, connID)
		if h.metrics != nil {
			h.metrics.IncSessionsTotal()
			h.metrics.SetSessionsActive(h.engine.Sessions().Count())
		}

	case protocol.ActionSubmit:
		out = h.engine.Submit(ctx, connID, in.FieldMap())

	case protocol.ActionFunctionKey:
		key := protocol.HotspotKey(in.Key)
		switch key {
		case "PageDown":
			out = h.engine.Roll(ctx, connID, pagination.Forward)
		case "PageUp":
			out = h.engine.Roll(ctx, connID, pagination.Backward)
		default:
			out = h.engine.FunctionKey(ctx, connID, key, in.FieldMap())
		}

	case protocol.ActionRoll:
		out = h.engine.Roll(ctx, connID, rollDirection(in.Direction))

	case protocol.ActionFieldUpdate:
		// Fire and forget; no frame goes back.
		h.engine.FieldUpdate(connID, in.Field, in.Value)
		return true

	default:
		log.Warn("unknown action", zap.String("action", in.Action))
		h.writeMessage(conn, session.Message{Text: "Unknown action " + in.Action, Level: session.LevelError})
		return true
	}

	return h.writeOutcome(conn, out)
}

// writeOutcome serializes an engine outcome into outbound frames.
func (h *Handler) writeOutcome(conn *websocket.Conn, out *engine.Outcome) bool {
	if out.Bell {
		h.writeRaw(conn, protocol.TypeBell, protocol.EncodeBell)
	}
	if out.Message != nil {
		h.writeMessage(conn, *out.Message)
	}
	if out.Frame != nil {
		h.writeRaw(conn, protocol.TypeScreen, func() ([]byte, error) {
			return protocol.EncodeScreen(out.Frame)
		})
	}
	if out.End {
		h.writeRaw(conn, protocol.TypeExit, protocol.EncodeExit)
		return false
	}
	return true
}

func (h *Handler) writeMessage(conn *websocket.Conn, m session.Message) {
	h.writeRaw(conn, protocol.TypeMessage, func() ([]byte, error) {
		return protocol.EncodeMessage(m)
	})
}

func (h *Handler) writeRaw(conn *websocket.Conn, frameType string, encode func() ([]byte, error)) {
	data, err := encode()
	if err != nil {
		h.log.Error("frame encode failed", zap.String("type", frameType), zap.Error(err))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.log.Warn("websocket write failed", zap.String("type", frameType), zap.Error(err))
		return
	}
	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", frameType)
	}
}

// rollDirection maps the wire direction to the pagination vocabulary.
// Anything unrecognized pages forward.
func rollDirection(dir string) pagination.Direction {
	switch dir {
	case "up", "backward":
		return pagination.Backward
	default:
		return pagination.Forward
	}
}
