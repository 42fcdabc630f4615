package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"punogaria/internal/models"
	"punogaria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
	outBuffer  = 4
)

// Envelope types sent over the simulation stream.
const (
	envFrame = "frame"
	envReset = "reset"
	envDone  = "done"
	envError = "error"
)

// wsEnvelope is the single message shape of the stream.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins once the dashboard host is fixed
}

var errClientGone = errors.New("websocket client gone")

// wsSink hands frames to the writer loop. It blocks while the loop is busy and
// gives up once the loop has exited.
type wsSink struct {
	out  chan<- wsEnvelope
	gone <-chan struct{}
}

func (s wsSink) Render(ctx context.Context, f models.Frame) error {
	select {
	case s.out <- wsEnvelope{Type: envFrame, Data: f}:
		return nil
	case <-s.gone:
		return errClientGone
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset ignores ctx: it is sent after cancelled runs too.
func (s wsSink) Reset(_ context.Context, r models.ProgressReset) error {
	select {
	case s.out <- wsEnvelope{Type: envReset, Data: r}:
	case <-s.gone:
	}
	return nil
}

// @Summary      Stream simulation (WebSocket)
// @Description  Upgrades to a WebSocket and runs the automatic loop, sending "frame" envelopes per step, one "reset" at the end, then "done" with the run result or "error". Closing the socket stops the run.
// @Tags         simulation
// @Param        X-Session-ID  header  string  true   "Session id"
// @Param        iterations    query   int     false  "Number of steps (default 20)"
// @Param        interval      query   string  false  "Pause between steps, e.g. 1s"
// @Param        interval_ms   query   int     false  "Pause between steps in milliseconds"
// @Param        threshold     query   number  false  "Humidity threshold override, 10..100"
// @Success      101
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/simulation/ws [get]
func (h *Handler) simulationStream(c *gin.Context) {
	p, err := h.parseRunParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sessionID := currentSession(c).ID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The reader detects disconnects; a disconnect cancels the run.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out := make(chan wsEnvelope, outBuffer)
	writerGone := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(out)
		res, err := h.services.Simulation.Run(ctx, sessionID, p, wsSink{out: out, gone: writerGone})
		final := wsEnvelope{Type: envDone, Data: res}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, errClientGone) {
				return
			}
			final = wsEnvelope{Type: envError, Error: streamErrorMessage(err)}
		}
		select {
		case out <- final:
		case <-writerGone:
		}
	}()

	h.writeLoop(conn, out, done, sessionID)
	close(writerGone)
	cancel()
	<-finished
}

// writeLoop forwards envelopes and pings until out closes or the peer goes
// away.
func (h *Handler) writeLoop(conn *websocket.Conn, out <-chan wsEnvelope, done <-chan struct{}, sessionID string) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err, "session_id", sessionID)
				}
				return
			}
		case env, ok := <-out:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "simulation finished"))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err, "session_id", sessionID)
				}
				return
			}
		}
	}
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// streamErrorMessage hides internal failures behind a generic text.
func streamErrorMessage(err error) string {
	if statusFor(err) < http.StatusInternalServerError {
		return err.Error()
	}
	return "simulation failed"
}

var _ service.DisplaySink = wsSink{}
