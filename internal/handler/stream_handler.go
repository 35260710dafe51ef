package handler

import (
	"net/http"
	"time"

	"decision-console/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// StreamHandler 通过 websocket 推送会话快照，每次变化推一次最新状态
type StreamHandler struct {
	upgrader websocket.Upgrader
}

func NewStreamHandler() *StreamHandler {
	return &StreamHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	st := storeFrom(c)
	// 升级响应不会带上 c.Writer 里已有的头，会话 cookie 要显式传入
	header := http.Header{}
	for _, v := range c.Writer.Header().Values("Set-Cookie") {
		header.Add("Set-Cookie", v)
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		return
	}
	defer conn.Close()

	log := logger.Component("stream").With().Str("session_id", st.SessionID()).Logger()
	updates, cancel := st.Subscribe()
	defer cancel()

	// 读循环只用来感知断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeSnapshot(conn, st.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				// 会话已结束
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(writeWait))
				return
			}
			if err := writeSnapshot(conn, snap); err != nil {
				log.Debug().Err(err).Msg("推送快照失败")
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}
