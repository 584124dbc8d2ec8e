package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"heartcheck/assessment"
)

const wsIdleTimeout = 2 * time.Minute

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsError struct {
	Error string `json:"error"`
}

// handleAssessSocket 实时评估: 每条文本消息是一次提交, 每次回复一个结果或错误
func (h *Handlers) handleAssessSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The request deadline does not apply to the connection lifetime.
	ctx := context.WithoutCancel(r.Context())
	requestID := GetRequestID(ctx)
	conn.SetReadLimit(h.maxMsg)

	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read", zap.String("request_id", requestID), zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			if err := conn.WriteJSON(wsError{Error: "expected a text message"}); err != nil {
				return
			}
			continue
		}

		reply := h.assessMessage(ctx, payload)
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("websocket write", zap.String("request_id", requestID), zap.Error(err))
			return
		}
	}
}

func (h *Handlers) assessMessage(ctx context.Context, payload []byte) interface{} {
	submission := assessment.DefaultSubmission()
	if err := json.Unmarshal(payload, &submission); err != nil {
		return wsError{Error: "invalid request: " + err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, h.msgTTL)
	defer cancel()
	result, err := h.assessor.Assess(ctx, submission)
	if err != nil {
		if !errors.Is(err, assessment.ErrInvalidSubmission) {
			h.logger.Warn("websocket assessment failed", zap.Error(err))
		}
		return wsError{Error: err.Error()}
	}
	return result
}
