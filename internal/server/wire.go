package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/propwrite/propwrite/internal/core"
)

// The editor keeps a websocket open while a brochure generates so the
// user sees progress instead of a spinner. One connection serves many
// generate requests; requests are processed in arrival order.

// clientMessage is the envelope for client-to-server messages.
type clientMessage struct {
	Type string          `json:"type"` // "generate", "ping"
	ID   string          `json:"id"`   // client-assigned request id
	Data json.RawMessage `json:"data,omitempty"`
}

// serverMessage is the envelope for server-to-client messages.
type serverMessage struct {
	Type      string `json:"type"` // "progress", "variants", "done", "error", "pong"
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// progressData reports a pipeline stage change.
type progressData struct {
	Stage   string `json:"stage"`
	Message string `json:"message,omitempty"`
}

// errorData carries a structured error.
type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GenerateStream upgrades to a websocket and runs the message loop.
func (h *Handler) GenerateStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("server: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return // client went away or context cancelled
		}

		switch msg.Type {
		case "ping":
			h.send(ctx, conn, serverMessage{Type: "pong", RequestID: msg.ID})
		case "generate":
			h.streamGeneration(ctx, conn, msg)
		default:
			h.send(ctx, conn, serverMessage{
				Type:      "error",
				RequestID: msg.ID,
				Data:      errorData{Code: "UNKNOWN_TYPE", Message: "unknown message type " + msg.Type},
			})
		}
	}
}

func (h *Handler) streamGeneration(ctx context.Context, conn *websocket.Conn, msg clientMessage) {
	var req generateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		h.send(ctx, conn, serverMessage{
			Type: "error", RequestID: msg.ID,
			Data: errorData{Code: "BAD_JSON", Message: err.Error()},
		})
		return
	}
	if req.Variants < 1 {
		req.Variants = 3
	}
	if err := req.Validate(); err != nil {
		h.send(ctx, conn, serverMessage{
			Type: "error", RequestID: msg.ID,
			Data: errorData{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	started := time.Now()
	if req.IncludeEnrichment && req.Location.Postcode != "" {
		h.send(ctx, conn, serverMessage{
			Type: "progress", RequestID: msg.ID,
			Data: progressData{Stage: "enrichment", Message: "looking up local amenities"},
		})
	}
	h.send(ctx, conn, serverMessage{
		Type: "progress", RequestID: msg.ID,
		Data: progressData{Stage: "generation", Message: "writing copy variants"},
	})

	resp, err := h.runGeneration(ctx, req.GenerateRequest, req.Variants)
	if err != nil {
		h.send(ctx, conn, serverMessage{
			Type: "error", RequestID: msg.ID,
			Data: errorData{Code: generationErrorCode(err), Message: err.Error()},
		})
		return
	}

	h.send(ctx, conn, serverMessage{Type: "variants", RequestID: msg.ID, Data: resp})
	h.send(ctx, conn, serverMessage{
		Type: "done", RequestID: msg.ID,
		Data: map[string]any{
			"variant_count": len(resp.Variants),
			"elapsed":       time.Since(started).Round(time.Millisecond).String(),
		},
	})
}

func generationErrorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, core.ErrProviderUnavailable):
		return "PROVIDER_UNAVAILABLE"
	case errors.Is(err, core.ErrGeneration):
		return "GENERATION_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg serverMessage) {
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := wsjson.Write(writeCtx, conn, msg); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}
