package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/middleware"
)

// SnapshotFunc returns the current leaderboard of a class owned by ownerID.
// It fails with the store's not-found error for classes the owner cannot see.
type SnapshotFunc func(ctx context.Context, ownerID, classID uuid.UUID) (any, error)

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	snapshot SnapshotFunc
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, snapshot SnapshotFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		snapshot: snapshot,
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Live class scoreboard
// @Description Upgrades to a WebSocket that first sends the class leaderboard as a "snapshot" message, then a new leaderboard after every points change or group commit. Browsers pass the JWT in the token query parameter.
// @Tags scoreboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID" format(uuid)
// @Param token query string false "JWT access token"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.APIResponse "Invalid class ID"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Account authorization has expired"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Router /classes/{id}/scoreboard/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	classID, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.APIResponse{
			Error:     dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"),
			Timestamp: time.Now(),
		})
		return
	}

	board, err := h.snapshot(c.Request.Context(), userID, classID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	initial, err := json.Marshal(&Message{Type: MessageSnapshot, ClassID: classID, Payload: board, Timestamp: time.Now()})
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	boardJSON, _ := json.Marshal(board)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("classID", classID.String()).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		userID:  userID,
		classID: classID,
		logger:  h.logger,
	}
	client.send <- initial
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.resyncAfterRegister(userID, classID, boardJSON)

	h.logger.Info().
		Str("classID", classID.String()).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Scoreboard connection established")
}

// resyncAfterRegister reloads the leaderboard once the client is registered and
// publishes it if it changed since the initial snapshot. Updates published
// before registration never reach the new client.
func (h *Handler) resyncAfterRegister(userID, classID uuid.UUID, sent []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	board, err := h.snapshot(ctx, userID, classID)
	if err != nil {
		h.logger.Warn().Err(err).Str("classID", classID.String()).Msg("Failed to reload scoreboard after connect")
		return
	}
	current, err := json.Marshal(board)
	if err != nil || bytes.Equal(current, sent) {
		return
	}
	h.hub.Publish(classID, MessageSnapshot, board)
}
