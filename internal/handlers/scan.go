// internal/handlers/scan.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/mlft9/perimapp/internal/i18n"
	"github.com/mlft9/perimapp/internal/scanner"
	"github.com/mlft9/perimapp/internal/utils"
)

type ScanHandler struct {
	hub      *scanner.Hub
	upgrader websocket.Upgrader
}

func NewScanHandler(hub *scanner.Hub) *ScanHandler {
	return &ScanHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			// Origin is already enforced by the CORS layer; the websocket
			// handshake does not need a second gate.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type publishBarcodeRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// POST /scan-sessions
func (h *ScanHandler) CreateSession(c *gin.Context) {
	session := h.hub.Open()
	utils.CreatedResponse(c, gin.H{
		"session_id": session.ID,
	})
}

// POST /scan-sessions/:id/barcodes
//
// The scanning device reports each successful decode here.
func (h *ScanHandler) PublishBarcode(c *gin.Context) {
	session, ok := h.hub.Get(c.Param("id"))
	if !ok {
		utils.NotFoundResponse(c, i18n.KeyScanSessionNotFound)
		return
	}

	var req publishBarcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := session.Publish(req.Barcode); err != nil {
		if errors.Is(err, scanner.ErrSessionClosed) {
			utils.GoneResponse(c, i18n.KeyScanSessionClosed)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"accepted": true,
	})
}

// GET /scan-sessions/:id/ws
//
// The UI subscribes here and receives one JSON event per decoded barcode.
// Whichever happens first ends the subscription and releases the session:
// the client closing the socket, an explicit DELETE, or the idle reclaim.
func (h *ScanHandler) StreamEvents(c *gin.Context) {
	session, ok := h.hub.Get(c.Param("id"))
	if !ok {
		utils.NotFoundResponse(c, i18n.KeyScanSessionNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Reader goroutine: its only job is to notice the peer going away.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer session.Stop()
	for {
		select {
		case event, ok := <-session.Events():
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				logrus.WithError(err).WithField("session_id", session.ID).Warn("Failed to push scan event")
				return
			}
		case <-session.Done():
			return
		case <-clientGone:
			return
		}
	}
}

// DELETE /scan-sessions/:id
func (h *ScanHandler) DeleteSession(c *gin.Context) {
	// Stopping a session twice is fine, so an unknown id just reports done.
	if session, ok := h.hub.Get(c.Param("id")); ok {
		session.Stop()
	}

	utils.SuccessResponse(c, gin.H{
		"stopped": true,
	})
}
