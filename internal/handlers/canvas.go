// internal/handlers/canvas.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pixelmural/mural-backend/internal/feed"
	"github.com/pixelmural/mural-backend/internal/grid"
	"github.com/pixelmural/mural-backend/internal/services"
	"github.com/pixelmural/mural-backend/internal/utils"
)

type CanvasHandler struct {
	canvasService *services.CanvasService
	broadcaster   *feed.Broadcaster
}

func NewCanvasHandler(canvasService *services.CanvasService, broadcaster *feed.Broadcaster) *CanvasHandler {
	return &CanvasHandler{
		canvasService: canvasService,
		broadcaster:   broadcaster,
	}
}

// cellView is the wire shape of a cell. Artwork rides as base64.
type cellView struct {
	ID           int                 `json:"id"`
	Col          int                 `json:"col"`
	Row          int                 `json:"row"`
	Owned        bool                `json:"owned"`
	OwnerName    string              `json:"owner_name,omitempty"`
	Price        int64               `json:"price"`
	FillColor    string              `json:"fill_color"`
	Artwork      []byte              `json:"artwork,omitempty"`
	PriceHistory []grid.HistoryEntry `json:"price_history,omitempty"`
}

func newCellView(c *grid.Cell, dims grid.Dimensions) cellView {
	col, row, _ := dims.PositionOf(c.ID)
	return cellView{
		ID:           c.ID,
		Col:          col,
		Row:          row,
		Owned:        c.Owned(),
		OwnerName:    c.OwnerName,
		Price:        c.Price,
		FillColor:    c.FillColor,
		Artwork:      c.Artwork,
		PriceHistory: c.PriceHistory,
	}
}

// GET /canvas
func (h *CanvasHandler) GetCanvas(c *gin.Context) {
	dims := h.canvasService.Dimensions()
	cells := h.canvasService.Snapshot()

	views := make([]cellView, len(cells))
	for i, cell := range cells {
		views[i] = newCellView(cell, dims)
	}

	utils.SuccessResponse(c, gin.H{
		"width":  dims.Width,
		"height": dims.Height,
		"cells":  views,
	})
}

// GET /canvas/stats
func (h *CanvasHandler) GetStats(c *gin.Context) {
	utils.SuccessResponse(c, h.canvasService.Stats())
}

// GET /canvas/feed
//
// Server-sent events. Each store change delivers the full cell set; a
// heartbeat comment keeps idle proxies from closing the stream.
func (h *CanvasHandler) StreamFeed(c *gin.Context) {
	// The stream outlives the server's write timeout; lift the deadline on
	// this response only.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		logrus.WithError(err).Warn("Failed to clear write deadline for canvas feed")
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	sub := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(sub)

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC().Format(time.RFC3339))
			return true
		case records, ok := <-sub.C:
			if !ok {
				return false
			}
			payload, err := json.Marshal(records)
			if err != nil {
				logrus.WithError(err).Warn("Failed to encode canvas feed event")
				return true
			}
			c.SSEvent("canvas", string(payload))
			return true
		}
	})
}
