// internal/tests/feed_stream_test.go
package tests

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pixelmural/mural-backend/internal/feed"
	"github.com/pixelmural/mural-backend/internal/grid"
	"github.com/pixelmural/mural-backend/internal/handlers"
	"github.com/pixelmural/mural-backend/internal/models"
	"github.com/pixelmural/mural-backend/internal/services"
	"github.com/pixelmural/mural-backend/internal/store"
)

// The feed is a long-lived response served by an http.Server with a finite
// WriteTimeout. The handler must lift the write deadline, or the server cuts
// every stream before the first event arrives.
func TestFeedStreamOutlivesServerWriteTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	board, err := grid.NewBoard(grid.Dimensions{Width: 4, Height: 4}, 1)
	require.NoError(t, err)

	broadcaster := feed.NewBroadcaster()
	canvasService := services.NewCanvasService(board, store.NewMemoryStore(), broadcaster, okVerifier{}, nil, nil)
	canvasHandler := handlers.NewCanvasHandler(canvasService, broadcaster)

	router := gin.New()
	router.GET("/v1/canvas/feed", canvasHandler.StreamFeed)

	srv := httptest.NewUnstartedServer(router)
	srv.Config.WriteTimeout = time.Second
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/canvas/feed")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Publish only after the server's write deadline would have expired.
	go func() {
		time.Sleep(1500 * time.Millisecond)
		broadcaster.Publish([]models.CellRecord{{ID: 6, Price: 1}})
	}()

	type readResult struct {
		line string
		err  error
	}
	results := make(chan readResult, 1)
	go func() {
		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				results <- readResult{err: err}
				return
			}
			if strings.HasPrefix(line, "event:") {
				results <- readResult{line: line}
				return
			}
		}
	}()

	select {
	case res := <-results:
		require.NoError(t, res.err, "stream closed before the event arrived")
		require.Contains(t, res.line, "canvas")
	case <-time.After(5 * time.Second):
		t.Fatal("no feed event received")
	}
}
