// internal/tests/canvas_api_test.go
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/pixelmural/mural-backend/internal/feed"
	"github.com/pixelmural/mural-backend/internal/grid"
	"github.com/pixelmural/mural-backend/internal/handlers"
	"github.com/pixelmural/mural-backend/internal/middleware"
	"github.com/pixelmural/mural-backend/internal/services"
	"github.com/pixelmural/mural-backend/internal/store"
	"github.com/pixelmural/mural-backend/internal/utils"
)

type okVerifier struct{}

func (okVerifier) VerifyPayment(context.Context, string, int64) error { return nil }

type CanvasAPITestSuite struct {
	suite.Suite
	router     *gin.Engine
	aliceToken string
	bobToken   string
}

func (suite *CanvasAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	board, err := grid.NewBoard(grid.Dimensions{Width: 5, Height: 4}, 1)
	suite.Require().NoError(err)

	broadcaster := feed.NewBroadcaster()
	canvasService := services.NewCanvasService(board, store.NewMemoryStore(), broadcaster, okVerifier{}, nil, nil)

	canvasHandler := handlers.NewCanvasHandler(canvasService, broadcaster)
	cellHandler := handlers.NewCellHandler(canvasService)

	suite.router = gin.New()
	suite.router.Use(middleware.I18nMiddleware())

	v1 := suite.router.Group("/v1")
	{
		v1.GET("/canvas", middleware.OptionalAuth(), canvasHandler.GetCanvas)
		v1.GET("/canvas/stats", middleware.OptionalAuth(), canvasHandler.GetStats)
		v1.GET("/cells/:id", middleware.OptionalAuth(), cellHandler.GetCell)
		v1.GET("/cells/:id/neighbors", middleware.OptionalAuth(), cellHandler.GetNeighbors)
		v1.POST("/cells/:id/quote", middleware.AuthRequired(), cellHandler.QuoteCell)
		v1.POST("/cells/:id/purchase", middleware.AuthRequired(), cellHandler.PurchaseCell)
		v1.PUT("/cells/:id/artwork", middleware.AuthRequired(), cellHandler.UpdateArtwork)
	}

	suite.aliceToken = suite.tokenFor("alice")
	suite.bobToken = suite.tokenFor("bob")
}

func (suite *CanvasAPITestSuite) tokenFor(username string) string {
	token, err := utils.GenerateJWT(uuid.New(), username, "member", 1)
	suite.Require().NoError(err)
	return token
}

func (suite *CanvasAPITestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CanvasAPITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// quote fetches a quote and returns the price and owner to echo back on
// purchase.
func (suite *CanvasAPITestSuite) quote(cellID int, token string) (int64, string) {
	w := suite.request("POST", fmt.Sprintf("/v1/cells/%d/quote", cellID), token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	data := suite.decode(w)["data"].(map[string]interface{})
	owner, _ := data["quoted_owner"].(string)
	return int64(data["price"].(float64)), owner
}

func (suite *CanvasAPITestSuite) purchase(cellID int, token string, price int64, owner string) *httptest.ResponseRecorder {
	return suite.request("POST", fmt.Sprintf("/v1/cells/%d/purchase", cellID), token, map[string]interface{}{
		"payment_intent_id": "pi_test",
		"quoted_price":      price,
		"quoted_owner":      owner,
	})
}

func (suite *CanvasAPITestSuite) TestGetCanvasReturnsFullGrid() {
	w := suite.request("GET", "/v1/canvas", "", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	data := suite.decode(w)["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(5), data["width"])
	assert.Equal(suite.T(), float64(4), data["height"])
	assert.Len(suite.T(), data["cells"], 20)
}

func (suite *CanvasAPITestSuite) TestQuoteRequiresAuth() {
	w := suite.request("POST", "/v1/cells/0/quote", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *CanvasAPITestSuite) TestPurchaseFlow() {
	price, owner := suite.quote(7, suite.aliceToken)
	assert.Equal(suite.T(), int64(1), price)
	assert.Empty(suite.T(), owner)

	w := suite.purchase(7, suite.aliceToken, price, owner)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	data := suite.decode(w)["data"].(map[string]interface{})
	cell := data["cell"].(map[string]interface{})
	assert.Equal(suite.T(), true, cell["owned"])
	assert.Equal(suite.T(), "alice", cell["owner_name"])

	// The next buyer pays double.
	price2, _ := suite.quote(7, suite.bobToken)
	assert.Equal(suite.T(), int64(2), price2)
}

func (suite *CanvasAPITestSuite) TestStaleQuoteConflicts() {
	alicePrice, aliceOwner := suite.quote(3, suite.aliceToken)
	bobPrice, bobOwner := suite.quote(3, suite.bobToken)

	w := suite.purchase(3, suite.aliceToken, alicePrice, aliceOwner)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.purchase(3, suite.bobToken, bobPrice, bobOwner)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *CanvasAPITestSuite) TestOwnerCannotRequote() {
	price, owner := suite.quote(4, suite.aliceToken)
	w := suite.purchase(4, suite.aliceToken, price, owner)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("POST", "/v1/cells/4/quote", suite.aliceToken, nil)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *CanvasAPITestSuite) TestArtworkRequiresOwnership() {
	price, owner := suite.quote(9, suite.aliceToken)
	w := suite.purchase(9, suite.aliceToken, price, owner)
	suite.Require().Equal(http.StatusOK, w.Code)

	body := map[string]interface{}{"artwork": []byte{0x01, 0x02}}

	w = suite.request("PUT", "/v1/cells/9/artwork", suite.bobToken, body)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request("PUT", "/v1/cells/9/artwork", suite.aliceToken, body)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *CanvasAPITestSuite) TestPublicReadsTolerateAnyToken() {
	// Public reads never reject on credentials: missing, malformed and
	// valid tokens all pass through.
	for _, token := range []string{"", "not-a-jwt", suite.aliceToken} {
		w := suite.request("GET", "/v1/cells/0", token, nil)
		assert.Equal(suite.T(), http.StatusOK, w.Code)

		w = suite.request("GET", "/v1/canvas", token, nil)
		assert.Equal(suite.T(), http.StatusOK, w.Code)
	}
}

func (suite *CanvasAPITestSuite) TestCellOutOfRange() {
	w := suite.request("GET", "/v1/cells/999", "", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request("GET", "/v1/cells/abc", "", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *CanvasAPITestSuite) TestStatsTrackPurchases() {
	price, owner := suite.quote(0, suite.aliceToken)
	w := suite.purchase(0, suite.aliceToken, price, owner)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/v1/canvas/stats", "", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	data := suite.decode(w)["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(20), data["total_cells"])
	assert.Equal(suite.T(), float64(1), data["purchased_cells"])
	assert.Equal(suite.T(), float64(19), data["available_cells"])
}

func TestCanvasAPISuite(t *testing.T) {
	suite.Run(t, new(CanvasAPITestSuite))
}
