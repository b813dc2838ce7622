package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "test-session-secret-for-controllers"

func TestCartController_Stream(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	catalogRepo := repository.NewCatalogRepository(testDB)
	product := &model.Product{Slug: "amaro", Title: "Amaro", Price: model.PriceOf(10)}
	require.NoError(t, catalogRepo.CreateProduct(product))

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	registry := cart.NewRegistry(cart.WithObserver(hub.Publish))
	cartService := service.NewCartService(catalogRepo, registry, nil)
	cartController := NewCartController(cartService, hub, ws.NewUpgrader([]string{"*"}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	sessions := middleware.NewSessionMiddleware(testSessionSecret)
	router.GET("/cart/ws", sessions.Require(), cartController.Stream)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		cancel()
		<-stopped
		server.Close()
	})

	token, err := util.GenerateSessionToken("", testSessionSecret, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/cart/ws?token=" + token.Token
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := readCartEvent(t, conn)
	assert.Equal(t, ws.EventCartUpdated, initial.Type)
	assert.Equal(t, 0, initial.Cart.Count)

	require.Eventually(t, func() bool {
		return hub.Connections(token.SessionID) == 1
	}, time.Second, 10*time.Millisecond)

	_, err = cartService.AddItem(token.SessionID, product.ID, "", 3)
	require.NoError(t, err)

	updated := readCartEvent(t, conn)
	assert.Equal(t, uint64(1), updated.Cart.Version)
	assert.Equal(t, 3, updated.Cart.TotalItems)
	assert.Equal(t, float64(30), updated.Cart.Total)

	// another session's change is not delivered
	_, err = cartService.AddItem("someone-else", product.ID, "", 1)
	require.NoError(t, err)
	cartService.ClearCart(token.SessionID)

	cleared := readCartEvent(t, conn)
	assert.Equal(t, uint64(2), cleared.Cart.Version)
	assert.Equal(t, 0, cleared.Cart.Count)
}

func TestCartController_Stream_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	sessions := middleware.NewSessionMiddleware(testSessionSecret)
	cartController := NewCartController(nil, ws.NewHub(), ws.NewUpgrader([]string{"*"}))
	router.GET("/cart/ws", sessions.Require(), cartController.Stream)

	server := httptest.NewServer(router)
	defer server.Close()

	_, resp, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/cart/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func readCartEvent(t *testing.T, conn *gorillaws.Conn) ws.CartEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event ws.CartEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}
