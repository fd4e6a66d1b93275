package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/models"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", ServeWS(hub))
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connected clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	var envelope Envelope
	require.NoError(t, json.Unmarshal(message, &envelope))
	return envelope
}

func TestPublishReachesAllClients(t *testing.T) {
	hub, srv, _ := newHubServer(t)

	first := dialHub(t, srv)
	second := dialHub(t, srv)
	waitForClients(t, hub, 2)

	hub.Publish(models.EventSaleCompleted, models.SaleCompletedEvent{
		SaleID:     "s1",
		SaleNumber: "SALE-20260901-1",
	})

	for _, conn := range []*websocket.Conn{first, second} {
		envelope := readEnvelope(t, conn)
		assert.Equal(t, models.EventSaleCompleted, envelope.Event)

		var evt models.SaleCompletedEvent
		require.NoError(t, json.Unmarshal(envelope.Data, &evt))
		assert.Equal(t, "SALE-20260901-1", evt.SaleNumber)
	}
}

func TestPerProductEventOrderPreserved(t *testing.T) {
	hub, srv, _ := newHubServer(t)

	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	for _, qty := range []int{5, 4, 3} {
		hub.Publish(models.EventInventoryUpdated, models.InventoryUpdatedEvent{
			ProductID:        "p1",
			NewStockQuantity: qty,
		})
	}

	var got []int
	for i := 0; i < 3; i++ {
		envelope := readEnvelope(t, conn)
		require.Equal(t, models.EventInventoryUpdated, envelope.Event)
		var evt models.InventoryUpdatedEvent
		require.NoError(t, json.Unmarshal(envelope.Data, &evt))
		got = append(got, evt.NewStockQuantity)
	}
	assert.Equal(t, []int{5, 4, 3}, got, "a client never sees a stock value older than one it already applied")
}

func TestUserConnectedFrameDoesNotDisturbDelivery(t *testing.T) {
	hub, srv, _ := newHubServer(t)

	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	data, _ := json.Marshal(models.UserConnectedEvent{UserID: "u1", Role: "cashier"})
	frame, _ := json.Marshal(Envelope{Event: models.EventUserConnected, Data: data})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	// Give the read pump a beat, then make sure fan-out still works.
	time.Sleep(50 * time.Millisecond)
	hub.Publish(models.EventLowStockAlert, models.LowStockAlertEvent{
		ProductID: "p1", ProductName: "Espresso Roast", StockQuantity: 2,
	})

	envelope := readEnvelope(t, conn)
	assert.Equal(t, models.EventLowStockAlert, envelope.Event)
}

func TestDisconnectedClientIsDropped(t *testing.T) {
	hub, srv, _ := newHubServer(t)

	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// Publishing with nobody listening must not block or panic.
	hub.Publish(models.EventSaleCompleted, models.SaleCompletedEvent{SaleID: "s1"})
}
