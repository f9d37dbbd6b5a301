package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"stratus-server/internal/engine"
	"stratus-server/internal/network"
	"stratus-server/pkg/api"
	"stratus-server/pkg/logger"
	"stratus-server/pkg/utils"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и ареной.
// Token - контроллер, от имени которого идут команды (пустой - наблюдатель).
type Client struct {
	Arena     *engine.Arena
	Hub       *network.Broadcaster
	Conn      *websocket.Conn
	Send      chan api.ServerResponse
	SessionID string
	Token     string
	log       *logrus.Entry
}

func NewClient(arena *engine.Arena, hub *network.Broadcaster, conn *websocket.Conn) *Client {
	id := utils.GenerateID()
	return &Client{
		Arena:     arena,
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan api.ServerResponse, 256),
		SessionID: id,
		log:       logger.For("ws_client").WithField("session_id", id),
	}
}

// readPump читает команды от клиента
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c.SessionID)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Warn("failed to close websocket connection")
		}
		c.log.Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	// 1. HANDSHAKE: первая команда задает токен контроллера
	var login api.ClientCommand
	if err := c.Conn.ReadJSON(&login); err != nil {
		c.log.WithError(err).Warn("Handshake failed")
		return
	}
	if login.Token != "" {
		if _, ok := c.Arena.Combatant(login.Token); ok {
			c.Token = login.Token
		} else {
			c.log.WithField("token", login.Token).Warn("Unknown controller token, joining as observer")
		}
	}
	c.log.WithField("token", c.Token).Info("Client logged in")

	// 2. ПОДПИСКА НА СОБЫТИЯ
	updates := c.Hub.Register(c.SessionID)
	go func() {
		for msg := range updates {
			c.Send <- msg
		}
		close(c.Send)
	}()

	// INIT: арена ответит полным снимком
	c.Arena.Submit(api.ClientCommand{Action: "INIT", Token: c.Token, Payload: []byte("{}")})

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Errorf("WS Error: %v", err)
			}
			break
		}
		// Действовать можно только от имени контроллера сессии
		cmd.Token = c.Token
		if !c.Arena.Submit(cmd) {
			c.Hub.SendTo(c.SessionID, api.ServerResponse{
				Type:  api.MessageError,
				Time:  c.Arena.Clock(),
				Error: "command rejected: " + cmd.Action,
			})
		}
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
