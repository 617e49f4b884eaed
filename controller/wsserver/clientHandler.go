package wsserver

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"time"

	"amserver/access"
	"amserver/authentication"
	"amserver/database"
	"amserver/logger"
)

// WsAlertsHandler upgrades the connection and registers the session with
// the distributor. Authentication is optional on this route: anonymous
// sessions get an empty access snapshot, which still receives alarm_event
// broadcasts but no detection alerts. The snapshot is resolved once, here;
// a reconnect is required to pick up changed camera/alarm links.
func WsAlertsHandler(dist *Distributor) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Log.WithFields(logrus.Fields{"conn-type": "websocket", "api": "alerts", "addr": c.Request.RemoteAddr})

		var snapshot access.Snapshot
		if claimsInterface, ok := c.Get("claims"); ok {
			claims := claimsInterface.(*authentication.Claims)
			resolved, err := access.Resolve(database.GormDB, claims.UserId)
			if err != nil {
				log.Warn("Failed to resolve access for user ", claims.UserId, ": ", err)
			} else {
				snapshot = resolved
			}
		}

		wsSocket, err := WsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error("Websocket error: ", err)
			return
		}
		sessionId := uuid.NewV4().String()
		log = log.WithFields(logrus.Fields{"session": sessionId})
		log.Info("Websocket established")

		wsConn := &WsConnection{
			wsSocket:         wsSocket,
			readChan:         make(chan *WsData, 1000),
			writeChan:        make(chan *WsData, 1000),
			hbChan:           make(chan string, 100),
			closeChan:        make(chan byte),
			log:              log,
			isClosed:         false,
			closeSent:        false,
			id:               sessionId,
			dropConnItemFunc: dist.Unregister,
		}
		dist.Register(sessionId, snapshot, wsConn)
		wsConn.wsSocket.SetPingHandler(wsConn.wsHeartbeatHandler)
		wsConn.wsSocket.SetCloseHandler(
			func(code int, text string) error {
				if !wsConn.isClosed {
					wsConn.isClosed = true
					message := websocket.FormatCloseMessage(code, "")
					_ = wsConn.wsSocket.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
					wsConn.dropConnItemFunc(sessionId)
					wsConn.log.Info("Websocket closed")
				}
				return nil
			})

		go wsConn.wsReadLoop()
		go wsConn.wsWriteLoop()
		go wsConn.wsHeartbeat()
		go wsConn.wsReadProcLoop()
	}
}
