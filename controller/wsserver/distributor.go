package wsserver

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"amserver/access"
	"amserver/logger"
	"amserver/model"
)

// MessageWriter is what the distributor needs from a connection.
// *WsConnection satisfies it; tests use stubs.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

type Session struct {
	ID     string
	Access access.Snapshot
	conn   MessageWriter
}

// Distributor fans detection alerts and alarm events out to every
// connected realtime session. Each session carries the access snapshot
// captured when it authenticated; publishes are fire-and-forget and hit a
// session at most once per call. The registry is shared between the
// connect/disconnect handlers and every publish, hence the lock.
type Distributor struct {
	mutex    sync.RWMutex
	sessions map[string]*Session
	log      *logrus.Entry
}

func NewDistributor() *Distributor {
	return &Distributor{
		sessions: map[string]*Session{},
		log:      logger.Log.WithFields(logrus.Fields{"conn-type": "websocket", "func": "distributor"}),
	}
}

func (d *Distributor) Register(sessionId string, snapshot access.Snapshot, conn MessageWriter) {
	d.mutex.Lock()
	d.sessions[sessionId] = &Session{
		ID:     sessionId,
		Access: snapshot,
		conn:   conn,
	}
	count := len(d.sessions)
	d.mutex.Unlock()
	d.log.Info("Session registered, now connected: ", count)
}

func (d *Distributor) Unregister(sessionId string) {
	d.mutex.Lock()
	delete(d.sessions, sessionId)
	count := len(d.sessions)
	d.mutex.Unlock()
	d.log.Info("Session unregistered, now connected: ", count)
}

func (d *Distributor) SessionCount() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return len(d.sessions)
}

// PublishAlert delivers a detection alert to every session whose snapshot
// covers the alert's camera.
func (d *Distributor) PublishAlert(alert model.Alert) {
	messageType := TypeGunAlert
	if alert.DetectionType == model.DetectionKnife {
		messageType = TypeKnifeAlert
	}
	data, _ := json.Marshal(AlertMessage{
		Type:    messageType,
		Payload: alert,
	})
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	for _, session := range d.sessions {
		if !session.Access.VisibleAlert(alert) {
			continue
		}
		if err := session.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			d.log.Warn("Failed to push alert to session ", session.ID, ": ", err)
		}
	}
}

// PublishAlarmEvent delivers an alarm event to every connected session,
// associated or not. Alarm scoping applies to REST reads and reports only;
// the socket channel is a plain broadcast.
func (d *Distributor) PublishAlarmEvent(event model.AlarmEvent) {
	data, _ := json.Marshal(AlarmEventMessage{
		Type:    TypeAlarmEvent,
		Payload: event,
	})
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	for _, session := range d.sessions {
		if err := session.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			d.log.Warn("Failed to push alarm event to session ", session.ID, ": ", err)
		}
	}
}
