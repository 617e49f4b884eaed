package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"amserver/controller/wsserver"
	"amserver/logger"
	"amserver/model"
)

type State int

const (
	Stopped State = iota
	Watching
)

const (
	defaultPollInterval = time.Second
	maxBackoff          = time.Minute
)

var ErrAlreadyWatching = errors.New("watcher is already watching")

// Watcher is the change feed over the alarm_events table. The external
// alarm panel writes rows directly, so inserts are observed by tailing the
// auto-increment id. Every row inserted while the watcher is running is
// forwarded to the distributor exactly once per process: the cursor only
// advances after a publish pass, and a poll error backs off and retries
// from the same cursor.
type Watcher struct {
	db       *gorm.DB
	dist     *wsserver.Distributor
	interval time.Duration
	log      *logrus.Entry

	mutex  sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	lastId uint
}

func New(db *gorm.DB, dist *wsserver.Distributor) *Watcher {
	return &Watcher{
		db:       db,
		dist:     dist,
		interval: defaultPollInterval,
		log:      logger.Log.WithFields(logrus.Fields{"func": "alarm_event_watcher"}),
	}
}

func (w *Watcher) State() State {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.state
}

// Start positions the cursor at the newest existing row and begins
// forwarding inserts that land after it.
func (w *Watcher) Start(ctx context.Context) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.state == Watching {
		return ErrAlreadyWatching
	}
	var lastId uint
	err := w.db.Model(&model.AlarmEvent{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&lastId).Error
	if err != nil {
		return err
	}
	w.lastId = lastId
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.state = Watching
	go w.run(ctx)
	w.log.Info("Watching alarm_events from id ", lastId)
	return nil
}

func (w *Watcher) Stop() {
	w.mutex.Lock()
	if w.state != Watching {
		w.mutex.Unlock()
		return
	}
	cancel := w.cancel
	done := w.done
	w.mutex.Unlock()
	cancel()
	<-done
	w.mutex.Lock()
	w.state = Stopped
	w.mutex.Unlock()
	w.log.Info("Watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	backoff := w.interval
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.poll()
			if err != nil {
				w.log.Error("Failed to poll alarm_events: ", err)
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
				continue
			}
			backoff = w.interval
		}
	}
}

func (w *Watcher) poll() error {
	var events []model.AlarmEvent
	err := w.db.Where("id > ?", w.lastId).Order("id asc").Find(&events).Error
	if err != nil {
		return err
	}
	for _, event := range events {
		w.dist.PublishAlarmEvent(event)
	}
	if len(events) > 0 {
		w.lastId = events[len(events)-1].ID
		w.log.Info(len(events), " alarm events forwarded, cursor at id ", w.lastId)
	}
	return nil
}
