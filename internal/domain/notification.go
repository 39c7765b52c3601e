package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/pubsub"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
	"golang.org/x/exp/slices"
)

const watcherBufferSize = 1024

var changeKinds = []model.ChangeKind{model.ChangeLike, model.ChangeFollow}

type NotificationDomain interface {
	// ServeWatch streams every change event to conn until the peer closes it
	// or ctx is done.
	ServeWatch(ctx context.Context, conn *websocket.Conn) error

	// Subscribe is the handler of the change event topics.
	Subscribe(ctx context.Context, topic string, pack *pubsub.Pack, t time.Time)
}

type notificationDomain struct {
	watchers *xsync.MapOf[string, chan []byte]
}

func NewNotificationDomain() *notificationDomain {
	return &notificationDomain{watchers: xsync.NewMapOf[chan []byte]()}
}

// register allows a watcher to receive every change event published after
// this point of time.
func (d *notificationDomain) register(watcherID string) (<-chan []byte, error) {
	c := make(chan []byte, watcherBufferSize)

	_, existed := d.watchers.LoadOrStore(watcherID, c)
	if existed {
		return nil, errors.New("the watcher has already registered")
	}

	return c, nil
}

// unregister stops sending to the watcher. The channel is left open, a
// concurrent broadcast may still hold it.
func (d *notificationDomain) unregister(watcherID string) {
	d.watchers.Delete(watcherID)
}

func (d *notificationDomain) ServeWatch(ctx context.Context, conn *websocket.Conn) error {
	watcherID := uuid.NewString()
	c, err := d.register(watcherID)
	if err != nil {
		return err
	}
	defer d.unregister(watcherID)

	xcontext.Logger(ctx).Debugf("Watcher %s (user %q) connected", watcherID, xcontext.RequestUserID(ctx))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Watchers never send anything, reading only detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			xcontext.Logger(ctx).Debugf("Watcher %s disconnected", watcherID)
			return nil

		case msg := <-c:
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot write to watcher %s: %v", watcherID, err)
				return nil
			}
		}
	}
}

func (d *notificationDomain) Subscribe(ctx context.Context, topic string, pack *pubsub.Pack, t time.Time) {
	var event model.ChangeEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal change event of %s: %v", topic, err)
		return
	}

	if !slices.Contains(changeKinds, event.Kind) {
		xcontext.Logger(ctx).Warnf("Ignore change event of unknown kind %q", event.Kind)
		return
	}

	d.broadcast(ctx, pack.Msg)
}

func (d *notificationDomain) broadcast(ctx context.Context, msg []byte) {
	d.watchers.Range(func(watcherID string, c chan []byte) bool {
		select {
		case c <- msg:
		default:
			xcontext.Logger(ctx).Warnf("Watcher %s is too slow, drop a change event", watcherID)
		}

		return true
	})
}
