package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/mediashare/backend/config"
	"github.com/mediashare/backend/internal/model"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
)

// ChangeWatcher streams like and follow changes from the /watch endpoint.
type ChangeWatcher struct {
	url    string
	cfg    config.NotificationConfigs
	dialer *websocket.Dialer
}

func NewChangeWatcher(endpoint string, cfg config.NotificationConfigs) *ChangeWatcher {
	url := strings.TrimSuffix(endpoint, "/") + "/watch"
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}

	return &ChangeWatcher{url: url, cfg: cfg, dialer: websocket.DefaultDialer}
}

// Watch calls handler for every change event until ctx is done. A dropped
// connection is reopened with exponential back-off. Watch gives up once
// ReconnectAttempts dials in a row failed.
func (w *ChangeWatcher) Watch(ctx context.Context, token string, handler func(model.ChangeEvent)) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.ReconnectBaseDelay
	b.MaxInterval = w.cfg.ReconnectMaxDelay
	b.MaxElapsedTime = 0

	failures := 0
	for {
		conn, _, err := w.dialer.DialContext(ctx, w.url, header)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			failures++
			xcontext.Logger(ctx).Warnf("Cannot connect to %s (%d/%d): %v",
				w.url, failures, w.cfg.ReconnectAttempts, err)
			if failures >= w.cfg.ReconnectAttempts {
				return errorx.New(errorx.Unavailable, "Cannot connect to the change stream")
			}
		} else {
			failures = 0
			b.Reset()

			if err := w.consume(ctx, conn, handler); err != nil && ctx.Err() == nil {
				xcontext.Logger(ctx).Warnf("Change stream disconnected: %v", err)
			}
		}

		if !sleep(ctx, b.NextBackOff()) {
			return nil
		}
	}
}

func (w *ChangeWatcher) consume(ctx context.Context, conn *websocket.Conn, handler func(model.ChangeEvent)) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var event model.ChangeEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			xcontext.Logger(ctx).Warnf("Invalid change event: %v", err)
			continue
		}

		handler(event)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
