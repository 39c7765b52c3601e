package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mediashare/backend/internal/common"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
)

func WithStartTime(ctx context.Context) (context.Context, error) {
	return xcontext.WithStartTime(ctx, time.Now()), nil
}

func Prometheus(ctx context.Context) {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return
	}

	code := 0
	if err := xcontext.Error(ctx); err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) {
			code = int(errx.Code)
		} else {
			code = -1
		}
	}
	path := req.URL.Path

	for key, counter := range common.PromCounters {
		switch key {
		case common.HTTPRequestTotal:
			counter.WithLabelValues(path, fmt.Sprint(code)).Inc()
		}
	}

	for key, histogram := range common.PromHistograms {
		switch key {
		case common.HTTPRequestDurationSeconds:
			startTime := xcontext.StartTime(ctx)
			histogram.WithLabelValues(path, fmt.Sprint(code)).Observe(time.Since(startTime).Seconds())
		}
	}
}
