package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/mediashare/backend/config"
	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// WebsocketHandlerFunc serves an upgraded connection until it returns.
type WebsocketHandlerFunc func(ctx context.Context, conn *websocket.Conn) error

// MiddlewareFunc may return a derived context which replaces the request
// context for the following steps. Returning a nil context keeps the current
// one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been written.
type CloserFunc func(ctx context.Context)

type Router struct {
	ctx context.Context
	mux chi.Router

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	return &Router{ctx: ctx, mux: chi.NewRouter()}
}

// Branch returns a router sharing the same routes but with its own copy of
// middlewares and closers.
func (r *Router) Branch() *Router {
	clone := &Router{ctx: r.ctx, mux: r.mux}
	clone.befores = append(clone.befores, r.befores...)
	clone.afters = append(clone.afters, r.afters...)
	clone.closers = append(clone.closers, r.closers...)
	return clone
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Handle mounts a plain http.Handler, bypassing middlewares.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) Handler(cfg config.ServerConfigs) http.Handler {
	if len(cfg.AllowCORS) == 0 {
		return r.mux
	}

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowCORS,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Authorization"},
		AllowCredentials: true,
	}).Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Get(pattern, r.wrap(func(ctx context.Context, req *http.Request) (any, error) {
		return handle(ctx, handler, func(v *Request) error { return bindQuery(req, v) })
	}))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Post(pattern, r.wrap(func(ctx context.Context, req *http.Request) (any, error) {
		return handle(ctx, handler, func(v *Request) error { return bindJSON(req, v) })
	}))
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func Websocket(r *Router, pattern string, handler WebsocketHandlerFunc) {
	r.mux.Get(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := xcontext.WithStartTime(r.ctx, time.Now())
		ctx = xcontext.WithHTTPRequest(ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)

		ctx, err := runMiddlewares(ctx, r.befores)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeResponse(ctx, w)
			r.close(ctx)
			return
		}

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot upgrade websocket: %v", err)
			return
		}
		defer conn.Close()

		if err := handler(ctx, conn); err != nil {
			ctx = xcontext.WithError(ctx, err)
		}

		r.close(ctx)
	})
}

func (r *Router) wrap(call func(context.Context, *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := xcontext.WithStartTime(r.ctx, time.Now())
		ctx = xcontext.WithHTTPRequest(ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)

		ctx, err := func() (context.Context, error) {
			ctx, err := runMiddlewares(ctx, r.befores)
			if err != nil {
				return ctx, err
			}

			resp, err := call(ctx, req)
			if err != nil {
				return ctx, err
			}

			ctx = xcontext.WithResponse(ctx, resp)
			return runMiddlewares(ctx, r.afters)
		}()
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
		}

		writeResponse(ctx, w)
		r.close(ctx)
	}
}

func (r *Router) close(ctx context.Context) {
	for _, closer := range r.closers {
		closer(ctx)
	}
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, m := range middlewares {
		newCtx, err := m(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}

func handle[Request, Response any](
	ctx context.Context,
	handler HandlerFunc[Request, Response],
	bind func(*Request) error,
) (any, error) {
	var req Request
	if err := bind(&req); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid request")
	}

	resp, err := handler(ctx, &req)
	if err != nil {
		return nil, err
	}

	// A nil *Response must not be wrapped into a non-nil interface.
	if resp == nil {
		return nil, nil
	}

	return resp, nil
}
