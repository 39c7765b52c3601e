package middleware

import (
	"context"
	"net/http"

	"github.com/mediashare/backend/pkg/xcontext"
)

type CookieResponse interface {
	CookieInfo() []http.Cookie
}

func HandleSetCookie(ctx context.Context) (context.Context, error) {
	cookieResp, ok := xcontext.Response(ctx).(CookieResponse)
	if ok {
		for _, cookie := range cookieResp.CookieInfo() {
			cookie := cookie
			http.SetCookie(xcontext.HTTPWriter(ctx), &cookie)
		}
	}

	return nil, nil
}
