package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mediashare/backend/pkg/errorx"
	"github.com/mediashare/backend/pkg/xcontext"
)

type Response struct {
	Code  errorx.Code `json:"code"`
	Error string      `json:"error,omitempty"`
	Data  any         `json:"data,omitempty"`
}

func NewResponse(data any) Response {
	return Response{Code: 0, Data: data}
}

func NewErrorResponse(err error) Response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return Response{Code: errx.Code, Error: errx.Message}
	}

	return Response{Code: errorx.Unknown.Code, Error: errorx.Unknown.Message}
}

func writeResponse(ctx context.Context, w http.ResponseWriter) {
	if err := xcontext.Error(ctx); err != nil {
		if err := WriteJSON(w, NewErrorResponse(err)); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}
		return
	}

	if err := WriteJSON(w, NewResponse(xcontext.Response(ctx))); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func WriteJSON(w http.ResponseWriter, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		return err
	}

	return nil
}
