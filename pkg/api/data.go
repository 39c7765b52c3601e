package api

import (
	"encoding/json"
	"net/http"
)

type JSON map[string]any

func (j JSON) ToBytes() ([]byte, string, error) {
	b, err := json.Marshal(j)
	return b, "application/json", err
}

type jsonBody struct {
	v any
}

// Marshal wraps any json-serializable value as a request body.
func Marshal(v any) Body {
	return jsonBody{v: v}
}

func (b jsonBody) ToBytes() ([]byte, string, error) {
	data, err := json.Marshal(b.v)
	return data, "application/json", err
}

type bearerOpt struct {
	token string
}

func Bearer(token string) *bearerOpt {
	return &bearerOpt{token: token}
}

func (opt *bearerOpt) Do(req *http.Request) {
	if opt.token != "" {
		req.Header.Set("Authorization", "Bearer "+opt.token)
	}
}
