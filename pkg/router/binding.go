package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var errUnsupportedContentType = errors.New("unsupported content type")

// bindQuery decodes the query parameters into v using its json tags. Values
// are weakly typed, so "10" fills an int field and "true" a bool field.
func bindQuery(r *http.Request, v any) error {
	params := map[string]any{}
	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(params)
}

func bindJSON(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		return errUnsupportedContentType
	}

	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}

	return err
}
