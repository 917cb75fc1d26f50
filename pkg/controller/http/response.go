package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/utils/errutil"
	"github.com/incubo-lab/pitchreview/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

// maxBodySize bounds request bodies
const maxBodySize = 1 << 20

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorEnvelope struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeJSON writes data wrapped in the response envelope
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, data any) {
	raw, err := json.Marshal(envelope{Code: status, Message: http.StatusText(status), Data: data})
	if err != nil {
		writeError(ctx, w, goerr.Wrap(err, "failed to marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, raw)
}

// writeError logs err and writes the error envelope. Details of server side
// errors are not exposed to clients.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := errutil.StatusCode(err)
	errutil.Handle(ctx, err, "request failed")

	resp := errorEnvelope{Code: status, Message: http.StatusText(status)}
	if status < http.StatusInternalServerError {
		resp.Message = err.Error()
		resp.Errors = fieldErrors(err)
	}

	raw, mErr := json.Marshal(resp)
	if mErr != nil {
		errutil.Handle(ctx, mErr, "failed to marshal error response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, raw)
}

// fieldErrors extracts the offending field of a validation error
func fieldErrors(err error) []fieldError {
	if !errors.Is(err, model.ErrValidation) {
		return nil
	}
	var ge *goerr.Error
	if !errors.As(err, &ge) {
		return nil
	}

	values := ge.Values()
	for _, key := range []string{model.FieldKey, model.DimensionKey} {
		if v, ok := values[key]; ok {
			return []fieldError{{Field: toString(v), Message: err.Error()}}
		}
	}
	return nil
}

func toString(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// decodeJSON reads the request body into v. Malformed bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := decodeBody(w, r, v)
	if errors.Is(err, io.EOF) {
		return goerr.Wrap(model.ErrValidation, "request body is empty")
	}
	return err
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be omitted
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decodeBody(w, r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return goerr.Wrap(model.ErrValidation, "malformed request body", goerr.V("reason", err.Error()))
	}
	return nil
}
