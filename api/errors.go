package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/jrsteele09/go-taskmaster/internal/errors"
	"github.com/jrsteele09/go-taskmaster/internal/utils"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 << 10

// ValidationError is a 4xx response carrying field errors or a detail message.
type ValidationError struct {
	Status int
	Fields map[string][]string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%d): %s", e.Status, e.Message())
}

// Message picks the one message a form shows: detail, then non_field_errors,
// then the first field message in key order.
func (e *ValidationError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if msgs := e.Fields["non_field_errors"]; len(msgs) > 0 {
		return msgs[0]
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msgs := e.Fields[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return http.StatusText(e.Status)
}

// Field returns the first message for a field, if any.
func (e *ValidationError) Field(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// StatusError is any other non-2xx response.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, body)
}

// Message returns the text a caller shows to a user for err.
func Message(err error) string {
	if errors.Is(err, errors.ErrSignInAfterSignUp) {
		return "Account created, but signing in failed. Please sign in manually."
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message()
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		if serr.Status == http.StatusNotFound {
			return "Not found"
		}
		return "The server could not complete the request"
	}
	if errors.Is(err, errors.ErrTransport) {
		return "Could not reach the server, please try again"
	}
	if errors.Is(err, errors.ErrSessionExpired) {
		return "Your session has expired, please sign in again"
	}
	return "Something went wrong, please try again"
}

// IsNotFound reports a 404 from the remote service.
func IsNotFound(err error) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.Status == http.StatusNotFound
}

// DecodeJSON consumes resp. A 2xx body decodes into T (an empty body yields the zero T);
// anything else becomes a *ValidationError or *StatusError.
func DecodeJSON[T any](resp *http.Response) (T, error) {
	var out T
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return out, errorFromBody(resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, errors.Join(errors.ErrTransport, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, errors.Join(errors.ErrMalformedResponse, err)
	}
	return out, nil
}

func errorFromBody(status int, body []byte) error {
	if status < 400 || status > 499 || status == http.StatusNotFound {
		return &StatusError{Status: status, Body: body}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return &StatusError{Status: status, Body: body}
	}

	verr := &ValidationError{Status: status, Fields: map[string][]string{}}
	for _, key := range []string{"detail", "error"} {
		if msgs := utils.Messages(payload[key]); verr.Detail == "" && len(msgs) > 0 {
			verr.Detail = msgs[0]
		}
		delete(payload, key)
	}
	for key, value := range payload {
		if msgs := utils.Messages(value); len(msgs) > 0 {
			verr.Fields[key] = msgs
		}
	}
	if verr.Detail == "" && len(verr.Fields) == 0 {
		return &StatusError{Status: status, Body: body}
	}
	return verr
}
