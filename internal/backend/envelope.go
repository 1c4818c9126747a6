package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/newthinker/tasi/internal/core"
)

// envelope is the wrapper every backend response uses.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Note    string          `json:"note"`
}

// hasEnvelope reports whether body decodes to an object with a success flag.
func hasEnvelope(body []byte) bool {
	var env envelope
	return json.Unmarshal(body, &env) == nil && env.Success != nil
}

// decodeEnvelope classifies a reply and decodes its data field into out.
// A nil out skips the data check, for endpoints that only acknowledge.
func decodeEnvelope(r *reply, out any) (*envelope, error) {
	ok := r.status >= 200 && r.status < 300

	var env envelope
	if err := json.Unmarshal(r.body, &env); err != nil {
		if !ok {
			return nil, core.WrapError(core.ErrNetwork, &StatusError{StatusCode: r.status})
		}
		return nil, core.WrapError(core.ErrParse, fmt.Errorf("decoding envelope: %w", err))
	}
	if env.Success == nil {
		if !ok {
			return nil, core.WrapError(core.ErrNetwork, &StatusError{StatusCode: r.status})
		}
		return nil, core.WrapError(core.ErrParse, errors.New("envelope has no success flag"))
	}

	if !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(r.status)
		}
		cause := errors.New(msg)
		if r.status == http.StatusNotFound {
			cause = fmt.Errorf("%w: %s", core.ErrSymbolNotFound, msg)
		}
		return &env, core.WrapError(core.ErrEnvelope, cause)
	}

	if out == nil {
		return &env, nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &env, core.WrapError(core.ErrParse, errors.New("envelope has no data"))
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &env, core.WrapError(core.ErrParse, fmt.Errorf("decoding data: %w", err))
	}
	return &env, nil
}
