package grant

import "net/http"

// Response is the terminal payload of a grant attempt, in either its
// success or error shape.
type Response struct {
	Status      string       `json:"status"`
	Token       *AccessToken `json:"token,omitempty"`
	ErrorKind   Kind         `json:"errorKind,omitempty"`
	Description string       `json:"description,omitempty"`
	HTTPStatus  int          `json:"httpStatus,omitempty"`
}

const (
	statusOK    = "ok"
	statusError = "error"
)

// OK reports whether the grant succeeded.
func (r Response) OK() bool {
	return r.Status == statusOK
}

// statusFor is the single translation from internal error kind to transport
// status. No pipeline stage performs this mapping itself.
func statusFor(kind Kind) int {
	switch kind {
	case KindUnauthorized, KindInvalidClient:
		return http.StatusUnauthorized
	case KindServerError:
		return http.StatusInternalServerError
	default:
		// unsupported_grant_type, invalid_request, invalid_scopes
		return http.StatusBadRequest
	}
}

// respond formats the terminal result. It runs regardless of pipeline state
// and is the only place error kinds become external payloads.
func respond(res result) Response {
	if res.err != nil {
		return Response{
			Status:      statusError,
			ErrorKind:   res.err.Kind,
			Description: res.err.Description,
			HTTPStatus:  statusFor(res.err.Kind),
		}
	}
	return Response{
		Status: statusOK,
		Token:  res.state.Token,
	}
}
