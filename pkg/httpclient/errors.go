package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/helloivanco/fanrc/pkg/errors"
)

// upstreamErrorResponse matches the {"error":{"code","message"}} envelope that
// this service and most JSON feeds use for failures.
type upstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an error. Structured error bodies keep their code and message;
// anything else yields a plain error carrying the status and raw body.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, source string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", source, resp.StatusCode, err)
	}

	var upstream upstreamErrorResponse
	if json.Unmarshal(bodyBytes, &upstream) == nil && upstream.Error != nil {
		return mapUpstreamError(resp.StatusCode, upstream.Error.Code, upstream.Error.Message, source)
	}

	return fmt.Errorf("%s returned status %d: %s", source, resp.StatusCode, string(bodyBytes))
}

func mapUpstreamError(status int, code, message, source string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", source, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(source, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		// Both match ErrUnauthorized; the upstream status is kept.
		appErr := apperrors.Unauthorized(qualifiedMsg)
		appErr.Status = status
		return appErr
	case status == http.StatusServiceUnavailable:
		appErr := apperrors.Unavailable(qualifiedMsg)
		if code != "" {
			appErr.Code = code
		}
		return appErr
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", source, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
