package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a remote rejection outside the retry policy: the vendor
// answered with a status the caller did not expect.
type APIError interface {
	error
	StatusCode() int
	ExpectedCode() int
	Body() []byte
}

// SpotifyError is an unexpected response from the primary catalog API.
type SpotifyError struct {
	Status   int
	Expected int
	RawBody  []byte
}

func (e *SpotifyError) StatusCode() int   { return e.Status }
func (e *SpotifyError) ExpectedCode() int { return e.Expected }
func (e *SpotifyError) Body() []byte      { return e.RawBody }

func (e *SpotifyError) Error() string {
	msg := fmt.Sprintf("spotify: response <%d> expected, <%d> received", e.Expected, e.Status)
	// Spotify errors carry either "error_description" or "message" at the
	// root of the returned JSON.
	var body struct {
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
		Err              *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(e.RawBody, &body); err == nil {
		switch {
		case body.ErrorDescription != "":
			msg += ": " + body.ErrorDescription
		case body.Message != "":
			msg += ": " + body.Message
		case body.Err != nil && body.Err.Message != "":
			msg += ": " + body.Err.Message
		}
	}
	return msg
}

// YouTubeError is an unexpected response from the video catalog API.
type YouTubeError struct {
	Status   int
	Expected int
	RawBody  []byte
}

func (e *YouTubeError) StatusCode() int   { return e.Status }
func (e *YouTubeError) ExpectedCode() int { return e.Expected }
func (e *YouTubeError) Body() []byte      { return e.RawBody }

func (e *YouTubeError) Error() string {
	msg := fmt.Sprintf("youtube: response <%d> expected, <%d> received", e.Expected, e.Status)
	// Google APIs nest the useful message under "error".
	var body struct {
		Err *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(e.RawBody, &body); err == nil && body.Err != nil && body.Err.Message != "" {
		msg += ": " + body.Err.Message
	}
	return msg
}

// newAPIError selects the concrete error type by the request's target host.
func newAPIError(host string, status, expected int, body []byte) APIError {
	if strings.Contains(host, "spotify.com") {
		return &SpotifyError{Status: status, Expected: expected, RawBody: body}
	}
	return &YouTubeError{Status: status, Expected: expected, RawBody: body}
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(APIError)
	return ok && apiErr.StatusCode() == status
}
