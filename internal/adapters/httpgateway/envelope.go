package httpgateway

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/Baodng2402/360-Retail-Web-sub000/internal/errors"
)

// unwrap classifies a successful response body once: either an envelope
// {success, data, message} or a bare payload. An envelope that reports
// success=false, or omits data, is a failed call even on a 2xx status.
func unwrap(status int, body []byte) (gjson.Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return gjson.Result{Type: gjson.String, Str: string(trimmed), Raw: string(trimmed)}, nil
	}

	r := gjson.ParseBytes(trimmed)
	if !isEnvelope(r) {
		return r, nil
	}
	if !r.Get("success").Bool() {
		return gjson.Result{}, apperrors.API(status, messageFrom(r, "The request was not successful."))
	}
	data := r.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return gjson.Result{}, apperrors.API(status, messageFrom(r, "The server response did not include any data."))
	}
	return data, nil
}

func isEnvelope(r gjson.Result) bool {
	if !r.IsObject() {
		return false
	}
	s := r.Get("success")
	return s.Type == gjson.True || s.Type == gjson.False
}

// errorFromResponse builds the ApiError for a non-2xx response.
func errorFromResponse(status int, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	fallback := fallbackMessage(status)
	if len(trimmed) == 0 {
		return apperrors.API(status, fallback)
	}
	if !gjson.ValidBytes(trimmed) {
		if len(trimmed) <= 200 && !bytes.ContainsAny(trimmed, "<>") {
			return apperrors.API(status, string(trimmed))
		}
		return apperrors.API(status, fallback)
	}
	r := gjson.ParseBytes(trimmed)
	if r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
		return apperrors.API(status, strings.TrimSpace(r.Str))
	}
	return apperrors.API(status, messageFrom(r, fallback))
}

var messagePaths = []string{
	"message",
	"error.message",
	"error_description",
	"error",
	"detail",
	"title",
	"data.message",
}

// messageFrom digs a human-readable message out of an error body, tolerating
// the shapes the identity, saas and problem-details handlers emit.
func messageFrom(r gjson.Result, fallback string) string {
	for _, path := range messagePaths {
		if v := r.Get(path); v.Type == gjson.String {
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		}
	}
	if s := firstValidationError(r.Get("errors")); s != "" {
		return s
	}
	return fallback
}

// firstValidationError handles both ["msg"] and {"Field": ["msg"]} shapes.
func firstValidationError(errs gjson.Result) string {
	var found string
	visit := func(v gjson.Result) bool {
		switch {
		case v.Type == gjson.String:
			found = strings.TrimSpace(v.Str)
		case v.IsArray():
			found = strings.TrimSpace(v.Get("0").String())
		case v.IsObject():
			found = strings.TrimSpace(v.Get("message").String())
		}
		return found == ""
	}
	if errs.IsArray() || errs.IsObject() {
		errs.ForEach(func(_, v gjson.Result) bool { return visit(v) })
	}
	return found
}

func fallbackMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case http.StatusForbidden:
		return "You do not have permission to perform this action."
	case http.StatusNotFound:
		return "The requested resource was not found."
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("Request failed: %s.", text)
	}
	return fmt.Sprintf("Request failed with status %d.", status)
}
