package httperr

import (
	"github.com/gin-gonic/gin"
)

// Code is a stable, machine-readable error identifier. Clients branch on it
// instead of the human message.
type Code string

const (
	CodeInvalidRequest      Code = "invalid_request"
	CodeInvalidSlot         Code = "invalid_slot"
	CodeInvalidTransition   Code = "invalid_transition"
	CodeInvalidSignature    Code = "invalid_signature"
	CodeUnauthorized        Code = "unauthorized"
	CodeForbidden           Code = "forbidden"
	CodeNotFound            Code = "not_found"
	CodeSlotTaken           Code = "slot_taken"
	CodeAlreadyFinal        Code = "already_final"
	CodeIntentMismatch      Code = "intent_mismatch"
	CodePaymentPending      Code = "payment_pending"
	CodeRequestInFlight     Code = "request_in_flight"
	CodeIdempotencyMismatch Code = "idempotency_mismatch"
	CodePayloadTooLarge     Code = "payload_too_large"
	CodeRateLimited         Code = "rate_limited"
	CodeGatewayUnavailable  Code = "gateway_unavailable"
	CodeUnavailable         Code = "unavailable"
	CodeInternal            Code = "internal"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    Code   `json:"code,omitempty"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

func New(status int, code Code, msg string) Response {
	resp := Response{Status: status}
	resp.Error.Code = code
	resp.Error.Message = msg
	return resp
}

// AbortWithError keeps err on the gin context for the logging middleware.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	resp := New(status, defaultCode(status), msg)
	resp.Detail = detail
	abort(c, err, resp)
}

func AbortWithCode(c *gin.Context, status int, code Code, err error, msg string) {
	AbortWithDetail(c, status, code, err, msg, nil)
}

func AbortWithDetail(c *gin.Context, status int, code Code, err error, msg string, detail any) {
	resp := New(status, code, msg)
	resp.Detail = detail
	abort(c, err, resp)
}

func abort(c *gin.Context, err error, resp Response) {
	if err == nil {
		panic("httperr: err cannot be nil")
	}
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(resp.Status, resp)
}

func defaultCode(status int) Code {
	switch {
	case status == 400:
		return CodeInvalidRequest
	case status == 401:
		return CodeUnauthorized
	case status == 403:
		return CodeForbidden
	case status == 404:
		return CodeNotFound
	case status == 413:
		return CodePayloadTooLarge
	case status == 429:
		return CodeRateLimited
	case status >= 500:
		return CodeInternal
	default:
		return ""
	}
}
