package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/pkg/middleware"
	"github.com/mahimasingh04/OpenEvent/pkg/response"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// statusForKind maps a domain error kind to its HTTP status
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindState, domain.KindResourceExhausted:
		return http.StatusConflict
	case domain.KindPayment:
		return http.StatusPaymentRequired
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the envelope for err; unclassified errors become a 500 without detail
func handleError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	_ = c.Error(err)

	de, ok := domain.AsError(err)
	if !ok {
		response.InternalError(c)
		return
	}
	response.Error(c, statusForKind(de.Kind), de.Code, err.Error())
}

func badRequest(c *gin.Context, span trace.Span, code, message string) {
	span.SetStatus(codes.Error, message)
	response.Error(c, http.StatusBadRequest, code, message)
}

// caller returns the authenticated account or writes a 401
func caller(c *gin.Context, span trace.Span) (string, bool) {
	account, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "authentication required")
		return "", false
	}
	return account, true
}

// uintParam parses a numeric path parameter or writes a 400
func uintParam(c *gin.Context, span trace.Span, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, span, "INVALID_"+paramCode(name), name+" must be a positive integer")
		return 0, false
	}
	return v, true
}

// intParam parses a non-negative tier index or writes a 400
func intParam(c *gin.Context, span trace.Span, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		badRequest(c, span, "INVALID_"+paramCode(name), name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

func paramCode(name string) string {
	switch name {
	case "id":
		return "EVENT_ID"
	case "listingId":
		return "LISTING_ID"
	case "tier":
		return "TIER"
	default:
		return "PARAMETER"
	}
}

// bindJSON binds the body or writes a 400
func bindJSON(c *gin.Context, span trace.Span, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		span.RecordError(err)
		badRequest(c, span, "INVALID_REQUEST", err.Error())
		return false
	}
	return true
}

func succeed(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
