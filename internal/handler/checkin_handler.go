package handler

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/mahimasingh04/OpenEvent/internal/dto"
	"github.com/mahimasingh04/OpenEvent/internal/service"
	"github.com/mahimasingh04/OpenEvent/pkg/response"
	"github.com/mahimasingh04/OpenEvent/pkg/telemetry"
)

// CheckInHandler records attested check-ins
type CheckInHandler struct {
	checkInService service.CheckInService
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(checkInService service.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// CheckIn handles POST /events/:id/checkins
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.checkin.record")
	defer span.End()

	account, ok := caller(c, span)
	if !ok {
		return
	}
	eventID, ok := uintParam(c, span, "id")
	if !ok {
		return
	}
	var req dto.CheckInRequest
	if !bindJSON(c, span, &req) {
		return
	}

	sig := req.Signature
	if !strings.HasPrefix(sig, "0x") && !strings.HasPrefix(sig, "0X") {
		sig = "0x" + sig
	}
	signature, err := hexutil.Decode(sig)
	if err != nil {
		badRequest(c, span, "INVALID_SIGNATURE_ENCODING", "signature must be hex encoded")
		return
	}

	record, err := h.checkInService.CheckIn(ctx, &service.CheckInRequest{
		EventID:   eventID,
		Holder:    req.Holder,
		Timestamp: req.Timestamp,
		Signature: signature,
	}, account)
	if err != nil {
		handleError(c, span, err)
		return
	}
	succeed(span)
	response.Created(c, record)
}
