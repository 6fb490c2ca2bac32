// Package httperr converts the core's typed docerr.Error values into the
// host's HTTP error convention, mirroring internal/core/errors.ErrorResponse.
package httperr

import (
	"net/http"

	"github.com/veridit/jsonb-stats/internal/core/docstat/docerr"
)

const (
	HttpInternalError      = "internal_error"
	HttpInvalidJsonError   = "invalid_json"
	HttpUnknownStatType    = "unknown_stat_type"
	HttpUnknownAggType     = "unknown_agg_type"
	HttpMalformedDocument  = "malformed_document"
	HttpTypeMismatchError  = "type_mismatch"
	HttpInvalidScalarError = "invalid_scalar"
	HttpNegativeNatError   = "negative_nat"
)

// ErrorResponse is the error response body returned by every host handler.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// FromError maps err to the (HTTP status, ErrorResponse) the host should
// return. A *docerr.Error maps to its matching client-error status; any
// other error is an opaque 500.
func FromError(err error) (int, ErrorResponse) {
	de, ok := err.(*docerr.Error)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{
			ErrorType: HttpInternalError,
			Message:   err.Error(),
		}
	}

	switch de.Kind {
	case docerr.UnknownStatType:
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpUnknownStatType, Message: de.Message}
	case docerr.UnknownAggType:
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpUnknownAggType, Message: de.Message}
	case docerr.MalformedDocument:
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpMalformedDocument, Message: de.Message}
	case docerr.TypeMismatch:
		return http.StatusConflict, ErrorResponse{ErrorType: HttpTypeMismatchError, Message: de.Message}
	case docerr.InvalidScalar:
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpInvalidScalarError, Message: de.Message}
	case docerr.NegativeNat:
		return http.StatusBadRequest, ErrorResponse{ErrorType: HttpNegativeNatError, Message: de.Message}
	default:
		return http.StatusInternalServerError, ErrorResponse{ErrorType: HttpInternalError, Message: de.Message}
	}
}
