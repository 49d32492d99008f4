package httpvalidator

import (
	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/erraggy/oasguard/mediatype"
	"github.com/erraggy/oasguard/oaserrors"
)

// ValidateResponse validates a response of the operation operationID.
//
// The response description is chosen by exact status code, then the NXX
// range, then "default". Response headers are not validated. A status the
// operation does not document passes without body validation unless strict
// mode is enabled.
func (v *Validator) ValidateResponse(operationID string, statusCode int, body []byte, contentType string) (*ValidatedResponse, error) {
	op, err := v.contract.Operation(operationID)
	if err != nil {
		return nil, err
	}

	result := &ValidatedResponse{operationID: op.ID, statusCode: statusCode}
	if statusCode < httputil.MinStatusCode || statusCode > httputil.MaxStatusCode {
		return nil, v.fail(op, oaserrors.NewValidationError(oaserrors.KindIllegalValue, "status", "",
			"%d is not an HTTP status code", statusCode))
	}

	resp := op.Response(statusCode)
	if resp == nil {
		if v.strictMode {
			return nil, v.fail(op, oaserrors.NewValidationError(oaserrors.KindInvalidValue, "status", "",
				"status %d is not documented", statusCode))
		}
		return result, nil
	}
	result.responseCode = resp.Code

	decoded, err := v.body(mediatype.Response, resp.Content, false, body, contentType)
	if err != nil {
		return nil, v.fail(op, err)
	}
	result.body, result.hasBody, result.mediaType = decoded.value, decoded.present, decoded.mediaType
	return result, nil
}
