package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"google-cse-mcp/utils/platformerrors"
)

// ErrorResponse is the JSON error body returned by the HTTP transport.
type ErrorResponse struct {
	Kind          string `json:"kind"`
	Error         string `json:"error"`
	ErrorInstance error  `json:"-"`
}

// HandleNewError aborts the request with a fresh error of the given type.
// Status code is determined from the error type.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string) {
	err := platformerrors.NewError(platformerrors.LayerRoute, errorType, message, nil)
	reqCtx.Error(err)
	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(errorType), ErrorResponse{
		Kind:          string(errorType),
		Error:         message,
		ErrorInstance: err,
	})
}

// HandleError handles domain errors and returns appropriate HTTP responses.
// The message parameter is used directly as the error message in the response.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())
		reqCtx.Error(domainErr)
		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Kind:          string(domainErr.GetErrorType()),
			Error:         message,
			ErrorInstance: domainErr,
		})
		return
	}

	reqCtx.Error(err)
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Kind:          string(platformerrors.ErrorTypeInternal),
		Error:         message,
		ErrorInstance: err,
	})
}
