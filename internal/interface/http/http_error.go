package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/skinscan/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

type statusMapping struct {
	status int
	public string
}

// domainStatus maps AppError codes onto transport statuses.
var domainStatus = map[string]statusMapping{
	apperrors.CodeInvalidInput:       {status: http.StatusBadRequest, public: "invalid_request"},
	apperrors.CodeNotFound:           {status: http.StatusNotFound, public: "not_found"},
	apperrors.CodeUserNotFound:       {status: http.StatusNotFound, public: "not_found"},
	apperrors.CodeEmailExists:        {status: http.StatusConflict, public: "email_exists"},
	apperrors.CodeInvalidCredentials: {status: http.StatusUnauthorized, public: "invalid_credentials"},
	apperrors.CodeInvalidToken:       {status: http.StatusUnauthorized, public: "invalid_token"},
	apperrors.CodeStorage:            {status: http.StatusBadGateway, public: "storage_unavailable"},
	apperrors.CodeClassifier:         {status: http.StatusBadGateway, public: "classifier_unavailable"},
}

// fromDomainError converts a service error; unknown codes become 500 with fallbackCode.
func fromDomainError(err error, fallbackCode string) *HTTPError {
	if m, ok := domainStatus[apperrors.CodeOf(err)]; ok {
		return NewHTTPError(m.status, m.public, errMessage(err), err)
	}
	return NewHTTPError(http.StatusInternalServerError, fallbackCode, errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
