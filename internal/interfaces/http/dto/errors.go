package dto

import (
	"net/http"

	"github.com/erp/storesync/internal/domain/integration"
)

// Error codes used outside the sync taxonomy
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "PASS_LOCKED"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeTimeout    = "TIMEOUT"
)

// StatusForKind maps a sync error kind to an HTTP status
func StatusForKind(kind integration.ErrorKind) int {
	switch kind {
	case integration.KindConfiguration, integration.KindPrerequisiteMissing:
		return http.StatusUnprocessableEntity
	case integration.KindConnectivity:
		return http.StatusBadGateway
	case integration.KindReferenceNotFound, integration.KindReconciliationMismatch, integration.KindMalformedRecord:
		return http.StatusUnprocessableEntity
	case integration.KindDuplicateIdentity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
