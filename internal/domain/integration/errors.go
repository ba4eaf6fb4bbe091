package integration

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Sync error taxonomy
// ---------------------------------------------------------------------------

// ErrorKind classifies sync failures by their blast radius
type ErrorKind string

const (
	// KindConfiguration: channel settings are missing or invalid
	KindConfiguration ErrorKind = "CONFIGURATION"
	// KindConnectivity: the remote store could not be reached or rejected the credentials
	KindConnectivity ErrorKind = "CONNECTIVITY"
	// KindReferenceNotFound: a remote reference has no local counterpart
	KindReferenceNotFound ErrorKind = "REFERENCE_NOT_FOUND"
	// KindPrerequisiteMissing: reference data must be imported first
	KindPrerequisiteMissing ErrorKind = "PREREQUISITE_MISSING"
	// KindDuplicateIdentity: an already mapped remote entity was created again
	KindDuplicateIdentity ErrorKind = "DUPLICATE_IDENTITY"
	// KindReconciliationMismatch: remote and local figures disagree
	KindReconciliationMismatch ErrorKind = "RECONCILIATION_MISMATCH"
	// KindMalformedRecord: a remote record lacks a required field or holds an unparsable value
	KindMalformedRecord ErrorKind = "MALFORMED_RECORD"
)

// AbortsPass reports whether an error of this kind stops the whole pass.
// Record-scoped kinds are collected and the batch continues.
func (k ErrorKind) AbortsPass() bool {
	switch k {
	case KindReferenceNotFound, KindReconciliationMismatch, KindMalformedRecord:
		return false
	}
	return true
}

// SyncError is a templated, operator-facing sync failure
type SyncError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is matches sync errors by kind and code, so sentinels compare equal to
// their formatted or wrapped copies.
func (e *SyncError) Is(target error) bool {
	t, ok := target.(*SyncError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// Wrap returns a copy of the error carrying err as its cause
func (e *SyncError) Wrap(err error) *SyncError {
	return &SyncError{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

func newSyncError(kind ErrorKind, code, format string, args ...any) *SyncError {
	return &SyncError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a sync error anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsRecordScoped reports whether err only affects the record being processed
func IsRecordScoped(err error) bool {
	kind, ok := KindOf(err)
	return ok && !kind.AbortsPass()
}

// Error codes
const (
	CodeSettingsIncomplete   = "SETTINGS_INCOMPLETE"
	CodeInvalidTimezone      = "INVALID_TIMEZONE"
	CodeChannelDisabled      = "CHANNEL_DISABLED"
	CodeAuthFailed           = "AUTH_FAILED"
	CodeWrongURL             = "WRONG_URL"
	CodeRemoteFailure        = "REMOTE_FAILURE"
	CodeRemoteNotFound       = "REMOTE_NOT_FOUND"
	CodeCountryNotFound      = "COUNTRY_NOT_FOUND"
	CodeSubdivisionNotFound  = "SUBDIVISION_NOT_FOUND"
	CodeCurrencyNotFound     = "CURRENCY_NOT_FOUND"
	CodeLanguageNotFound     = "LANGUAGE_NOT_FOUND"
	CodeUntranslatable       = "NO_MATCHING_LANGUAGE"
	CodeLanguagesMissing     = "LANGUAGES_NOT_IMPORTED"
	CodeOrderStatesMissing   = "ORDER_STATES_NOT_IMPORTED"
	CodeOrderStateUnknown    = "ORDER_STATE_NOT_IMPORTED"
	CodeDuplicateCombination = "DUPLICATE_COMBINATION"
	CodeDuplicateLink        = "DUPLICATE_LINK"
	CodeTotalMismatch        = "TOTAL_MISMATCH"
)

var (
	ErrSettingsIncomplete = newSyncError(KindConfiguration, CodeSettingsIncomplete,
		"Prestashop webservice settings are incomplete.")
	ErrChannelDisabled = newSyncError(KindConfiguration, CodeChannelDisabled,
		"Channel is disabled")
	ErrAuthFailed = newSyncError(KindConnectivity, CodeAuthFailed,
		"Connection Failed! Please check URL and Key")
	ErrWrongURL = newSyncError(KindConnectivity, CodeWrongURL,
		"Connection Failed! The URL provided is wrong")
	ErrLanguagesNotImported = newSyncError(KindPrerequisiteMissing, CodeLanguagesMissing,
		"Import the languages before importing order states")
	ErrOrderStatesNotImported = newSyncError(KindPrerequisiteMissing, CodeOrderStatesMissing,
		"Import the order states before importing/exporting orders")
	ErrDuplicateCombination = newSyncError(KindDuplicateIdentity, CodeDuplicateCombination,
		"Combination already exists")
	ErrDuplicateLink = newSyncError(KindDuplicateIdentity, CodeDuplicateLink,
		"Remote entity is already linked")
	ErrTotalMismatch = newSyncError(KindReconciliationMismatch, CodeTotalMismatch,
		"Order total does not match remote total")
)

// InvalidTimezoneError reports an unknown channel time zone
func InvalidTimezoneError(tz string, err error) *SyncError {
	e := newSyncError(KindConfiguration, CodeInvalidTimezone, "Time zone %q is not valid", tz)
	e.Err = err
	return e
}

// RemoteFailureError reports an unexpected remote response
func RemoteFailureError(status int, resource Resource) *SyncError {
	return newSyncError(KindConnectivity, CodeRemoteFailure,
		"Remote store answered %d for %s", status, resource)
}

// RemoteNotFoundError reports a referenced remote record that does not exist
func RemoteNotFoundError(resource Resource, id int64) *SyncError {
	return newSyncError(KindReferenceNotFound, CodeRemoteNotFound,
		"Remote %s with id %d not found", resource, id)
}

// CountryNotFoundError reports a remote country code with no local country
func CountryNotFoundError(code string) *SyncError {
	return newSyncError(KindReferenceNotFound, CodeCountryNotFound, "Country with code %s not found", code)
}

// SubdivisionNotFoundError reports a remote state with no local subdivision
func SubdivisionNotFoundError(code string) *SyncError {
	return newSyncError(KindReferenceNotFound, CodeSubdivisionNotFound, "Subdivision with code %s not found", code)
}

// CurrencyNotFoundError reports a remote currency code with no local currency
func CurrencyNotFoundError(code string) *SyncError {
	return newSyncError(KindReferenceNotFound, CodeCurrencyNotFound, "Currency with code %s not found", code)
}

// LanguageNotFoundError reports a remote language tag with no local language
func LanguageNotFoundError(code string) *SyncError {
	return newSyncError(KindReferenceNotFound, CodeLanguageNotFound, "Language with code %s not found", code)
}

// UntranslatableError reports a remote text with no variant in an imported language
func UntranslatableError(resource Resource, id int64) *SyncError {
	return newSyncError(KindReferenceNotFound, CodeUntranslatable,
		"No imported language matches the name of %s %d", resource, id)
}

// OrderStateNotImportedError reports an order whose state was never imported
func OrderStateNotImportedError(remoteStateID int64) *SyncError {
	return newSyncError(KindPrerequisiteMissing, CodeOrderStateUnknown,
		"Order state %d is not imported. Import the order states before importing/exporting orders", remoteStateID)
}

// DuplicateCombinationError reports a non-zero combination id reused within a channel
func DuplicateCombinationError(combinationID int64, channelName string) *SyncError {
	return newSyncError(KindDuplicateIdentity, CodeDuplicateCombination,
		"Combination with id \"%d\" exists in channel \"%s\"", combinationID, channelName)
}

// DuplicateLinkError reports a second local entity for an already linked remote id
func DuplicateLinkError(kind LinkKind, remoteID int64) *SyncError {
	return newSyncError(KindDuplicateIdentity, CodeDuplicateLink,
		"Remote %s with id %d is already linked", kind, remoteID)
}

// TotalMismatchError reports a sale whose computed total differs from the remote one
func TotalMismatchError(reference, computed, declared string) *SyncError {
	return newSyncError(KindReconciliationMismatch, CodeTotalMismatch,
		"Order %s total %s does not match remote total %s", reference, computed, declared)
}
