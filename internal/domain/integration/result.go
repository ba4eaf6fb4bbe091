package integration

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Operation names a sync operation
type Operation string

const (
	OperationImportOrders        Operation = "import_orders"
	OperationExportOrders        Operation = "export_orders"
	OperationImportLanguages     Operation = "import_languages"
	OperationImportOrderStates   Operation = "import_order_states"
	OperationImportReferenceData Operation = "import_reference_data"
)

// Direction returns the cursor direction used by the operation, if any
func (o Operation) Direction() (Direction, bool) {
	switch o {
	case OperationImportOrders:
		return DirectionImport, true
	case OperationExportOrders:
		return DirectionExport, true
	}
	return "", false
}

// RecordException is a record-scoped failure reported at the end of a pass
type RecordException struct {
	Resource Resource  `json:"resource"`
	RemoteID int64     `json:"remote_id"`
	Kind     ErrorKind `json:"kind"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
}

// PassResult summarizes one sync operation
type PassResult struct {
	ChannelID  uuid.UUID         `json:"channel_id"`
	Operation  Operation         `json:"operation"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Created    int               `json:"created"`
	Updated    int               `json:"updated"`
	Skipped    int               `json:"skipped"`
	Exceptions []RecordException `json:"exceptions"`
}

// NewPassResult starts a result for an operation
func NewPassResult(channelID uuid.UUID, op Operation) *PassResult {
	return &PassResult{
		ChannelID:  channelID,
		Operation:  op,
		StartedAt:  time.Now().UTC(),
		Exceptions: []RecordException{},
	}
}

// AddException records a record-scoped error
func (r *PassResult) AddException(resource Resource, remoteID int64, err error) {
	exc := RecordException{Resource: resource, RemoteID: remoteID, Message: err.Error()}
	var se *SyncError
	if errors.As(err, &se) {
		exc.Kind = se.Kind
		exc.Code = se.Code
		exc.Message = se.Message
	}
	r.Exceptions = append(r.Exceptions, exc)
}

// Merge adds the counts and exceptions of another result
func (r *PassResult) Merge(other *PassResult) {
	if other == nil {
		return
	}
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Exceptions = append(r.Exceptions, other.Exceptions...)
}

// Finish stamps the end time
func (r *PassResult) Finish() *PassResult {
	r.FinishedAt = time.Now().UTC()
	return r
}

// Processed is the number of records that reached an outcome
func (r *PassResult) Processed() int {
	return r.Created + r.Updated + r.Skipped + len(r.Exceptions)
}
