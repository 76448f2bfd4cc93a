package catalog

import (
	"github.com/gofrs/flock"

	apperrors "dolce-almacen/pkg/errors"
)

// RunLock is the advisory single-flight lock serializing import runs against
// one catalog database. Concurrent runs would race the duplicate check and
// each other's alias/item creations, so a run holds this lock from before the
// transaction begins until after it finishes.
type RunLock struct {
	fl *flock.Flock
}

// AcquireRunLock takes the advisory lock next to the database file. It fails
// fast rather than queueing: a second concurrent import is an operator error.
func AcquireRunLock(dbPath string) (*RunLock, error) {
	fl := flock.New(dbPath + ".runlock")
	locked, err := fl.TryLock()
	if err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeRunLocked, "acquire run lock", err).
			WithContext("lock_path", fl.Path())
	}
	if !locked {
		return nil, apperrors.CatalogError(apperrors.CodeRunLocked, "acquire run lock", nil).
			WithContext("lock_path", fl.Path())
	}
	return &RunLock{fl: fl}, nil
}

// Release drops the advisory lock.
func (l *RunLock) Release() error {
	return l.fl.Unlock()
}
