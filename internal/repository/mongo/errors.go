package mongo

import (
	"fmt"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"
)

// storageErr wraps unexpected driver/transport failures as
// ErrStorageUnavailable. Services propagate it unchanged; retry and backoff
// live with the storage transport, never in the workflow core.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", repository.ErrStorageUnavailable, err)
}
