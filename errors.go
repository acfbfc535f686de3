package spawn

import (
	"errors"
	"fmt"
)

// ErrSystemStopped is returned by Spawn after the system has been shut down.
var ErrSystemStopped = errors.New("spawn: system is shut down")

// DuplicateIDError is returned when a requested actor name collides with a
// currently live actor. Ids of stopped actors are eligible for reuse.
type DuplicateIDError struct {
	Name string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("spawn: actor id %q is already taken by a live actor", e.Name)
}
