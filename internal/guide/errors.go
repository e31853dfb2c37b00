package guide

import "fmt"

// LoadError is a failed guide load. Fatal marks the first batch of a
// session: without it there is no grid to show.
type LoadError struct {
	Fatal bool
	Err   error
}

func (e *LoadError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("load guide: %v", e.Err)
	}
	return fmt.Sprintf("load more: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
