package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrCheckoutInFlight means the session already has an active attempt.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	// ErrNoActiveCheckout means verify or cancel arrived without a matching
	// Begin, or the attempt expired.
	ErrNoActiveCheckout = errors.New("no active checkout for session")
)

// ValidationError reports rejected input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid checkout input: %s", strings.Join(names, ", "))
}
