package wdk

import "strings"

// Errors collects the errors of several independent operations, such as
// closing every database of a store.
type Errors []error

func (errs Errors) Error() string {
	errstrings := make([]string, len(errs))
	for i, err := range errs {
		errstrings[i] = err.Error()
	}
	return strings.Join(errstrings, "; ")
}

// Err returns errs as an error, or nil if it is empty.
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
