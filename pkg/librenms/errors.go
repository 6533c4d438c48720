package librenms

import (
	"errors"
	"fmt"
	"strings"
)

// The API answers a group lookup with an error status when the group is
// empty. This is the only error message the inventory treats as a result.
const noDevicesInGroup = "No devices found in group"

// APIError is returned when LibreNMS reports a failure in its response
// envelope, or answers with a non-2xx status and no envelope at all.
type APIError struct {
	Resource   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: api returned status code %d", e.Resource, e.StatusCode)
	}
	return fmt.Sprintf("%s: api error: %s", e.Resource, e.Message)
}

// NotFoundError is returned when a well-formed response does not contain
// the record that was asked for.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found in api response", e.Resource)
}

// IsEmptyGroup reports whether err is the error LibreNMS returns for a
// device group without members.
func IsEmptyGroup(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, noDevicesInGroup)
}
