// Package librenms implements the parts of the LibreNMS v0 REST API the
// inventory needs: listing device groups, resolving group members and
// fetching device records.
//
// Every response carries a "status" field. When it is "error" the request
// failed and "message" explains why, regardless of the HTTP status code.
package librenms

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/wwolkers/librenms-inventory/internal/url"
)

const statusError = "error"

// Getter performs a GET request and returns the HTTP status code and body.
// Transport failures are returned as errors; API failures are not.
type Getter interface {
	Get(ctx context.Context, url string) (int, []byte, error)
}

type API struct {
	BaseURL string
	getter  Getter
}

// NewAPI() returns an API rooted at baseURL, e.g. "https://nms/api/v0".
func NewAPI(baseURL string, getter Getter) *API {
	return &API{BaseURL: baseURL, getter: getter}
}

// DeviceGroups() lists every device group defined on the server.
func (a *API) DeviceGroups(ctx context.Context) ([]DeviceGroup, error) {
	var res groupsResponse
	if err := a.get(ctx, "device groups", &res, "devicegroups"); err != nil {
		return nil, err
	}
	log.Debug().Int("count", len(res.Groups)).Msg("fetched device groups")
	return res.Groups, nil
}

// GroupMembers() returns the ids of the devices in group. An empty group is
// reported by the API as an error and is translated to an empty result.
func (a *API) GroupMembers(ctx context.Context, group DeviceGroup) ([]int, error) {
	var res membersResponse
	err := a.get(ctx, fmt.Sprintf("device group %q", group.Name), &res, "devicegroups", group.Name)
	if IsEmptyGroup(err) {
		log.Debug().Str("group", group.Name).Msg("device group has no members")
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(res.Devices))
	for _, d := range res.Devices {
		ids = append(ids, d.DeviceID)
	}
	return ids, nil
}

// Device() fetches the full record of a single device.
func (a *API) Device(ctx context.Context, id int) (Device, error) {
	var (
		res      devicesResponse
		resource = fmt.Sprintf("device %d", id)
	)
	if err := a.get(ctx, resource, &res, "devices", strconv.Itoa(id)); err != nil {
		return Device{}, err
	}
	if len(res.Devices) == 0 {
		return Device{}, &NotFoundError{Resource: resource}
	}
	dev, err := newDevice(res.Devices[0])
	if err != nil {
		return Device{}, fmt.Errorf("%s: %w", resource, err)
	}
	return dev, nil
}

// get() requests the endpoint made of segments and decodes the body into v,
// which must embed an envelope.
func (a *API) get(ctx context.Context, resource string, v interface{ status() envelope }, segments ...string) error {
	endpoint := url.Join(a.BaseURL, segments...)
	code, body, err := a.getter.Get(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%s: %w", resource, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		if code < 200 || code > 299 {
			return &APIError{Resource: resource, StatusCode: code}
		}
		return fmt.Errorf("%s: failed to decode response: %w", resource, err)
	}
	if env := v.status(); env.Status == statusError {
		return &APIError{Resource: resource, StatusCode: code, Message: env.Message}
	}
	if code < 200 || code > 299 {
		return &APIError{Resource: resource, StatusCode: code}
	}
	return nil
}
