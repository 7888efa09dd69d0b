package browser

import (
	"encoding/json"

	"github.com/go-rod/rod/lib/proto"
)

// marshalCookies serializes cookies read back from the browser into the
// NetworkCookieParam shape SetCookies expects, so a saved state round-trips
// directly through LoadStorageState.
func marshalCookies(cookies []*proto.NetworkCookie) ([]byte, error) {
	params := make([]*proto.NetworkCookieParam, len(cookies))
	for i, c := range cookies {
		params[i] = &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
			Expires:  c.Expires,
		}
	}
	return json.Marshal(params)
}

func unmarshalCookies(data []byte) ([]*proto.NetworkCookieParam, error) {
	var params []*proto.NetworkCookieParam
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return params, nil
}
