package types

import "encoding/json"

// Decode converts a bus payload into dst. Payloads arrive either typed,
// as raw JSON, or as the generic maps the config service publishes; the
// latter two are normalised through a JSON round trip.
func Decode[T any](src any, dst *T) error {
	switch v := src.(type) {
	case T:
		*dst = v
		return nil
	case *T:
		if v != nil {
			*dst = *v
			return nil
		}
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
