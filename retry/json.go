package retry

import jsoniter "github.com/json-iterator/go"

// jsonUnmarshal uses json-iterator, the same fast-path JSON library the
// teacher depends on directly, for the handful of small KV payloads this
// client exchanges.
func jsonUnmarshal(data []byte, v interface{}) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, v)
}
