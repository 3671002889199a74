package em3

import "strings"

// asciiFields splits an ASCII key=value block (comma separated pairs,
// embedded commas escaped as '^') into an ordered map. Order matters for
// round-tripping Installation records, so both the keys and a lookup are
// returned.
type asciiFields struct {
	keys   []string
	values map[string]string
}

func (f asciiFields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// parseASCIIFields decodes a comma-delimited, '^'-escaped key=value block
// as used by Start/Stop installation payloads.
func parseASCIIFields(s string) asciiFields {
	out := asciiFields{values: make(map[string]string)}
	for _, raw := range strings.Split(s, ",") {
		unescaped := strings.ReplaceAll(raw, "^", ",")
		kv := strings.SplitN(unescaped, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := kv[0]
		out.keys = append(out.keys, key)
		out.values[key] = kv[1]
	}
	return out
}

// encodeASCIIFields rebuilds a key=value block in insertion order, escaping
// any literal comma in a value as '^' so the comma-separated framing stays
// unambiguous.
func encodeASCIIFields(keys []string, values map[string]string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(values[k], ",", "^")
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}
