package outbound

// MergeHeaders combines the three header layers in fixed precedence order:
// engine defaults, then endpoint headers, then per-call overrides. Later
// layers win per key; keys unique to any layer survive. The result is a
// fresh map — none of the inputs are mutated or aliased.
func MergeHeaders(defaults, endpoint, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(endpoint)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range endpoint {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
