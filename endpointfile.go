package outbound

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// endpointsFile is the on-disk schema for LoadEndpoints.
//
//	endpoints:
//	  - name: billing
//	    method: POST
//	    url: https://billing.internal/v1/charge
//	    timeout: 5s
//	    max_retries: 2
//	    retry_statuses: [500, 502, 503]
//	    headers:
//	      X-Team: payments
type endpointsFile struct {
	Endpoints []fileEndpoint `yaml:"endpoints"`
}

type fileEndpoint struct {
	Name          string            `yaml:"name"`
	Method        string            `yaml:"method"`
	URL           string            `yaml:"url"`
	Headers       map[string]string `yaml:"headers"`
	Timeout       string            `yaml:"timeout"`
	MaxRetries    int               `yaml:"max_retries"`
	RetryStatuses []int             `yaml:"retry_statuses"`
}

// LoadEndpoints reads endpoint configs from a YAML file. The engine does
// not mandate any configuration source; this is a convenience loader for
// the common case. Each entry is validated before being returned.
func LoadEndpoints(path string) ([]EndpointConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("outbound: read endpoints file: %w", err)
	}

	var file endpointsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("outbound: parse endpoints file: %w", err)
	}

	configs := make([]EndpointConfig, 0, len(file.Endpoints))
	for _, fe := range file.Endpoints {
		cfg := EndpointConfig{
			Name:          fe.Name,
			Method:        fe.Method,
			URL:           fe.URL,
			Headers:       fe.Headers,
			MaxRetries:    fe.MaxRetries,
			RetryStatuses: fe.RetryStatuses,
		}
		if fe.Timeout != "" {
			d, perr := time.ParseDuration(fe.Timeout)
			if perr != nil {
				return nil, fmt.Errorf("outbound: endpoint %q: bad timeout %q: %w", fe.Name, fe.Timeout, perr)
			}
			cfg.Timeout = d
		}
		if verr := cfg.Validate(); verr != nil {
			return nil, verr
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
