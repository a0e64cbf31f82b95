// Package shellconfig is the YAML configuration for the server shell
// itself — bind address, worker count, and which optional gates to wire
// in. It is separate from internal/configstream, which loads the zone
// data; this file only ever controls the socket, worker pool, and
// startup collaborators around the query handler.
package shellconfig

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the top-level shell configuration document.
type File struct {
	Listen        string        `yaml:"listen"`
	MetricsListen string        `yaml:"metrics_listen,omitempty"`
	Workers       int           `yaml:"workers,omitempty"`
	ACL           *ACLSection   `yaml:"acl,omitempty"`
	RateLimit     *RateSection  `yaml:"rate_limit,omitempty"`
}

// ACLSection configures the optional source-IP gate.
type ACLSection struct {
	DefaultAllow bool     `yaml:"default_allow"`
	Allow        []string `yaml:"allow,omitempty"`
	Deny         []string `yaml:"deny,omitempty"`
}

// RateSection configures the optional per-source token bucket.
type RateSection struct {
	QueriesPerSecond float64       `yaml:"queries_per_second"`
	Burst            int           `yaml:"burst"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval,omitempty"`
}

// Load reads and parses a shell config file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
