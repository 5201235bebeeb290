// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package ingress

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/c2h5oh/datasize"
)

// Config configures the ingress front-end.
type Config struct {
	// Listener is the address the server listens on.
	Listener string `yaml:"listener"`

	// PublicSpawnEnabled, if false, restricts spawn-bearing endpoints to
	// the internal allow-list below.
	PublicSpawnEnabled bool `yaml:"public_spawn_enabled"`

	// AllowedHosts is the Host header allow-list for internal callers.
	AllowedHosts []string `yaml:"allowed_hosts"`

	// AllowedCIDRs is the client-IP allow-list for internal callers,
	// expressed as CIDR literals (e.g. "10.0.0.0/8").
	AllowedCIDRs []string `yaml:"allowed_cidrs"`

	// MaxUploadSize caps the byte size of a single upload, as a quantity
	// literal ("1Gi", "500Mi"). Enforced while streaming, not just via
	// Content-Length, since chunked uploads don't set one.
	MaxUploadSize string `yaml:"max_upload_size"`

	// SchemaPath, if set, points at a JSON schema the canonicalised
	// execute payload must validate against. Falls back to the
	// BEE_SCHEMA_PATH environment variable.
	SchemaPath string `yaml:"schema_path"`

	// RequireChatID rejects execute requests with an empty chat_id as
	// Unauthorised rather than letting them through with no quota/expiry
	// scoping.
	RequireChatID bool `yaml:"require_chat_id"`
}

func (c *Config) applyDefaults() {
	if c.Listener == "" {
		c.Listener = ":7800"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "1Gi"
	}
	if c.SchemaPath == "" {
		c.SchemaPath = os.Getenv("BEE_SCHEMA_PATH")
	}
}

// maxUploadBytes parses MaxUploadSize into a byte count.
func (c *Config) maxUploadBytes() (int64, error) {
	return parseByteQuantity(c.MaxUploadSize)
}

// parseByteQuantity parses Kubernetes-style binary quantity literals
// ("1Gi", "500Mi", "2Ki") by delegating to datasize.ByteSize, which
// already treats its "KB"/"MB"/"GB" suffixes as powers of 1024 -- so a
// trailing "i" is simply normalized away before parsing.
func parseByteQuantity(s string) (int64, error) {
	normalized := s
	switch {
	case strings.HasSuffix(s, "iB"):
		normalized = strings.TrimSuffix(s, "iB") + "B"
	case strings.HasSuffix(s, "i"):
		normalized = strings.TrimSuffix(s, "i") + "B"
	}
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(normalized)); err != nil {
		return 0, fmt.Errorf("invalid byte quantity %q: %s", s, err)
	}
	return int64(v.Bytes()), nil
}

// parsedCIDRs pre-parses AllowedCIDRs plus the loopback range, so every
// request doesn't reparse the configured list.
func (c *Config) parsedCIDRs() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.AllowedCIDRs)+1)
	_, loopback, _ := net.ParseCIDR("127.0.0.0/8")
	nets = append(nets, loopback)
	for _, cidr := range c.AllowedCIDRs {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed_cidrs entry %q: %s", cidr, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}
