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
	"net"
	"net/http"

	"github.com/uber/beebox/utils/handler"
)

// originGuard rejects spawn-bearing requests (execute, upload) that
// neither carry an allow-listed Host header nor originate from an
// allow-listed CIDR, unless public_spawn_enabled is set. The client IP is
// compared against every configured network, including the implicit
// loopback range so co-located callers are always trusted.
type originGuard struct {
	config Config
	cidrs  []*net.IPNet
}

func newOriginGuard(config Config) (*originGuard, error) {
	cidrs, err := config.parsedCIDRs()
	if err != nil {
		return nil, err
	}
	return &originGuard{config: config, cidrs: cidrs}, nil
}

func (g *originGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.config.PublicSpawnEnabled || g.allowed(r) {
			next.ServeHTTP(w, r)
			return
		}
		handler.Wrap(func(w http.ResponseWriter, r *http.Request) error {
			return handler.ErrorStatus(http.StatusForbidden)
		})(w, r)
	})
}

func (g *originGuard) allowed(r *http.Request) bool {
	for _, host := range g.config.AllowedHosts {
		if r.Host == host {
			return true
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, cidr := range g.cidrs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
