// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package identity

const (
	ModeAuto  = "auto"
	ModeToken = "token"
	ModeHTTP  = "http"
)

// Conf configures the external identity provider.
type Conf struct {
	Mode       string `mapstructure:"mode"`
	URL        string `mapstructure:"url"`
	AnonKey    string `mapstructure:"anonKey"`
	ServiceKey string `mapstructure:"serviceKey"`
	JWTSecret  string `mapstructure:"jwtSecret"`
	Timeout    int    `mapstructure:"timeout"`  // seconds
	CacheTTL   int    `mapstructure:"cacheTTL"` // seconds, 0 disables the validation cache

	// DisableProvision rejects identities with no local user instead of
	// creating one on first sight.
	DisableProvision bool `mapstructure:"disableProvision"`
}

func (c *Conf) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeAuto
	}
	if c.Timeout <= 0 {
		c.Timeout = 10
	}
}
