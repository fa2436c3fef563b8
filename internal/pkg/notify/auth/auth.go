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

package auth

import (
	"encoding/base64"
	"errors"
)

type AuthType string

const (
	AuthTypeBasic AuthType = "basic" // Basic authentication
)

// IAuthProvider supplies credentials to a mail channel.
type IAuthProvider interface {
	// GetAuthType gets the authentication type
	GetAuthType() AuthType
	// GetAuthHeader gets the authentication header key and value
	GetAuthHeader() (string, string)
	// Validate validates the authentication configuration
	Validate() error
}

// BasicAuth carries a username and password, used as SMTP PLAIN
// credentials and as the Mailjet API key pair.
type BasicAuth struct {
	Username string
	Password string
}

func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{
		Username: username,
		Password: password,
	}
}

func (a *BasicAuth) GetAuthType() AuthType {
	return AuthTypeBasic
}

func (a *BasicAuth) GetAuthHeader() (string, string) {
	credentials := a.Username + ":" + a.Password
	return "Authorization", "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func (a *BasicAuth) Validate() error {
	if a.Username == "" {
		return errors.New("username is required")
	}
	if a.Password == "" {
		return errors.New("password is required")
	}
	return nil
}
