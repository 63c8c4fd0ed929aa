// Copyright 2024 The Prbot Authors.
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

package config

import "fmt"

var (
	errPEMDecode = fmt.Errorf("not a valid PEM block")
	errNotRSA    = fmt.Errorf("key is not an RSA private key")
)

func errMissing(key string) error {
	return fmt.Errorf("missing required configuration key: %s", key)
}

func errInvalid(key string, cause error) error {
	return fmt.Errorf("invalid value for %s: %w", key, cause)
}
