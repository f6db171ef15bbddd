// Copyright (C) 2017 Google Inc.
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

package trace

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ParseUUID parses the standard UUID text form («xxxxxxxx-xxxx-xxxx-xxxx-
// xxxxxxxxxxxx»), matching the source's get_unary_uuid (ctf-visitor-
// generate-io-struct.c), which delegates to libuuid's uuid_parse.
func ParseUUID(s string) ([16]byte, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return [16]byte{}, errors.Wrapf(err, "invalid uuid %q", s)
	}
	return [16]byte(u), nil
}
