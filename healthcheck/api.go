// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package healthcheck

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

const (
	checksURL = "https://healthchecks.io/api/v3/checks/"
	pingHost  = "https://hc-ping.com"

	graceSeconds = 3600
)

var ErrStatus = errors.New("unexpected status code")

// Check describes a healthchecks.io check to register.
type Check struct {
	Name     string
	Slug     string
	Tags     []string
	Schedule string
}

type checkRequest struct {
	APIKey   string `json:"api_key"`
	Name     string `json:"name"`
	Grace    int    `json:"grace"`
	Schedule string `json:"schedule"`
	Slug     string `json:"slug"`
	Tags     string `json:"tags"`
	Timezone string `json:"tz"`
}

type checkResponse struct {
	UUID    string `json:"uuid"`
	PingURL string `json:"ping_url"`
}

// Create registers a check and returns its id. The management API key is
// read from the healthchecks.apikey setting.
func Create(check Check) (string, error) {
	body := checkRequest{
		APIKey:   viper.GetString("healthchecks.apikey"),
		Name:     check.Name,
		Grace:    graceSeconds,
		Schedule: check.Schedule,
		Slug:     check.Slug,
		Tags:     strings.Join(check.Tags, " "),
		Timezone: "America/New_York",
	}

	var created checkResponse

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&created).
		Post(checksURL)
	if err != nil {
		return "", err
	}

	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return "", fmt.Errorf("%w (%d): %s", ErrStatus, resp.StatusCode(), string(resp.Body()))
	}

	// read-only management keys omit the uuid field
	if created.UUID != "" {
		return created.UUID, nil
	}
	return path.Base(created.PingURL), nil
}

// Ping reports a successful run to the check with the given id.
func Ping(id string) error {
	return ping(fmt.Sprintf("%s/%s", pingHost, id))
}

// PingFail reports a failed run to the check with the given id.
func PingFail(id string) error {
	return ping(fmt.Sprintf("%s/%s/fail", pingHost, id))
}

func ping(url string) error {
	resp, err := resty.New().R().Get(url)
	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w (%d)", ErrStatus, resp.StatusCode())
	}

	return nil
}
