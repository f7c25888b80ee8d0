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
package backblaze

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrBucketNotFound = errors.New("bucket not found")

// Upload copies a local file into the named bucket under prefix. Credentials
// come from the backblaze.application_id and backblaze.application_key
// settings.
func Upload(fn, bucketName, prefix string) error {
	bucket, err := openBucket(bucketName)
	if err != nil {
		return err
	}

	fh, err := os.Open(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("open file for upload failed")
		return err
	}
	defer fh.Close()

	remoteName := fmt.Sprintf("%s/%s", prefix, filepath.Base(fn))

	uploaded, err := bucket.UploadFile(remoteName, map[string]string{}, fh)
	if err != nil {
		log.Error().Err(err).Str("FileName", remoteName).Str("BucketName", bucketName).Msg("save file to backblaze failed")
		return err
	}

	log.Info().
		Str("FileName", uploaded.Name).
		Str("ID", uploaded.ID).
		Int64("Size", uploaded.ContentLength).
		Msg("uploaded file to backblaze")
	return nil
}

func openBucket(name string) (*backblaze.Bucket, error) {
	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          viper.GetString("backblaze.application_id"),
		ApplicationKey: viper.GetString("backblaze.application_key"),
	})
	if err != nil {
		log.Error().Err(err).Msg("authorize backblaze failed")
		return nil, err
	}

	bucket, err := b2.Bucket(name)
	if err != nil {
		log.Error().Err(err).Str("BucketName", name).Msg("lookup bucket failed")
		return nil, err
	}
	if bucket == nil {
		log.Error().Str("BucketName", name).Msg("bucket does not exist")
		return nil, ErrBucketNotFound
	}

	return bucket, nil
}
