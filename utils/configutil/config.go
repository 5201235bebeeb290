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

// Package configutil loads and validates YAML configuration, supporting a
// single-parent "extends" chain so a deployment-specific config can inherit
// defaults from a base file.
package configutil

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"
)

// ErrCycleRef is returned when a config's extends chain refers back to
// itself.
var ErrCycleRef = errors.New("cyclic reference in configuration extends detected")

// ValidationError wraps the per-field errors returned by validator.v2.
type ValidationError struct {
	errs validator.ErrorMap
}

// Error implements error.
func (v ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s", v.errs.Error())
}

// ErrForField returns the validation errors for the named field, if any.
func (v ValidationError) ErrForField(field string) validator.ErrorArray {
	return v.errs[field]
}

type extendsStub struct {
	Extends string `yaml:"extends"`
}

func readExtends(filename string) (string, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return "", err
	}
	var stub extendsStub
	if err := yaml.Unmarshal(data, &stub); err != nil {
		return "", err
	}
	return stub.Extends, nil
}

// resolveExtends walks the extends chain starting at fpath, returning the
// filenames in base-to-derived order (fpath last). readExtendsFunc is
// injected for testing.
func resolveExtends(
	fpath string, readExtendsFunc func(string) (string, error)) ([]string, error) {

	seen := map[string]bool{fpath: true}
	chain := []string{fpath}
	cur := fpath
	for {
		parent, err := readExtendsFunc(cur)
		if err != nil {
			return nil, err
		}
		if parent == "" {
			break
		}
		if !filepath.IsAbs(parent) {
			parent = filepath.Join(filepath.Dir(cur), parent)
		}
		if seen[parent] {
			return nil, ErrCycleRef
		}
		seen[parent] = true
		chain = append([]string{parent}, chain...)
		cur = parent
	}
	return chain, nil
}

// Load reads filename and any files in its extends chain, merging them into
// config and validating the result.
func Load(filename string, config interface{}) error {
	filenames, err := resolveExtends(filename, readExtends)
	if err != nil {
		return err
	}
	return loadFiles(config, filenames)
}

// loadFiles unmarshals each file into config in order, so later files
// override earlier ones, then validates the merged result once.
func loadFiles(config interface{}, filenames []string) error {
	for _, fn := range filenames {
		data, err := ioutil.ReadFile(fn)
		if err != nil {
			return fmt.Errorf("read %s: %s", fn, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("unmarshal %s: %s", fn, err)
		}
	}
	if err := validator.Validate(config); err != nil {
		if errs, ok := err.(validator.ErrorMap); ok {
			return ValidationError{errs}
		}
		return err
	}
	return nil
}
