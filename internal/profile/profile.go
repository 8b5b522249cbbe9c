// Package profile loads the applicant's answers: a flat field-name to value
// map read from a YAML file. Values are handed to the form-filling loop as
// raw strings; the agent decides which field answers which question.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Profile is the applicant's field map, keys normalized to lower snake case.
type Profile map[string]string

// Load reads the profile YAML at path. A missing file is an error: form
// filling without a profile would invent answers.
func Load(path string) (Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading profile %q: %w", path, err)
	}

	p := make(Profile)
	for _, key := range v.AllKeys() {
		p[normalizeKey(key)] = v.GetString(key)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("profile %q contains no fields", path)
	}
	return p, nil
}

// Get returns the value for the field, trying the normalized form of name.
func (p Profile) Get(name string) (string, bool) {
	val, ok := p[normalizeKey(name)]
	return val, ok
}

// Render produces the deterministic "field: value" block used in prompts.
func (p Profile) Render() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, p[k])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ReplaceAll(key, "-", "_")
}
