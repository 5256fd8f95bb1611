package manilaplugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"sort"
)

// Canonical authentication keys. The key set is advisory: payloads with
// missing or extra keys are sent after a logged warning, since downstream
// charms may tolerate partial or evolving schemas.
const (
	AuthUsername        = "username"
	AuthPassword        = "password"
	AuthProjectDomainID = "project_domain_id"
	AuthProjectName     = "project_name"
	AuthUserDomainID    = "user_domain_id"
	AuthURI             = "auth_uri"
	AuthURL             = "auth_url"
	AuthType            = "auth_type"
)

var authKeys = []string{
	AuthUsername,
	AuthPassword,
	AuthProjectDomainID,
	AuthProjectName,
	AuthUserDomainID,
	AuthURI,
	AuthURL,
	AuthType,
}

// AuthenticationData is the service-user credential record the requirer
// sends to the plugin. It is a map rather than a struct so that payloads
// deviating from the canonical key set still round-trip intact.
type AuthenticationData map[string]string

// Equal reports whether d and other have the same keys and values.
func (d AuthenticationData) Equal(other AuthenticationData) bool {
	return maps.Equal(d, other)
}

// keySetDiff returns the canonical keys absent from d and the keys of d
// outside the canonical set, both sorted.
func (d AuthenticationData) keySetDiff() (missing, extra []string) {
	for _, k := range authKeys {
		if _, ok := d[k]; !ok {
			missing = append(missing, k)
		}
	}
	expected := make(map[string]struct{}, len(authKeys))
	for _, k := range authKeys {
		expected[k] = struct{}{}
	}
	for k := range d {
		if _, ok := expected[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return missing, extra
}

// ConfigOption is a single key/value line within a config-file section. It
// is encoded as a two-element JSON array.
type ConfigOption struct {
	Key   string
	Value string
}

func (o ConfigOption) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{o.Key, o.Value})
}

func (o *ConfigOption) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("config option must be a [key, value] pair: %w", err)
	}
	o.Key, o.Value = pair[0], pair[1]
	return nil
}

// Section is the body of one config-file section: either an ordered list of
// options or an opaque literal string.
type Section struct {
	Options []ConfigOption
	Literal string
	// IsLiteral marks Literal as the section body, even when empty.
	IsLiteral bool
}

// LiteralSection returns a Section carrying an opaque string body.
func LiteralSection(s string) Section {
	return Section{Literal: s, IsLiteral: true}
}

func (s Section) MarshalJSON() ([]byte, error) {
	if s.IsLiteral {
		return json.Marshal(s.Literal)
	}
	if s.Options == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Options)
}

func (s *Section) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		*s = Section{IsLiteral: true}
		return json.Unmarshal(data, &s.Literal)
	}
	*s = Section{}
	return json.Unmarshal(data, &s.Options)
}

// ConfigFile maps section names to section bodies for one config file.
type ConfigFile map[string]Section

// ConfigurationData is what the plugin sends back: a completeness marker
// plus configuration fragments grouped by the config file they belong in.
// Complete false means the plugin is not ready yet or the fragments are
// partial, and the requirer should not write them out.
//
// On the wire the completeness marker and the file names share one JSON
// object: {"complete": bool, "<config file>": {...}, ...}. The file name
// "complete" is therefore reserved by the protocol.
type ConfigurationData struct {
	Complete bool
	Files    map[string]ConfigFile
}

func (c ConfigurationData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Files)+1)
	out["complete"] = c.Complete
	for name, file := range c.Files {
		out[name] = file
	}
	return json.Marshal(out)
}

func (c *ConfigurationData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ConfigurationData{}
	if b, ok := raw["complete"]; ok {
		if err := json.Unmarshal(b, &c.Complete); err != nil {
			return fmt.Errorf("configuration data: complete: %w", err)
		}
		delete(raw, "complete")
	}
	if len(raw) == 0 {
		return nil
	}
	c.Files = make(map[string]ConfigFile, len(raw))
	for name, b := range raw {
		var file ConfigFile
		if err := json.Unmarshal(b, &file); err != nil {
			return fmt.Errorf("configuration data: file %q: %w", name, err)
		}
		c.Files[name] = file
	}
	return nil
}
