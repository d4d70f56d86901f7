// Package azure reads the Azure CLI profile to find the subscriptions the
// signed-in user can select.
package azure

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Profile mirrors ~/.azure/azureProfile.json.
type Profile struct {
	InstallationID string         `json:"installationId"`
	Subscriptions  []Subscription `json:"subscriptions"`
}

// Subscription is one entry of the profile's subscription list.
type Subscription struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	State           string     `json:"state"`
	User            Credential `json:"user"`
	IsDefault       bool       `json:"isDefault"`
	TenantID        string     `json:"tenantId"`
	EnvironmentName string     `json:"environmentName"`
}

// Credential identifies the principal a subscription is accessed with.
type Credential struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Label renders the subscription the way the header shows it.
func (s Subscription) Label() string {
	if s.Name == "" {
		return s.ID
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.ID)
}

var errNoHome = errors.New("could not find home directory")

// DefaultProfilePath returns the Azure CLI profile location for the current user.
func DefaultProfilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errNoHome
	}
	return filepath.Join(home, ".azure", "azureProfile.json"), nil
}

// LoadProfile reads and decodes the profile at path. An empty path uses
// DefaultProfilePath.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		p, err := DefaultProfilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read azure profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes profile JSON. The CLI writes the file with a UTF-8 BOM
// and occasionally stray control bytes; both are dropped before decoding.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := json.Unmarshal(sanitize(data), &profile); err != nil {
		return nil, fmt.Errorf("decode azure profile: %w", err)
	}
	return &profile, nil
}

// Default returns the subscription marked as default, if any.
func (p *Profile) Default() (Subscription, bool) {
	if p == nil {
		return Subscription{}, false
	}
	for _, sub := range p.Subscriptions {
		if sub.IsDefault {
			return sub, true
		}
	}
	return Subscription{}, false
}

// DefaultIndex returns the index of the default subscription or -1.
func (p *Profile) DefaultIndex() int {
	if p == nil {
		return -1
	}
	for i, sub := range p.Subscriptions {
		if sub.IsDefault {
			return i
		}
	}
	return -1
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

func sanitize(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if b < ' ' || b == 0x7f {
			continue
		}
		out = append(out, b)
	}
	return out
}
