package rbac

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

type memorySource struct {
	roles map[string]Role
}

// NewMemorySource returns a RoleSource backed by a copy of roles.
func NewMemorySource(roles map[string]Role) RoleSource {
	cp := make(map[string]Role, len(roles))
	for name, r := range roles {
		cp[name] = Role{
			Permissions: slices.Clone(r.Permissions),
			Inherits:    slices.Clone(r.Inherits),
		}
	}
	return &memorySource{roles: cp}
}

func (s *memorySource) Load(context.Context) (map[string]Role, error) {
	return maps.Clone(s.roles), nil
}

// policyFile is the on-disk layout:
//
//	roles:
//	  viewer:
//	    permissions: [invoices.read]
//	  admin:
//	    permissions: ["*"]
//	    inherits: [viewer]
type policyFile struct {
	Roles map[string]Role `yaml:"roles"`
}

// NewYAMLSource parses role definitions from r.
func NewYAMLSource(r io.Reader) (RoleSource, error) {
	var f policyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidPolicyFile, err)
	}
	return NewMemorySource(f.Roles), nil
}

// NewYAMLSourceFromFile parses role definitions from the file at path.
func NewYAMLSourceFromFile(path string) (RoleSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidPolicyFile, err)
	}
	defer f.Close()

	return NewYAMLSource(f)
}
