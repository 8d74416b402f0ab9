package replicate

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidIdentifier = errors.New(`invalid identifier, it must be in the format "owner/name" or "owner/name:version"`)

// Identifier references a model with an optional pinned version.
type Identifier struct {
	// Owner is the username of the model owner.
	Owner string

	// Name is the name of the model.
	Name string

	// Version is the version of the model.
	Version *string
}

func ParseIdentifier(identifier string) (*Identifier, error) {
	parts := strings.Split(identifier, "/")
	if len(parts) != 2 {
		return nil, ErrInvalidIdentifier
	}

	owner := parts[0]
	name := parts[1]
	var version *string

	if name, v, found := strings.Cut(name, ":"); found {
		if name == "" || v == "" {
			return nil, ErrInvalidIdentifier
		}
		return newIdentifier(owner, name, &v)
	}

	return newIdentifier(owner, name, version)
}

func newIdentifier(owner, name string, version *string) (*Identifier, error) {
	if owner == "" || name == "" {
		return nil, ErrInvalidIdentifier
	}

	return &Identifier{
		Owner:   owner,
		Name:    name,
		Version: version,
	}, nil
}

func (i *Identifier) String() string {
	if i.Version == nil {
		return fmt.Sprintf("%s/%s", i.Owner, i.Name)
	}

	return fmt.Sprintf("%s/%s:%s", i.Owner, i.Name, *i.Version)
}
