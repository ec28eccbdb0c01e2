package registry

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/anirudhraja/protodesc/schema"
)

/*
Resolve returns the descriptor a type name refers to when written inside
scope (a package or message full name such as "shop.v1.Order").
A leading dot means fully qualified. Otherwise the name is tried as given,
then relative to each enclosing scope from the innermost outwards.
Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
*/
func (r *Registry) Resolve(typeName, scope string) (schema.Descriptor, error) {
	if strings.HasPrefix(typeName, ".") {
		return r.Lookup(typeName)
	}
	// try resolving from inner entities up till the parent package
	if name, ok := r.splitNameAndCheck(typeName, scope); ok {
		return r.Lookup(name)
	}
	if d, err := r.Lookup(typeName); err == nil {
		return d, nil
	}
	return schema.Descriptor{}, errors.Wrapf(ErrNotFound, "unable to resolve type name %s in scope %s", typeName, scope)
}

// splitNameAndCheck walks scope outwards, appending typeName at each level.
func (r *Registry) splitNameAndCheck(typeName, scope string) (string, bool) {
	if scope == "" {
		return "", false
	}
	prefixSplit := strings.Split(scope, ".")
	for len(prefixSplit) > 0 && prefixSplit[0] != "" {
		entityName := strings.Join(prefixSplit, ".") + "." + typeName
		if r.has(entityName) {
			return entityName, true
		}
		// Omit the last element in each iteration as we go level above to outer entity
		prefixSplit = prefixSplit[:len(prefixSplit)-1]
	}
	return "", false
}

func (r *Registry) has(name string) bool {
	if _, ok := r.messages[name]; ok {
		return true
	}
	if _, ok := r.enums[name]; ok {
		return true
	}
	_, ok := r.services[name]
	return ok
}
