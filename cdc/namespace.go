package cdc

import "strings"

const customFieldMarker = "__c"

// Namespace is an optional org-specific prefix applied to custom field and
// object names before they are sent to the entity store. Standard names pass
// through unprefixed.
type Namespace string

// Field prefixes a custom-marker field name with the namespace. Names
// without the marker suffix are returned unchanged.
func (n Namespace) Field(name string) string {
	if n == "" || !strings.HasSuffix(name, customFieldMarker) {
		return name
	}
	return string(n) + name
}
