package tree

// Attribute is a single attribute of a tag node. Instances obtained from a
// tag remain live views, changing the value through SetValue is reflected in
// the tree.
type Attribute struct {
	owner *Attributes
	name  QName
	value string
}

// Namespace returns the attribute's namespace, the empty string for
// unqualified attributes.
func (a *Attribute) Namespace() string { return a.name.Namespace }

// LocalName returns the attribute's local name.
func (a *Attribute) LocalName() string { return a.name.Local }

// Name returns the attribute's qualified name.
func (a *Attribute) Name() QName { return a.name }

// UniversalName returns the attribute's name in Clark notation, e.g.
// "{http://www.w3.org/XML/1998/namespace}id".
func (a *Attribute) UniversalName() string { return a.name.String() }

// Value returns the attribute's value.
func (a *Attribute) Value() string { return a.value }

// SetValue changes the attribute's value.
func (a *Attribute) SetValue(value string) { a.value = value }

// Owner returns the tag the attribute belongs to, or nil for detached
// attributes.
func (a *Attribute) Owner() *Tag {
	if a.owner == nil {
		return nil
	}
	return (*Tag)(a.owner.owner)
}

// Attributes is the ordered attribute collection of a tag node. The
// insertion order is preserved across mutations and serialization; setting
// an existing name keeps its position.
type Attributes struct {
	owner   *Node
	entries []*Attribute
}

// Len returns the number of attributes.
func (as *Attributes) Len() int { return len(as.entries) }

// Get returns the attribute with the given name, or nil. The name may be
// given in Clark notation to address a qualified attribute.
func (as *Attributes) Get(name string) *Attribute {
	return as.GetName(ParseClarkName(name))
}

// GetNS returns the attribute with the given namespace and local name, or
// nil.
func (as *Attributes) GetNS(namespace, local string) *Attribute {
	return as.GetName(QName{Namespace: namespace, Local: local})
}

// GetName returns the attribute with the given qualified name, or nil.
func (as *Attributes) GetName(name QName) *Attribute {
	for _, attr := range as.entries {
		if attr.name == name {
			return attr
		}
	}
	return nil
}

// Has reports whether an attribute with the given name exists. The name may
// be given in Clark notation.
func (as *Attributes) Has(name string) bool {
	return as.Get(name) != nil
}

// Set adds an attribute or updates the value of an existing one, keeping its
// position. The name may be given in Clark notation.
func (as *Attributes) Set(name, value string) *Attribute {
	return as.SetName(ParseClarkName(name), value)
}

// SetNS adds or updates a namespaced attribute.
func (as *Attributes) SetNS(namespace, local, value string) *Attribute {
	return as.SetName(QName{Namespace: namespace, Local: local}, value)
}

// SetName adds or updates an attribute by its qualified name.
func (as *Attributes) SetName(name QName, value string) *Attribute {
	if attr := as.GetName(name); attr != nil {
		attr.value = value
		return attr
	}
	attr := &Attribute{owner: as, name: name, value: value}
	as.entries = append(as.entries, attr)
	return attr
}

// Delete removes the attribute with the given name and reports whether one
// existed. The name may be given in Clark notation.
func (as *Attributes) Delete(name string) bool {
	return as.DeleteName(ParseClarkName(name))
}

// DeleteNS removes a namespaced attribute and reports whether one existed.
func (as *Attributes) DeleteNS(namespace, local string) bool {
	return as.DeleteName(QName{Namespace: namespace, Local: local})
}

// DeleteName removes the attribute with the given qualified name and reports
// whether one existed.
func (as *Attributes) DeleteName(name QName) bool {
	for i, attr := range as.entries {
		if attr.name == name {
			as.entries = append(as.entries[:i], as.entries[i+1:]...)
			attr.owner = nil
			return true
		}
	}
	return false
}

// All returns the attributes in their document order. The returned slice is
// a copy, the attributes themselves are live views.
func (as *Attributes) All() []*Attribute {
	result := make([]*Attribute, len(as.entries))
	copy(result, as.entries)
	return result
}

// cloneFor copies the collection for a cloned owner node.
func (as *Attributes) cloneFor(owner *Node) *Attributes {
	clone := &Attributes{owner: owner, entries: make([]*Attribute, len(as.entries))}
	for i, attr := range as.entries {
		clone.entries[i] = &Attribute{owner: clone, name: attr.name, value: attr.value}
	}
	return clone
}
