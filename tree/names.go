package tree

import "strings"

// Namespace URIs that are bound to reserved prefixes in any document.
const (
	// XMLNamespace is the namespace of the xml: prefix.
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
	// XMLNSNamespace is the namespace of namespace declaration attributes.
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// QName is a qualified name: a namespace URI (possibly empty) paired with a
// local name. Equality is structural.
type QName struct {
	Namespace string
	Local     string
}

// Name creates a QName without a namespace.
func Name(local string) QName {
	return QName{Local: local}
}

// NameNS creates a QName in the given namespace.
func NameNS(namespace, local string) QName {
	return QName{Namespace: namespace, Local: local}
}

// ParseClarkName deconstructs a name in Clark notation, "{namespace}local".
// Names without a braced prefix yield a QName with an empty namespace.
func ParseClarkName(name string) QName {
	if strings.HasPrefix(name, "{") {
		if end := strings.IndexByte(name, '}'); end > 0 {
			return QName{Namespace: name[1:end], Local: name[end+1:]}
		}
	}
	return QName{Local: name}
}

// String renders the name in Clark notation when it is namespaced.
func (n QName) String() string {
	if n.Namespace == "" {
		return n.Local
	}
	return "{" + n.Namespace + "}" + n.Local
}

// Attributes reserved by the XML specification.
var (
	xmlSpaceName = QName{Namespace: XMLNamespace, Local: "space"}
	xmlIDName    = QName{Namespace: XMLNamespace, Local: "id"}
)

// Namespaces maps prefixes to namespace URIs. The empty prefix addresses the
// default namespace. The reserved prefixes xml and xmlns resolve in every
// instance and cannot be overridden.
type Namespaces map[string]string

// Resolve returns the namespace bound to prefix.
func (ns Namespaces) Resolve(prefix string) (string, bool) {
	switch prefix {
	case "xml":
		return XMLNamespace, true
	case "xmlns":
		return XMLNSNamespace, true
	}
	uri, ok := ns[prefix]
	return uri, ok
}

// HasDefault reports whether a default namespace is declared.
func (ns Namespaces) HasDefault() bool {
	_, ok := ns[""]
	return ok
}

// merged returns a copy of fallback overlaid with ns. Reserved prefixes are
// dropped from the result since Resolve always serves them.
func (ns Namespaces) merged(fallback Namespaces) Namespaces {
	result := make(Namespaces, len(ns)+len(fallback))
	for prefix, uri := range fallback {
		result[prefix] = uri
	}
	for prefix, uri := range ns {
		result[prefix] = uri
	}
	delete(result, "xml")
	delete(result, "xmlns")
	return result
}
