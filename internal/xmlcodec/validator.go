// Package xmlcodec validates Record XML against its Format, per spec
// §4.2: the root element's namespace must match, and an
// xsi:schemaLocation attribute must list the format's schema among
// its whitespace-separated tokens.
package xmlcodec

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Validate parses rawXML and checks it against namespace and schema.
// It returns a diagnostic error describing exactly what failed --
// malformed XML, namespace mismatch, missing schemaLocation, or a
// schemaLocation that does not list schema.
func Validate(rawXML, namespace, schema string) error {
	decoder := xml.NewDecoder(strings.NewReader(rawXML))

	for {
		tok, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("xmlcodec: malformed xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Space != namespace {
			return fmt.Errorf("xmlcodec: wrong xml namespace: got %q, want %q", start.Name.Space, namespace)
		}

		schemaLocation, found := findSchemaLocation(start.Attr)
		if !found {
			return fmt.Errorf("xmlcodec: no schema location")
		}

		for _, token := range strings.Fields(schemaLocation) {
			if token == schema {
				return nil
			}
		}
		return fmt.Errorf("xmlcodec: wrong schema location: %q does not list %q", schemaLocation, schema)
	}
}

func findSchemaLocation(attrs []xml.Attr) (string, bool) {
	for _, attr := range attrs {
		if attr.Name.Space == xsiNamespace && attr.Name.Local == "schemaLocation" {
			return attr.Value, true
		}
	}
	return "", false
}
