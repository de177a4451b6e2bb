package xmlcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const dcNamespace = "http://purl.org/dc/elements/1.1/"
const dcSchema = "http://dublincore.org/schemas/xmls/simpledc20021212.xsd"

func TestValidateAccepts(t *testing.T) {
	doc := `<dc:record xmlns:dc="` + dcNamespace + `" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="` + dcNamespace + ` ` + dcSchema + `"/>`
	err := Validate(doc, dcNamespace, dcSchema)
	assert.NoError(t, err)
}

func TestValidateRejectsMalformed(t *testing.T) {
	err := Validate("<not-closed>", dcNamespace, dcSchema)
	assert.Error(t, err)
}

func TestValidateRejectsWrongNamespace(t *testing.T) {
	doc := `<record xmlns="urn:other" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="` + dcSchema + `"/>`
	err := Validate(doc, dcNamespace, dcSchema)
	assert.ErrorContains(t, err, "wrong xml namespace")
}

func TestValidateRejectsMissingSchemaLocation(t *testing.T) {
	doc := `<dc:record xmlns:dc="` + dcNamespace + `"/>`
	err := Validate(doc, dcNamespace, dcSchema)
	assert.ErrorContains(t, err, "no schema location")
}

func TestValidateRejectsWrongSchemaLocation(t *testing.T) {
	doc := `<dc:record xmlns:dc="` + dcNamespace + `" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="urn:other urn:other.xsd"/>`
	err := Validate(doc, dcNamespace, dcSchema)
	assert.ErrorContains(t, err, "wrong schema location")
}
