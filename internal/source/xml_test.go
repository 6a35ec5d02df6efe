package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testXML = `<?xml version="1.0" encoding="UTF-8"?>
<users>
  <user>
    <email>Hans@Example.com</email>
    <name>Müller, Hans</name>
    <hobbies>
      <hobby>Schach</hobby>
      <hobby>Bouldern</hobby>
    </hobbies>
  </user>
  <user>
    <email>eva@example.com</email>
    <name>Schmidt, Eva</name>
    <hobbies/>
  </user>
  <user>
    <name>Ohne Email</name>
    <hobbies><hobby>Lesen</hobby></hobbies>
  </user>
</users>`

func TestParseXML(t *testing.T) {
	records, err := parseXML(strings.NewReader(testXML))
	require.NoError(t, err)
	require.Len(t, records, 3)

	hans := records[0]
	assert.Equal(t, "hans@example.com", hans.Email)
	assert.Equal(t, "Hans", hans.FirstName)
	assert.Equal(t, "Müller", hans.LastName)
	if assert.Len(t, hans.Hobbies, 2) {
		assert.Equal(t, "Schach", hans.Hobbies[0].Name)
		assert.Nil(t, hans.Hobbies[0].Rating)
		assert.Equal(t, "Bouldern", hans.Hobbies[1].Name)
	}

	assert.Empty(t, records[1].Hobbies)

	// missing email surfaces as a malformed record, not an error
	assert.Empty(t, records[2].Email)
}

func TestParseXML_Invalid(t *testing.T) {
	_, err := parseXML(strings.NewReader("not xml at all"))
	assert.Error(t, err)
}

func TestXMLSource_Records(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hobbies.xml")
	require.NoError(t, os.WriteFile(path, []byte(testXML), 0o644))

	src := NewXMLSource(path)
	records, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestXMLSource_MissingFile(t *testing.T) {
	src := NewXMLSource(filepath.Join(t.TempDir(), "nope.xml"))
	_, err := src.Records(context.Background())
	assert.Error(t, err)
}
