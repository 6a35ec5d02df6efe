package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/wimwenigerkind/LetsMeet/internal/normalize"
)

// XMLSource reads the supplementary hobby list, a document of repeated
// <user> elements each carrying an email and a nested hobby list. XML
// hobbies have no rating.
type XMLSource struct {
	path string
}

func NewXMLSource(path string) *XMLSource {
	return &XMLSource{path: path}
}

func (s *XMLSource) Name() string { return "xml" }

type xmlUser struct {
	Email   string   `xml:"email"`
	Name    string   `xml:"name"`
	Hobbies []string `xml:"hobbies>hobby"`
}

type xmlDocument struct {
	XMLName xml.Name  `xml:"users"`
	Users   []xmlUser `xml:"user"`
}

func (s *XMLSource) Records(_ context.Context) ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xml file %s: %w", s.path, err)
	}
	defer f.Close()

	return parseXML(f)
}

func parseXML(r io.Reader) ([]Record, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode xml: %w", err)
	}

	records := make([]Record, 0, len(doc.Users))
	for _, u := range doc.Users {
		rec := Record{Email: normalize.Email(u.Email)}
		rec.FirstName, rec.LastName = normalize.SplitName(u.Name)

		for _, name := range u.Hobbies {
			// a hobby element holds a single name, but the odd entry
			// carries the spreadsheet's "%NN%" suffix anyway
			rec.Hobbies = append(rec.Hobbies, normalize.ParseHobbies(name)...)
		}
		records = append(records, rec)
	}
	return records, nil
}
