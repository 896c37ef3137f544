package extract

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"golang.org/x/net/html/charset"
)

// rawPlayer mirrors one <player> element. A nil field means the child tag
// was not present at all.
type rawPlayer struct {
	FideID      *string `xml:"fideid"`
	Name        *string `xml:"name"`
	Country     *string `xml:"country"`
	Sex         *string `xml:"sex"`
	Title       *string `xml:"title"`
	WTitle      *string `xml:"w_title"`
	OTitle      *string `xml:"o_title"`
	FOATitle    *string `xml:"foa_title"`
	Rating      *string `xml:"rating"`
	Games       *string `xml:"games"`
	K           *string `xml:"k"`
	RapidRating *string `xml:"rapid_rating"`
	RapidGames  *string `xml:"rapid_games"`
	RapidK      *string `xml:"rapid_k"`
	BlitzRating *string `xml:"blitz_rating"`
	BlitzGames  *string `xml:"blitz_games"`
	BlitzK      *string `xml:"blitz_k"`
	Birthday    *string `xml:"birthday"`
	Flag        *string `xml:"flag"`

	Inner string `xml:",innerxml"`
}

// String returns the element in serialized form, for diagnostics.
func (r *rawPlayer) String() string {
	return "<player>" + r.Inner + "</player>"
}

// Document is a fully parsed ratings list held in memory.
type Document struct {
	Source  string
	players []*rawPlayer
	skipped int
}

// Len returns the number of player elements not yet consumed.
func (d *Document) Len() int {
	n := 0
	for _, p := range d.players {
		if p != nil {
			n++
		}
	}
	return n
}

// Skipped returns the number of malformed records dropped by Records under
// the Skip policy.
func (d *Document) Skipped() int { return d.skipped }

// Parse reads a complete XML ratings list from r. The root element may have
// any name; its <player> children become the document's records.
func Parse(r io.Reader, source string) (*Document, error) {
	var list struct {
		Players []*rawPlayer `xml:"player"`
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&list); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &SourceFormatError{Source: source, Err: err}
	}

	// Anything after the root element must be whitespace, comments or
	// processing instructions.
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &SourceFormatError{Source: source, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return nil, &SourceFormatError{
				Source: source,
				Err:    fmt.Errorf("unexpected element <%s> after root element", t.Name.Local),
			}
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return nil, &SourceFormatError{Source: source, Err: errors.New("text after root element")}
			}
		}
	}

	return &Document{Source: source, players: list.Players}, nil
}

// Open reads and parses the document at path on fs. Files ending in .gz are
// gunzipped; files ending in .zip are read from their first *.xml entry.
func Open(fs afero.Fs, path string) (*Document, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, &SourceFormatError{Source: path, Err: err}
		}
		defer zr.Close()
		return Parse(zr, path)

	case ".zip":
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat source: %w", err)
		}
		zr, err := zip.NewReader(f, info.Size())
		if err != nil {
			return nil, &SourceFormatError{Source: path, Err: err}
		}
		for _, entry := range zr.File {
			if !strings.EqualFold(filepath.Ext(entry.Name), ".xml") {
				continue
			}
			rc, err := entry.Open()
			if err != nil {
				return nil, &SourceFormatError{Source: path, Err: err}
			}
			defer rc.Close()
			return Parse(bufio.NewReader(rc), path+"!"+entry.Name)
		}
		return nil, &SourceFormatError{Source: path, Err: errors.New("archive has no .xml entry")}

	default:
		return Parse(bufio.NewReader(f), path)
	}
}
