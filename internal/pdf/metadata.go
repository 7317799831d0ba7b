package pdf

import (
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/pdf-workdesk/internal/pdf/errors"
)

// MetadataKey names an entry of the document information dictionary
type MetadataKey string

// Known information dictionary keys
const (
	KeyTitle        MetadataKey = "Title"
	KeyAuthor       MetadataKey = "Author"
	KeySubject      MetadataKey = "Subject"
	KeyKeywords     MetadataKey = "Keywords"
	KeyCreator      MetadataKey = "Creator"
	KeyProducer     MetadataKey = "Producer"
	KeyCreationDate MetadataKey = "CreationDate"
	KeyModDate      MetadataKey = "ModDate"
	KeyTrapped      MetadataKey = "Trapped"
)

// KnownMetadataKeys lists the known keys in display order
var KnownMetadataKeys = []MetadataKey{
	KeyTitle, KeyAuthor, KeySubject, KeyKeywords,
	KeyCreator, KeyProducer, KeyCreationDate, KeyModDate, KeyTrapped,
}

// Metadata is the document information of a PDF. Known keys map to optional
// values; anything else found in the information dictionary lands in
// Unrecognized.
type Metadata struct {
	PageCount    int                     `json:"page_count"`
	Version      string                  `json:"version,omitempty"`
	Encrypted    bool                    `json:"encrypted"`
	Size         int64                   `json:"size"`
	Known        map[MetadataKey]*string `json:"known"`
	Unrecognized map[string]string       `json:"unrecognized,omitempty"`
}

// Get returns the value of a known key and whether it is set
func (m *Metadata) Get(key MetadataKey) (string, bool) {
	v, ok := m.Known[key]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Row is one line of the metadata table
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Rows flattens the metadata into a table: page count first, then known
// keys in order, then unrecognized keys sorted by name.
func (m *Metadata) Rows() []Row {
	rows := []Row{{Key: "Number of pages", Value: strconv.Itoa(m.PageCount)}}
	for _, key := range KnownMetadataKeys {
		if v, ok := m.Get(key); ok {
			rows = append(rows, Row{Key: string(key), Value: v})
		}
	}

	keys := make([]string, 0, len(m.Unrecognized))
	for k := range m.Unrecognized {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, Row{Key: k, Value: m.Unrecognized[k]})
	}
	return rows
}

// ReadMetadata reads the information dictionary of doc
func ReadMetadata(doc *Document) (*Metadata, error) {
	conf := newConfiguration("")
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc.Plain()), conf)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, "failed to read metadata", err).WithFile(doc.Name)
	}

	raw := map[MetadataKey]string{
		KeyTitle:        ctx.Title,
		KeyAuthor:       ctx.Author,
		KeySubject:      ctx.Subject,
		KeyKeywords:     ctx.Keywords,
		KeyCreator:      ctx.Creator,
		KeyProducer:     ctx.Producer,
		KeyCreationDate: ctx.XRefTable.CreationDate,
		KeyModDate:      ctx.XRefTable.ModDate,
	}
	// pdfcpu has no dedicated field for Trapped
	if v, ok := ctx.Properties[string(KeyTrapped)]; ok {
		raw[KeyTrapped] = v
	}

	md := &Metadata{
		PageCount:    doc.PageCount,
		Version:      doc.Version,
		Encrypted:    doc.Encrypted,
		Size:         doc.Size(),
		Known:        make(map[MetadataKey]*string, len(raw)),
		Unrecognized: make(map[string]string),
	}
	for key, value := range raw {
		if value == "" {
			md.Known[key] = nil
			continue
		}
		v := FormatMetadataValue(value)
		md.Known[key] = &v
	}
	if _, ok := md.Known[KeyTrapped]; !ok {
		md.Known[KeyTrapped] = nil
	}
	for key, value := range ctx.Properties {
		if key == string(KeyTrapped) {
			continue
		}
		md.Unrecognized[key] = FormatMetadataValue(value)
	}

	return md, nil
}

// pdfDateTime matches D:YYYYMMDDHHmmSS followed by a +HH'mm' offset
var pdfDateTime = regexp.MustCompile(`^D:(\d{14})(\+\d{2}'\d{2}')$`)

// IsPDFDateTime reports whether s is a PDF datetime of the fixed
// D:YYYYMMDDHHmmSS+HH'mm' form
func IsPDFDateTime(s string) bool {
	return pdfDateTime.MatchString(s)
}

// ConvertPDFDateTime renders D:20240102030405+05'30' as
// "2024-01-02 03:04:05 +05'30'". The offset is kept as written.
func ConvertPDFDateTime(s string) (string, bool) {
	m := pdfDateTime.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	t, err := time.Parse("20060102150405", m[1])
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02 15:04:05 ") + m[2], true
}

// FormatMetadataValue converts datetimes into a readable form and leaves
// every other value alone. Dates outside the fixed form are handed to
// pdfcpu's lenient parser.
func FormatMetadataValue(value string) string {
	if converted, ok := ConvertPDFDateTime(value); ok {
		return converted
	}
	if len(value) > 2 && value[:2] == "D:" {
		if t, ok := types.DateTime(value, true); ok {
			return t.Format("2006-01-02 15:04:05 -07:00")
		}
	}
	return value
}
