package incident

import (
	"fmt"
	"time"
)

// Field names, in serialization order.
const (
	FieldID                = "id"
	FieldTitle             = "title"
	FieldBody              = "body"
	FieldUserID            = "userId"
	FieldImportedAt        = "importedAt"
	FieldCommentsCount     = "commentsCount"
	FieldUniqueEmailsCount = "uniqueEmailsCount"
	FieldEnrichedAt        = "enrichedAt"
	FieldCreatedAt         = "createdAt"
)

// Record is an incident report. A nil field is absent and is omitted when
// the record is serialized.
type Record struct {
	ID         *int
	Title      *string
	Body       *string
	UserID     *int    // origin reference, not validated
	ImportedAt *string // set by ingestion

	// Set by enrichment.
	CommentsCount     *int
	UniqueEmailsCount *int
	EnrichedAt        *string

	CreatedAt *string // set for records created through the API
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Timestamp formats t in the layout used by every timestamp field.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Parse decodes one serialized record.
func Parse(line string) (Record, error) {
	f, err := ParseFlat(line)
	if err != nil {
		return Record{}, err
	}

	var r Record
	ints := []struct {
		key string
		dst **int
	}{
		{FieldID, &r.ID},
		{FieldUserID, &r.UserID},
		{FieldCommentsCount, &r.CommentsCount},
		{FieldUniqueEmailsCount, &r.UniqueEmailsCount},
	}
	for _, fld := range ints {
		v, err := f.Int(fld.key)
		if err != nil {
			return Record{}, fmt.Errorf("failed to parse record: %w", err)
		}
		*fld.dst = v
	}

	strs := []struct {
		key string
		dst **string
	}{
		{FieldTitle, &r.Title},
		{FieldBody, &r.Body},
		{FieldImportedAt, &r.ImportedAt},
		{FieldEnrichedAt, &r.EnrichedAt},
		{FieldCreatedAt, &r.CreatedAt},
	}
	for _, fld := range strs {
		v, err := f.String(fld.key)
		if err != nil {
			return Record{}, fmt.Errorf("failed to parse record: %w", err)
		}
		*fld.dst = v
	}

	return r, nil
}

// Serialize encodes the record as a single-line flat JSON object holding
// only the present fields, in a fixed order.
func (r Record) Serialize() []byte {
	var e Encoder
	if r.ID != nil {
		e.Int(FieldID, *r.ID)
	}
	if r.Title != nil {
		e.String(FieldTitle, *r.Title)
	}
	if r.Body != nil {
		e.String(FieldBody, *r.Body)
	}
	if r.UserID != nil {
		e.Int(FieldUserID, *r.UserID)
	}
	if r.ImportedAt != nil {
		e.String(FieldImportedAt, *r.ImportedAt)
	}
	if r.CommentsCount != nil {
		e.Int(FieldCommentsCount, *r.CommentsCount)
	}
	if r.UniqueEmailsCount != nil {
		e.Int(FieldUniqueEmailsCount, *r.UniqueEmailsCount)
	}
	if r.EnrichedAt != nil {
		e.String(FieldEnrichedAt, *r.EnrichedAt)
	}
	if r.CreatedAt != nil {
		e.String(FieldCreatedAt, *r.CreatedAt)
	}
	return e.Bytes()
}

// MarshalJSON implements json.Marshaler so records embedded in API responses
// keep the same field order and omission rules as the batch files.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.Serialize(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// IDValue returns the identifier, or 0 when it is absent.
func (r Record) IDValue() int {
	if r.ID == nil {
		return 0
	}
	return *r.ID
}

// TitleValue returns the title, or "" when it is absent.
func (r Record) TitleValue() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// BodyValue returns the body, or "" when it is absent.
func (r Record) BodyValue() string {
	if r.Body == nil {
		return ""
	}
	return *r.Body
}
