package repository

import (
	"strings"

	"github.com/go-playground/validator/v10"
	serverError "github.com/supakorn-kn/go-ehr/errors"
	"go.mongodb.org/mongo-driver/bson"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

type SortField struct {
	Field     string    `json:"field" validate:"required"`
	Direction Direction `json:"direction" validate:"required,oneof=asc desc"`
}

// Sort is an ordered list of sort fields. The first field is the primary key.
type Sort struct {
	fields []SortField
}

var Unsorted = Sort{}

func NewSort(fields ...SortField) (Sort, error) {

	for _, field := range fields {

		err := validate.Struct(field)
		if err == nil {
			continue
		}

		var validationErrs validator.ValidationErrors
		if serverError.As(err, &validationErrs) && validationErrs[0].Field() == "Field" {
			return Unsorted, serverError.RequestInvalidError.New("sort field name is empty")
		}

		return Unsorted, serverError.SortDirectionInvalidError.New(field.Field, field.Direction)
	}

	return Sort{fields: append([]SortField(nil), fields...)}, nil
}

func Asc(field string) SortField {
	return SortField{Field: field, Direction: Ascending}
}

func Desc(field string) SortField {
	return SortField{Field: field, Direction: Descending}
}

// ParseSort reads "field:dir,field2" where a missing direction means asc.
func ParseSort(raw string) (Sort, error) {

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unsorted, nil
	}

	var fields []SortField
	for _, part := range strings.Split(raw, ",") {

		name, direction, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			direction = string(Ascending)
		}

		fields = append(fields, SortField{Field: strings.TrimSpace(name), Direction: Direction(strings.ToLower(strings.TrimSpace(direction)))})
	}

	return NewSort(fields...)
}

func (s Sort) Fields() []SortField {
	return append([]SortField(nil), s.fields...)
}

func (s Sort) IsUnsorted() bool {
	return len(s.fields) == 0
}

// Bson maps the fields to storage sort keys under namespace, asc to 1 and
// desc to -1, keeping their order.
func (s Sort) Bson(namespace string) bson.D {

	if s.IsUnsorted() {
		return nil
	}

	keys := make(bson.D, 0, len(s.fields))
	for _, field := range s.fields {

		direction := 1
		if field.Direction == Descending {
			direction = -1
		}

		key := field.Field
		if namespace != "" {
			key = namespace + "." + key
		}

		keys = append(keys, bson.E{Key: key, Value: direction})
	}

	return keys
}

func (s Sort) String() string {

	parts := make([]string, 0, len(s.fields))
	for _, field := range s.fields {
		parts = append(parts, field.Field+":"+string(field.Direction))
	}

	return strings.Join(parts, ",")
}
