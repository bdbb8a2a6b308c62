package repository

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DataNamespace is the document key entity fields are stored under.
const DataNamespace = "data"

// AllStatus disables the status filter of a search.
const AllStatus = "all"

// Criteria is a storage predicate with an optional sort.
type Criteria struct {
	Filter bson.D
	Sort   bson.D
}

type SearchContainer struct {
	Text   string `json:"text"`
	Status string `json:"status"`
	Sort   Sort   `json:"-"`
}

type SearchBuilder interface {
	Build(container SearchContainer) Criteria
}

type SearchBuilderFunc func(container SearchContainer) Criteria

func (f SearchBuilderFunc) Build(container SearchContainer) Criteria {
	return f(container)
}

// TextSearch matches container.Text case-insensitively as a literal substring
// of any of Fields, or exactly against any of ExactFields, and filters on
// StatusField unless the status is empty or AllStatus. Field names are
// relative to DataNamespace.
type TextSearch struct {
	Fields      []string
	ExactFields []string
	StatusField string
}

func (t TextSearch) Build(container SearchContainer) Criteria {

	filter := And(
		TextClause(container.Text, t.Fields, t.ExactFields),
		StatusClause(t.StatusField, container.Status),
	)

	return Criteria{Filter: filter, Sort: container.Sort.Bson(DataNamespace)}
}

// TextClause returns the OR of the substring and exact matches for text, or
// nil when text is empty or there is nothing to match against.
func TextClause(text string, fields []string, exactFields []string) bson.D {

	if text == "" || len(fields)+len(exactFields) == 0 {
		return nil
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}

	var or bson.A
	for _, field := range fields {
		or = append(or, bson.D{{Key: DataField(field), Value: pattern}})
	}

	for _, field := range exactFields {
		or = append(or, bson.D{{Key: DataField(field), Value: text}})
	}

	return bson.D{{Key: "$or", Value: or}}
}

func StatusClause(field string, status string) bson.D {

	if field == "" || status == "" || status == AllStatus {
		return nil
	}

	return bson.D{{Key: DataField(field), Value: status}}
}

// And combines the non-empty clauses, returning an empty filter when there
// are none and the clause itself when there is one.
func And(clauses ...bson.D) bson.D {

	var and bson.A
	for _, clause := range clauses {
		if len(clause) > 0 {
			and = append(and, clause)
		}
	}

	switch len(and) {
	case 0:
		return bson.D{}
	case 1:
		return and[0].(bson.D)
	default:
		return bson.D{{Key: "$and", Value: and}}
	}
}

func DataField(field string) string {
	return DataNamespace + "." + field
}
