package memstore

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// applyUpdate runs the $set, $unset and, when inserting, $setOnInsert
// operators of changes against doc. Replacement documents are not supported.
func applyUpdate(doc bson.Raw, changes bson.Raw, inserting bool) (bson.Raw, error) {

	var fields bson.D
	if err := bson.Unmarshal(doc, &fields); err != nil {
		return nil, err
	}

	operators, err := changes.Elements()
	if err != nil {
		return nil, err
	}

	for _, operator := range operators {

		op := operator.Key()
		if !strings.HasPrefix(op, "$") {
			return nil, fmt.Errorf("update needs operators, got field %s", op)
		}

		if operator.Value().Type != bsontype.EmbeddedDocument {
			return nil, fmt.Errorf("%s needs a document", op)
		}

		assignments, err := operator.Value().Document().Elements()
		if err != nil {
			return nil, err
		}

		for _, assignment := range assignments {

			path := strings.Split(assignment.Key(), ".")

			switch op {
			case "$set":
				fields = setPath(fields, path, assignment.Value())
			case "$setOnInsert":
				if inserting {
					fields = setPath(fields, path, assignment.Value())
				}
			case "$unset":
				fields = unsetPath(fields, path)
			default:
				return nil, fmt.Errorf("unsupported update operator %s", op)
			}
		}
	}

	return bson.Marshal(fields)
}

func setPath(fields bson.D, path []string, value any) bson.D {

	for i, field := range fields {

		if field.Key != path[0] {
			continue
		}

		if len(path) == 1 {
			fields[i].Value = value
			return fields
		}

		nested, _ := field.Value.(bson.D)
		fields[i].Value = setPath(nested, path[1:], value)
		return fields
	}

	if len(path) == 1 {
		return append(fields, bson.E{Key: path[0], Value: value})
	}

	return append(fields, bson.E{Key: path[0], Value: setPath(nil, path[1:], value)})
}

func unsetPath(fields bson.D, path []string) bson.D {

	for i, field := range fields {

		if field.Key != path[0] {
			continue
		}

		if len(path) == 1 {
			return append(fields[:i], fields[i+1:]...)
		}

		if nested, ok := field.Value.(bson.D); ok {
			fields[i].Value = unsetPath(nested, path[1:])
		}

		return fields
	}

	return fields
}

// upsertSeed builds the document an upsert starts from: the equality
// conditions of the filter, including those nested in $and.
func upsertSeed(cond bson.Raw) (bson.Raw, error) {

	fields, err := seedFields(nil, cond)
	if err != nil {
		return nil, err
	}

	if fields == nil {
		return bson.Raw(emptyDocument), nil
	}

	return bson.Marshal(fields)
}

func seedFields(fields bson.D, cond bson.Raw) (bson.D, error) {

	elements, err := cond.Elements()
	if err != nil {
		return nil, err
	}

	for _, element := range elements {

		key, value := element.Key(), element.Value()

		if key == "$and" {
			clauses, err := subFilters(key, value)
			if err != nil {
				return nil, err
			}

			for _, clause := range clauses {
				if fields, err = seedFields(fields, clause); err != nil {
					return nil, err
				}
			}

			continue
		}

		if strings.HasPrefix(key, "$") || value.Type == bsontype.Regex {
			continue
		}

		if value.Type == bsontype.EmbeddedDocument && isOperatorDocument(value.Document()) {
			if eq, err := value.Document().LookupErr("$eq"); err == nil {
				fields = setPath(fields, strings.Split(key, "."), eq)
			}

			continue
		}

		fields = setPath(fields, strings.Split(key, "."), value)
	}

	return fields, nil
}
