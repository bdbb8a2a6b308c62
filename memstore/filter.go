package memstore

import (
	"bytes"
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var nullValue = bson.RawValue{Type: bsontype.Null}

// matches reports whether doc satisfies the filter document cond.
func matches(doc bson.Raw, cond bson.Raw) (bool, error) {

	elements, err := cond.Elements()
	if err != nil {
		return false, err
	}

	for _, element := range elements {

		ok, err := matchElement(doc, element.Key(), element.Value())
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func matchElement(doc bson.Raw, key string, value bson.RawValue) (bool, error) {

	switch key {
	case "$and", "$or", "$nor":
		clauses, err := subFilters(key, value)
		if err != nil {
			return false, err
		}

		return matchClauses(doc, key, clauses)
	}

	if strings.HasPrefix(key, "$") {
		return false, fmt.Errorf("unsupported top-level operator %s", key)
	}

	values := lookup(doc, key)

	switch {
	case value.Type == bsontype.Regex:
		pattern, options := value.Regex()
		return matchRegex(values, pattern, options)
	case value.Type == bsontype.EmbeddedDocument && isOperatorDocument(value.Document()):
		return matchOperators(values, value.Document())
	default:
		return anyEqual(values, value), nil
	}
}

func subFilters(key string, value bson.RawValue) ([]bson.Raw, error) {

	if value.Type != bsontype.Array {
		return nil, fmt.Errorf("%s needs an array", key)
	}

	items, err := value.Array().Values()
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s needs a non-empty array", key)
	}

	clauses := make([]bson.Raw, 0, len(items))
	for _, item := range items {

		if item.Type != bsontype.EmbeddedDocument {
			return nil, fmt.Errorf("%s entries must be documents", key)
		}

		clauses = append(clauses, item.Document())
	}

	return clauses, nil
}

func matchClauses(doc bson.Raw, key string, clauses []bson.Raw) (bool, error) {

	for _, clause := range clauses {

		ok, err := matches(doc, clause)
		if err != nil {
			return false, err
		}

		switch {
		case key == "$and" && !ok:
			return false, nil
		case key == "$or" && ok:
			return true, nil
		case key == "$nor" && ok:
			return false, nil
		}
	}

	return key != "$or", nil
}

func isOperatorDocument(doc bson.Raw) bool {

	elements, err := doc.Elements()
	if err != nil || len(elements) == 0 {
		return false
	}

	return strings.HasPrefix(elements[0].Key(), "$")
}

func matchOperators(values []bson.RawValue, ops bson.Raw) (bool, error) {

	elements, err := ops.Elements()
	if err != nil {
		return false, err
	}

	var (
		pattern  string
		options  string
		hasRegex bool
	)

	for _, element := range elements {

		operand := element.Value()

		switch op := element.Key(); op {
		case "$eq":
			if !anyEqual(values, operand) {
				return false, nil
			}
		case "$ne":
			if anyEqual(values, operand) {
				return false, nil
			}
		case "$in", "$nin":
			candidates, err := arrayValues(op, operand)
			if err != nil {
				return false, err
			}

			found := slices.ContainsFunc(candidates, func(candidate bson.RawValue) bool {
				return anyEqual(values, candidate)
			})

			if found != (op == "$in") {
				return false, nil
			}
		case "$exists":
			if (len(values) > 0) != truthy(operand) {
				return false, nil
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !anyCompare(values, operand, op) {
				return false, nil
			}
		case "$regex":
			hasRegex = true
			switch operand.Type {
			case bsontype.String:
				pattern = operand.StringValue()
			case bsontype.Regex:
				var regexOptions string
				pattern, regexOptions = operand.Regex()
				if options == "" {
					options = regexOptions
				}
			default:
				return false, fmt.Errorf("$regex needs a string or regular expression")
			}
		case "$options":
			options = operand.StringValue()
		default:
			return false, fmt.Errorf("unsupported operator %s", op)
		}
	}

	if hasRegex {
		return matchRegex(values, pattern, options)
	}

	return true, nil
}

func arrayValues(op string, operand bson.RawValue) ([]bson.RawValue, error) {

	if operand.Type != bsontype.Array {
		return nil, fmt.Errorf("%s needs an array", op)
	}

	return operand.Array().Values()
}

func matchRegex(values []bson.RawValue, pattern string, options string) (bool, error) {

	var flags string
	for _, option := range options {
		switch option {
		case 'i', 'm', 's':
			flags += string(option)
		}
	}

	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}

	for _, value := range values {
		if value.Type == bsontype.String && re.MatchString(value.StringValue()) {
			return true, nil
		}
	}

	return false, nil
}

func anyEqual(values []bson.RawValue, target bson.RawValue) bool {

	if len(values) == 0 {
		return target.Type == bsontype.Null
	}

	for _, value := range values {
		if typeRank(value) == typeRank(target) && compare(value, target) == 0 {
			return true
		}
	}

	return false
}

func anyCompare(values []bson.RawValue, target bson.RawValue, op string) bool {

	for _, value := range values {

		if typeRank(value) != typeRank(target) {
			continue
		}

		c := compare(value, target)
		switch {
		case op == "$gt" && c > 0,
			op == "$gte" && c >= 0,
			op == "$lt" && c < 0,
			op == "$lte" && c <= 0:
			return true
		}
	}

	return false
}

func truthy(value bson.RawValue) bool {

	switch value.Type {
	case bsontype.Boolean:
		return value.Boolean()
	case bsontype.Null, bsontype.Undefined:
		return false
	}

	if isNumber(value) {
		return number(value) != 0
	}

	return true
}

// lookup resolves a dotted path. Arrays along the path are traversed
// element-wise and a terminal array contributes itself and its elements.
func lookup(doc bson.Raw, path string) []bson.RawValue {

	root := bson.RawValue{Type: bsontype.EmbeddedDocument, Value: doc}
	return resolve(root, strings.Split(path, "."))
}

func resolve(value bson.RawValue, parts []string) []bson.RawValue {

	if len(parts) == 0 {

		resolved := []bson.RawValue{value}
		if value.Type == bsontype.Array {
			items, _ := value.Array().Values()
			resolved = append(resolved, items...)
		}

		return resolved
	}

	switch value.Type {
	case bsontype.EmbeddedDocument:
		next, err := value.Document().LookupErr(parts[0])
		if err != nil {
			return nil
		}

		return resolve(next, parts[1:])
	case bsontype.Array:
		items, _ := value.Array().Values()

		var resolved []bson.RawValue
		for _, item := range items {
			if item.Type == bsontype.EmbeddedDocument {
				resolved = append(resolved, resolve(item, parts)...)
			}
		}

		return resolved
	default:
		return nil
	}
}

// typeRank follows the server's cross-type comparison order.
func typeRank(value bson.RawValue) int {

	switch value.Type {
	case bsontype.MinKey:
		return 0
	case bsontype.Null, bsontype.Undefined:
		return 1
	case bsontype.Double, bsontype.Int32, bsontype.Int64, bsontype.Decimal128:
		return 2
	case bsontype.String, bsontype.Symbol:
		return 3
	case bsontype.EmbeddedDocument:
		return 4
	case bsontype.Array:
		return 5
	case bsontype.Binary:
		return 6
	case bsontype.ObjectID:
		return 7
	case bsontype.Boolean:
		return 8
	case bsontype.DateTime:
		return 9
	case bsontype.Timestamp:
		return 10
	case bsontype.Regex:
		return 11
	case bsontype.MaxKey:
		return 13
	default:
		return 12
	}
}

func compare(a, b bson.RawValue) int {

	if c := cmp.Compare(typeRank(a), typeRank(b)); c != 0 {
		return c
	}

	switch {
	case isNumber(a):
		return cmp.Compare(number(a), number(b))
	case a.Type == bsontype.Null || a.Type == bsontype.Undefined:
		return 0
	case a.Type == bsontype.String:
		return strings.Compare(a.StringValue(), b.StringValue())
	case a.Type == bsontype.Boolean:
		return cmp.Compare(boolRank(a.Boolean()), boolRank(b.Boolean()))
	case a.Type == bsontype.DateTime:
		return cmp.Compare(a.DateTime(), b.DateTime())
	case a.Type == bsontype.ObjectID:
		aID, bID := a.ObjectID(), b.ObjectID()
		return bytes.Compare(aID[:], bID[:])
	default:
		return bytes.Compare(a.Value, b.Value)
	}
}

func isNumber(value bson.RawValue) bool {

	switch value.Type {
	case bsontype.Double, bsontype.Int32, bsontype.Int64:
		return true
	default:
		return false
	}
}

func number(value bson.RawValue) float64 {

	switch value.Type {
	case bsontype.Double:
		return value.Double()
	case bsontype.Int32:
		return float64(value.Int32())
	case bsontype.Int64:
		return float64(value.Int64())
	default:
		return 0
	}
}

func boolRank(b bool) int {

	if b {
		return 1
	}

	return 0
}

// sortDocs orders docs by the sort keys, keeping insertion order
// between equal keys. A missing field sorts as null.
func sortDocs(docs []bson.Raw, order bson.D) error {

	directions := make([]int, len(order))
	for i, field := range order {

		direction, err := sortDirection(field)
		if err != nil {
			return err
		}

		directions[i] = direction
	}

	slices.SortStableFunc(docs, func(a, b bson.Raw) int {

		for i, field := range order {

			if c := compare(sortValue(a, field.Key), sortValue(b, field.Key)); c != 0 {
				return c * directions[i]
			}
		}

		return 0
	})

	return nil
}

func sortDirection(field bson.E) (int, error) {

	var direction int64
	switch v := field.Value.(type) {
	case int:
		direction = int64(v)
	case int32:
		direction = int64(v)
	case int64:
		direction = v
	case float64:
		direction = int64(v)
	}

	switch direction {
	case 1, -1:
		return int(direction), nil
	default:
		return 0, fmt.Errorf("sort on %s has invalid direction %v", field.Key, field.Value)
	}
}

func sortValue(doc bson.Raw, path string) bson.RawValue {

	values := lookup(doc, path)
	if len(values) == 0 {
		return nullValue
	}

	return values[0]
}
