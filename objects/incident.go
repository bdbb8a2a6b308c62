package objects

import "reflect"

type Incident struct {
	Name          string `json:"name" bson:"name,omitempty"`
	Type          string `json:"type" bson:"type,omitempty"`
	Description   string `json:"description" bson:"description,omitempty"`
	SeverityLevel string `json:"severityLevel" bson:"severityLevel,omitempty"`
	Cause         string `json:"cause" bson:"cause,omitempty"`
	Status        string `json:"status" bson:"status,omitempty"`
}

func (i Incident) IsNil() bool {
	return reflect.ValueOf(i).IsZero()
}
