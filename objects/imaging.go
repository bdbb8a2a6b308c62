package objects

import "reflect"

type Imaging struct {
	PatientID          string `json:"patientId" bson:"patientId,omitempty"`
	PatientName        string `json:"patientName" bson:"patientName,omitempty"`
	Name               string `json:"name" bson:"name,omitempty"`
	Type               string `json:"type" bson:"type,omitempty"`
	ConditionSuspicion string `json:"conditionSuspicion" bson:"conditionSuspicion,omitempty"`
	Code               string `json:"code" bson:"code,omitempty"`
	Image              string `json:"image" bson:"image,omitempty"`
	Status             string `json:"status" bson:"status,omitempty"`
}

func (i Imaging) IsNil() bool {
	return reflect.ValueOf(i).IsZero()
}
