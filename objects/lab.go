package objects

import (
	"reflect"
	"time"
)

type Lab struct {
	PatientID   string    `json:"patientId" bson:"patientId,omitempty"`
	PatientName string    `json:"patientName" bson:"patientName,omitempty"`
	Type        string    `json:"type" bson:"type,omitempty"`
	TestName    string    `json:"testName" bson:"testName,omitempty"`
	Result      string    `json:"result" bson:"result,omitempty"`
	Unit        string    `json:"unit" bson:"unit,omitempty"`
	Date        time.Time `json:"date" bson:"date,omitempty"`
	Code        string    `json:"code" bson:"code,omitempty"`
	Status      string    `json:"status" bson:"status,omitempty"`
	Recurrent   string    `json:"recurrent" bson:"recurrent,omitempty"`
}

func (l Lab) IsNil() bool {
	return reflect.ValueOf(l).IsZero()
}
