package objects

import "reflect"

type Medication struct {
	PatientID  string `json:"patientId" bson:"patientId,omitempty"`
	Medication string `json:"medication" bson:"medication,omitempty"`
	Dose       string `json:"dose" bson:"dose,omitempty"`
	Frequency  string `json:"frequency" bson:"frequency,omitempty"`
	Quantity   string `json:"quantity" bson:"quantity,omitempty"`
	Type       string `json:"type" bson:"type,omitempty"`
	Condition  string `json:"condition" bson:"condition,omitempty"`
	Provider   string `json:"provider" bson:"provider,omitempty"`
	Status     string `json:"status" bson:"status,omitempty"`
}

func (m Medication) IsNil() bool {
	return reflect.ValueOf(m).IsZero()
}
