package objects

import (
	"reflect"
	"time"
)

type Appointment struct {
	PatientID       string    `json:"patientId" bson:"patientId,omitempty"`
	Patient         string    `json:"patient" bson:"patient,omitempty"`
	Doctor          string    `json:"doctor" bson:"doctor,omitempty"`
	VisitType       string    `json:"visitType" bson:"visitType,omitempty"`
	Type            string    `json:"type" bson:"type,omitempty"`
	Reason          string    `json:"reason" bson:"reason,omitempty"`
	Location        string    `json:"location" bson:"location,omitempty"`
	Date            time.Time `json:"date" bson:"date,omitempty"`
	StartingHour    string    `json:"startingHour" bson:"startingHour,omitempty"`
	Duration        int       `json:"duration" bson:"duration,omitempty"`
	MeetingRoomName string    `json:"meetingRoomName" bson:"meetingRoomName,omitempty"`
	Status          string    `json:"status" bson:"status,omitempty"`
}

func (a Appointment) IsNil() bool {
	return reflect.ValueOf(a).IsZero()
}
