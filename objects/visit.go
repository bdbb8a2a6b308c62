package objects

import (
	"reflect"
	"time"
)

type Visit struct {
	ID       string    `json:"id" bson:"id"`
	Date     time.Time `json:"date" bson:"date,omitempty"`
	Type     string    `json:"type" bson:"type,omitempty"`
	Reason   string    `json:"reason" bson:"reason,omitempty"`
	Doctor   string    `json:"doctor" bson:"doctor,omitempty"`
	Location string    `json:"location" bson:"location,omitempty"`
	Notes    string    `json:"notes" bson:"notes,omitempty"`
}

func (v Visit) IsNil() bool {
	return reflect.ValueOf(v).IsZero()
}
