package objects

import (
	"reflect"
	"strings"
	"time"
)

type Patient struct {
	Code                       string    `json:"code" bson:"code,omitempty"`
	FullName                   string    `json:"fullName" bson:"fullName,omitempty"`
	FirstName                  string    `json:"firstName" bson:"firstName,omitempty"`
	LastName                   string    `json:"lastName" bson:"lastName,omitempty"`
	Username                   string    `json:"username" bson:"username,omitempty"`
	BirthDate                  time.Time `json:"birthDate" bson:"birthDate,omitempty"`
	Occupation                 string    `json:"occupation" bson:"occupation,omitempty"`
	Email                      string    `json:"email" bson:"email,omitempty"`
	PhoneNumber                string    `json:"phoneNumber" bson:"phoneNumber,omitempty"`
	BloodType                  string    `json:"bloodType" bson:"bloodType,omitempty"`
	PrincipalLanguage          string    `json:"principalLanguage" bson:"principalLanguage,omitempty"`
	Height                     float64   `json:"height" bson:"height,omitempty"`
	Weight                     float64   `json:"weight" bson:"weight,omitempty"`
	LastBloodPressureSystolic  int       `json:"lastBloodPressureSystolic" bson:"lastBloodPressureSystolic,omitempty"`
	LastBloodPressureDiastolic int       `json:"lastBloodPressureDiastolic" bson:"lastBloodPressureDiastolic,omitempty"`
	SmokingStatus              string    `json:"smokingStatus" bson:"smokingStatus,omitempty"`

	Notes          []Note          `json:"notes" bson:"notes,omitempty"`
	RelatedPersons []RelatedPerson `json:"relatedPersons" bson:"relatedPersons,omitempty"`
	Visits         []Visit         `json:"visits" bson:"visits,omitempty"`
}

// DisplayName is the full name, or first and last name joined when it is unset.
func (p Patient) DisplayName() string {

	if p.FullName != "" {
		return p.FullName
	}

	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p Patient) IsNil() bool {
	return reflect.ValueOf(p).IsZero()
}
