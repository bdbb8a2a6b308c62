package objects

import "time"

type RelatedPerson struct {
	ID                string    `json:"id" bson:"id"`
	CreationDate      time.Time `json:"creationDate" bson:"creationDate,omitempty"`
	UpdateDate        time.Time `json:"updateDate" bson:"updateDate,omitempty"`
	FirstName         string    `json:"firstName" bson:"firstName,omitempty"`
	LastName          string    `json:"lastName" bson:"lastName,omitempty"`
	Relation          string    `json:"relation" bson:"relation,omitempty"`
	BloodRelative     string    `json:"bloodRelative" bson:"bloodRelative,omitempty"`
	Email             string    `json:"email" bson:"email,omitempty"`
	PhoneNumber       string    `json:"phoneNumber" bson:"phoneNumber,omitempty"`
	PrincipalLanguage string    `json:"principalLanguage" bson:"principalLanguage,omitempty"`
	BloodType         string    `json:"bloodType" bson:"bloodType,omitempty"`
	BloodRh           string    `json:"bloodRh" bson:"bloodRh,omitempty"`
}
