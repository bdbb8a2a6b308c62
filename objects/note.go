package objects

import "time"

// Note is kept inside the patient it belongs to.
type Note struct {
	ID           string    `json:"id" bson:"id"`
	CreationDate time.Time `json:"creationDate" bson:"creationDate,omitempty"`
	UpdateDate   time.Time `json:"updateDate" bson:"updateDate,omitempty"`
	Name         string    `json:"name" bson:"name,omitempty"`
	Type         string    `json:"type" bson:"type,omitempty"`
	Content      string    `json:"content" bson:"content,omitempty"`
}
