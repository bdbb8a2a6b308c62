package appointments

import (
	"context"

	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/storage"
	"go.mongodb.org/mongo-driver/bson"
)

const CollectionName = "appointment"

var textFields = []string{"location", "reason", "type"}

var Search = repository.TextSearch{
	Fields:      textFields,
	StatusField: "status",
}

type AppointmentsRepository struct {
	*repository.Repository[objects.Appointment]
}

func NewAppointmentsRepository(db storage.Database, opts ...repository.Option[objects.Appointment]) (*AppointmentsRepository, error) {

	opts = append([]repository.Option[objects.Appointment]{repository.WithSearch[objects.Appointment](Search)}, opts...)

	repo, err := repository.New(db, CollectionName, opts...)
	if err != nil {
		return nil, err
	}

	return &AppointmentsRepository{Repository: repo}, nil
}

func (r *AppointmentsRepository) FindAllByPatientID(ctx context.Context, patientID string) ([]repository.Record[objects.Appointment], error) {
	return r.FindAllBy(ctx, "patientId", patientID)
}

// SearchPatientAppointments returns the appointments of a patient whose
// location, reason or type contains text. An empty text matches all of them.
func (r *AppointmentsRepository) SearchPatientAppointments(ctx context.Context, patientID string, text string) ([]repository.Record[objects.Appointment], error) {

	filter := repository.And(
		bson.D{{Key: repository.DataField("patientId"), Value: patientID}},
		repository.TextClause(text, textFields, nil),
	)

	return r.Query(ctx, repository.Criteria{Filter: filter})
}
