package medications

import (
	"context"

	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/storage"
)

const CollectionName = "medication"

var Search = repository.TextSearch{
	Fields:      []string{"medication"},
	StatusField: "status",
}

type MedicationsRepository struct {
	*repository.Repository[objects.Medication]
}

func NewMedicationsRepository(db storage.Database, opts ...repository.Option[objects.Medication]) (*MedicationsRepository, error) {

	opts = append([]repository.Option[objects.Medication]{repository.WithSearch[objects.Medication](Search)}, opts...)

	repo, err := repository.New(db, CollectionName, opts...)
	if err != nil {
		return nil, err
	}

	return &MedicationsRepository{Repository: repo}, nil
}

func (r *MedicationsRepository) FindAllByPatientID(ctx context.Context, patientID string) ([]repository.Record[objects.Medication], error) {
	return r.FindAllBy(ctx, "patientId", patientID)
}
