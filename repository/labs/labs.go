package labs

import (
	"context"

	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/storage"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	CollectionName = "lab"
	CodePrefix     = "L"
)

var Search = repository.TextSearch{
	Fields:      []string{"type", "code"},
	StatusField: "status",
}

var CodeIndex = storage.Index{
	Name:   "data.code_1",
	Keys:   bson.D{{Key: "data.code", Value: 1}},
	Unique: true,
	Sparse: true,
}

type LabsRepository struct {
	*repository.Repository[objects.Lab]
}

func NewLabsRepository(db storage.Database, opts ...repository.Option[objects.Lab]) (*LabsRepository, error) {

	opts = append([]repository.Option[objects.Lab]{
		repository.WithSearch[objects.Lab](Search),
		repository.WithBeforeSave(assignCode),
		repository.WithIndexes[objects.Lab](CodeIndex),
	}, opts...)

	repo, err := repository.New(db, CollectionName, opts...)
	if err != nil {
		return nil, err
	}

	return &LabsRepository{Repository: repo}, nil
}

// assignCode gives every new lab a fresh code, replacing any given one.
func assignCode(lab *objects.Lab) {
	lab.Code = repository.GenerateCode(CodePrefix)
}

func (r *LabsRepository) FindAllByPatientID(ctx context.Context, patientID string) ([]repository.Record[objects.Lab], error) {
	return r.FindAllBy(ctx, "patientId", patientID)
}
