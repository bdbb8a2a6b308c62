package imaging

import (
	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/storage"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	CollectionName = "imaging"
	CodePrefix     = "I"
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

type ImagingRepository struct {
	*repository.Repository[objects.Imaging]
}

func NewImagingRepository(db storage.Database, opts ...repository.Option[objects.Imaging]) (*ImagingRepository, error) {

	opts = append([]repository.Option[objects.Imaging]{
		repository.WithSearch[objects.Imaging](Search),
		repository.WithBeforeSave(assignCode),
		repository.WithIndexes[objects.Imaging](CodeIndex),
	}, opts...)

	repo, err := repository.New(db, CollectionName, opts...)
	if err != nil {
		return nil, err
	}

	return &ImagingRepository{Repository: repo}, nil
}

func assignCode(imaging *objects.Imaging) {
	imaging.Code = repository.GenerateCode(CodePrefix)
}
