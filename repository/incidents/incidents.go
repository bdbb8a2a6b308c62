package incidents

import (
	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/storage"
)

const CollectionName = "incident"

// Search filters incidents by status only.
var Search = repository.TextSearch{StatusField: "status"}

type IncidentsRepository struct {
	*repository.Repository[objects.Incident]
}

func NewIncidentsRepository(db storage.Database, opts ...repository.Option[objects.Incident]) (*IncidentsRepository, error) {

	opts = append([]repository.Option[objects.Incident]{repository.WithSearch[objects.Incident](Search)}, opts...)

	repo, err := repository.New(db, CollectionName, opts...)
	if err != nil {
		return nil, err
	}

	return &IncidentsRepository{Repository: repo}, nil
}
