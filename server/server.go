// Package server assembles the repositories of every collection and mounts
// their APIs.
package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/supakorn-kn/go-ehr/apis"
	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/repository/appointments"
	"github.com/supakorn-kn/go-ehr/repository/imaging"
	"github.com/supakorn-kn/go-ehr/repository/incidents"
	"github.com/supakorn-kn/go-ehr/repository/labs"
	"github.com/supakorn-kn/go-ehr/repository/medications"
	"github.com/supakorn-kn/go-ehr/repository/patients"
	"github.com/supakorn-kn/go-ehr/storage"
)

type indexer interface {
	Name() string
	EnsureIndexes(ctx context.Context) error
}

type Repositories struct {
	Labs         *labs.LabsRepository
	Imaging      *imaging.ImagingRepository
	Medications  *medications.MedicationsRepository
	Incidents    *incidents.IncidentsRepository
	Appointments *appointments.AppointmentsRepository
	Patients     *patients.PatientsRepository
}

func NewRepositories(db storage.Database, pageSize int) (*Repositories, error) {

	var repos Repositories
	var err error

	if repos.Labs, err = labs.NewLabsRepository(db, repository.WithPageSize[objects.Lab](pageSize)); err != nil {
		return nil, fmt.Errorf("create labs repository failed: %w", err)
	}

	if repos.Imaging, err = imaging.NewImagingRepository(db, repository.WithPageSize[objects.Imaging](pageSize)); err != nil {
		return nil, fmt.Errorf("create imaging repository failed: %w", err)
	}

	if repos.Medications, err = medications.NewMedicationsRepository(db, repository.WithPageSize[objects.Medication](pageSize)); err != nil {
		return nil, fmt.Errorf("create medications repository failed: %w", err)
	}

	if repos.Incidents, err = incidents.NewIncidentsRepository(db, repository.WithPageSize[objects.Incident](pageSize)); err != nil {
		return nil, fmt.Errorf("create incidents repository failed: %w", err)
	}

	if repos.Appointments, err = appointments.NewAppointmentsRepository(db, repository.WithPageSize[objects.Appointment](pageSize)); err != nil {
		return nil, fmt.Errorf("create appointments repository failed: %w", err)
	}

	if repos.Patients, err = patients.NewPatientsRepository(db, repository.WithPageSize[objects.Patient](pageSize)); err != nil {
		return nil, fmt.Errorf("create patients repository failed: %w", err)
	}

	return &repos, nil
}

func (r *Repositories) indexers() []indexer {
	return []indexer{r.Labs, r.Imaging, r.Medications, r.Incidents, r.Appointments, r.Patients}
}

// EnsureIndexes creates the indexes of every collection, stopping at the
// first failure.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {

	for _, idx := range r.indexers() {
		if err := idx.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes of %s failed: %w", idx.Name(), err)
		}
	}

	return nil
}

// Register mounts every collection under group.
func (r *Repositories) Register(group *gin.RouterGroup) {

	apis.RegisterCrudAPI[objects.Lab](r.Labs, group.Group("labs"))
	apis.RegisterCrudAPI[objects.Imaging](r.Imaging, group.Group("imaging"))
	apis.RegisterCrudAPI[objects.Medication](r.Medications, group.Group("medications"))
	apis.RegisterCrudAPI[objects.Incident](r.Incidents, group.Group("incidents"))
	apis.RegisterAppointmentAPI(r.Appointments, group.Group("appointments"))
	apis.RegisterPatientAPI(r.Patients, group.Group("patients"))
}
