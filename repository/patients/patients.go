package patients

import (
	"context"
	"slices"

	"github.com/google/uuid"
	serverError "github.com/supakorn-kn/go-ehr/errors"
	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/repository/appointments"
	"github.com/supakorn-kn/go-ehr/repository/labs"
	"github.com/supakorn-kn/go-ehr/repository/medications"
	"github.com/supakorn-kn/go-ehr/storage"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	CollectionName = "patient"
	CodePrefix     = "P"
)

// Keys of the patient fields touched by the sub-resource operations.
const (
	firstNameField      = "firstName"
	lastNameField       = "lastName"
	fullNameField       = "fullName"
	relatedPersonsField = "relatedPersons"
)

// Search matches the full name as a substring or the code exactly. Patients
// have no status filter.
var Search = repository.TextSearch{
	Fields:      []string{"fullName"},
	ExactFields: []string{"code"},
}

var NameCodeIndex = storage.Index{
	Name: "data.fullName_1_data.code_1",
	Keys: bson.D{
		{Key: "data.fullName", Value: 1},
		{Key: "data.code", Value: 1},
	},
}

type PatientsRepository struct {
	*repository.Repository[objects.Patient]

	labs         *labs.LabsRepository
	medications  *medications.MedicationsRepository
	appointments *appointments.AppointmentsRepository
}

func NewPatientsRepository(db storage.Database, opts ...repository.Option[objects.Patient]) (*PatientsRepository, error) {

	opts = append([]repository.Option[objects.Patient]{
		repository.WithSearch[objects.Patient](Search),
		repository.WithBeforeSave(prepare),
		repository.WithIndexes[objects.Patient](NameCodeIndex),
	}, opts...)

	repo, err := repository.New(db, CollectionName, opts...)
	if err != nil {
		return nil, err
	}

	labsRepo, err := labs.NewLabsRepository(db)
	if err != nil {
		return nil, err
	}

	medicationsRepo, err := medications.NewMedicationsRepository(db)
	if err != nil {
		return nil, err
	}

	appointmentsRepo, err := appointments.NewAppointmentsRepository(db)
	if err != nil {
		return nil, err
	}

	return &PatientsRepository{
		Repository:   repo,
		labs:         labsRepo,
		medications:  medicationsRepo,
		appointments: appointmentsRepo,
	}, nil
}

// prepare keeps a given code and derives the full name the search runs on.
func prepare(patient *objects.Patient) {

	if patient.Code == "" {
		patient.Code = repository.GenerateCode(CodePrefix)
	}

	patient.FullName = patient.DisplayName()
}

func (r *PatientsRepository) Labs(ctx context.Context, patientID string) ([]repository.Record[objects.Lab], error) {
	return r.labs.FindAllByPatientID(ctx, patientID)
}

func (r *PatientsRepository) Medications(ctx context.Context, patientID string) ([]repository.Record[objects.Medication], error) {
	return r.medications.FindAllByPatientID(ctx, patientID)
}

func (r *PatientsRepository) Appointments(ctx context.Context, patientID string) ([]repository.Record[objects.Appointment], error) {
	return r.appointments.FindAllByPatientID(ctx, patientID)
}

// SaveOrUpdate recomputes the full name when an update changes the first or
// last name without giving a full name of its own.
func (r *PatientsRepository) SaveOrUpdate(ctx context.Context, record repository.Record[objects.Patient], cleared ...string) (*repository.Record[objects.Patient], error) {

	data := record.Data
	clearsFirst := slices.Contains(cleared, firstNameField)
	clearsLast := slices.Contains(cleared, lastNameField)
	renames := data.FirstName != "" || data.LastName != "" || clearsFirst || clearsLast

	if record.ID == "" || data.FullName != "" || !renames {
		return r.Repository.SaveOrUpdate(ctx, record, cleared...)
	}

	stored, err := r.Find(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	// An unknown id ends up in Save, which derives the name itself.
	if stored == nil {
		return r.Repository.SaveOrUpdate(ctx, record, cleared...)
	}

	names := objects.Patient{FirstName: stored.Data.FirstName, LastName: stored.Data.LastName}
	if data.FirstName != "" || clearsFirst {
		names.FirstName = data.FirstName
	}

	if data.LastName != "" || clearsLast {
		names.LastName = data.LastName
	}

	record.Data.FullName = names.DisplayName()
	if record.Data.FullName == "" {
		cleared = append(cleared, fullNameField)
	}

	return r.Repository.SaveOrUpdate(ctx, record, cleared...)
}

func (r *PatientsRepository) find(ctx context.Context, patientID string) (*repository.Record[objects.Patient], error) {

	patient, err := r.Find(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if patient == nil {
		return nil, serverError.ObjectIDNotFoundError.New(patientID)
	}

	return patient, nil
}

func orEmpty[T any](items []T) []T {

	if items == nil {
		return []T{}
	}

	return items
}

func (r *PatientsRepository) Notes(ctx context.Context, patientID string) ([]objects.Note, error) {

	patient, err := r.find(ctx, patientID)
	if err != nil {
		return nil, err
	}

	return orEmpty(patient.Data.Notes), nil
}

func (r *PatientsRepository) Note(ctx context.Context, patientID string, noteID string) (*objects.Note, error) {

	notes, err := r.Notes(ctx, patientID)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(notes, func(note objects.Note) bool { return note.ID == noteID })
	if i < 0 {
		return nil, serverError.ObjectIDNotFoundError.New(noteID)
	}

	return &notes[i], nil
}

func (r *PatientsRepository) RelatedPersons(ctx context.Context, patientID string) ([]objects.RelatedPerson, error) {

	patient, err := r.find(ctx, patientID)
	if err != nil {
		return nil, err
	}

	return orEmpty(patient.Data.RelatedPersons), nil
}

// RemoveRelatedPerson drops the related person with personID from the
// patient. A person the patient does not list is ignored.
func (r *PatientsRepository) RemoveRelatedPerson(ctx context.Context, patientID string, personID string) error {

	patient, err := r.find(ctx, patientID)
	if err != nil {
		return err
	}

	persons := patient.Data.RelatedPersons
	kept := slices.DeleteFunc(slices.Clone(persons), func(person objects.RelatedPerson) bool {
		return person.ID == personID
	})

	if len(kept) == len(persons) {
		return nil
	}

	update := repository.Record[objects.Patient]{ID: patientID, Data: objects.Patient{RelatedPersons: kept}}
	_, err = r.Repository.SaveOrUpdate(ctx, update, relatedPersonsField)
	return err
}

func (r *PatientsRepository) Visits(ctx context.Context, patientID string) ([]objects.Visit, error) {

	patient, err := r.find(ctx, patientID)
	if err != nil {
		return nil, err
	}

	return orEmpty(patient.Data.Visits), nil
}

// AddVisit appends visit to the patient's visits under a fresh id and
// returns it as stored.
//
// TODO: append with $push once storage.Collection carries it, so concurrent
// adds on one patient cannot overwrite each other.
func (r *PatientsRepository) AddVisit(ctx context.Context, patientID string, visit objects.Visit) (objects.Visit, error) {

	patient, err := r.find(ctx, patientID)
	if err != nil {
		return objects.Visit{}, err
	}

	visit.ID = uuid.NewString()
	visits := append(slices.Clone(patient.Data.Visits), visit)

	update := repository.Record[objects.Patient]{ID: patientID, Data: objects.Patient{Visits: visits}}
	if _, err := r.Repository.SaveOrUpdate(ctx, update); err != nil {
		return objects.Visit{}, err
	}

	return visit, nil
}
