package apis

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/repository/appointments"
	"github.com/supakorn-kn/go-ehr/repository/patients"
)

// RegisterPatientAPI adds the lookups of a patient's related records and
// the routes of the notes, related persons and visits kept on the patient.
func RegisterPatientAPI(repo *patients.PatientsRepository, group *gin.RouterGroup) {

	RegisterCrudAPI[objects.Patient](repo, group)

	registerListAPI(group, ":id/labs", "id", func(ctx *gin.Context, id string) ([]repository.Record[objects.Lab], error) {
		return repo.Labs(ctx.Request.Context(), id)
	})

	registerListAPI(group, ":id/medications", "id", func(ctx *gin.Context, id string) ([]repository.Record[objects.Medication], error) {
		return repo.Medications(ctx.Request.Context(), id)
	})

	registerListAPI(group, ":id/appointments", "id", func(ctx *gin.Context, id string) ([]repository.Record[objects.Appointment], error) {
		return repo.Appointments(ctx.Request.Context(), id)
	})

	group.GET(":id/notes", func(ctx *gin.Context) {

		notes, err := repo.Notes(ctx.Request.Context(), ctx.Param("id"))
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: notes})
	})

	group.GET(":id/notes/:noteId", func(ctx *gin.Context) {

		note, err := repo.Note(ctx.Request.Context(), ctx.Param("id"), ctx.Param("noteId"))
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: note})
	})

	group.GET(":id/related-persons", func(ctx *gin.Context) {

		persons, err := repo.RelatedPersons(ctx.Request.Context(), ctx.Param("id"))
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: persons})
	})

	group.DELETE(":id/related-persons/:relatedPersonId", func(ctx *gin.Context) {

		if err := repo.RemoveRelatedPerson(ctx.Request.Context(), ctx.Param("id"), ctx.Param("relatedPersonId")); err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, OKResponse)
	})

	group.GET(":id/visits", func(ctx *gin.Context) {

		visits, err := repo.Visits(ctx.Request.Context(), ctx.Param("id"))
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, CRUDResponse{Result: visits})
	})

	group.POST(":id/visits", func(ctx *gin.Context) {

		visit, err := bindData[objects.Visit](ctx)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		added, err := repo.AddVisit(ctx.Request.Context(), ctx.Param("id"), visit)
		if err != nil {
			writeErrorJSON(ctx, err)
			return
		}

		ctx.JSON(http.StatusCreated, CRUDResponse{Result: added})
	})
}

// RegisterAppointmentAPI adds the search over one patient's appointments,
// filtered by the text query parameter.
func RegisterAppointmentAPI(repo *appointments.AppointmentsRepository, group *gin.RouterGroup) {

	RegisterCrudAPI[objects.Appointment](repo, group)

	registerListAPI(group, "patient/:patientId", "patientId", func(ctx *gin.Context, id string) ([]repository.Record[objects.Appointment], error) {
		return repo.SearchPatientAppointments(ctx.Request.Context(), id, ctx.Query("text"))
	})
}
