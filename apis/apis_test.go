package apis

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/supakorn-kn/go-ehr/errors"
	"github.com/supakorn-kn/go-ehr/memstore"
	"github.com/supakorn-kn/go-ehr/objects"
	"github.com/supakorn-kn/go-ehr/repository"
	"github.com/supakorn-kn/go-ehr/repository/appointments"
	"github.com/supakorn-kn/go-ehr/repository/labs"
	"github.com/supakorn-kn/go-ehr/repository/patients"
)

var labCodePattern = regexp.MustCompile(`^L-[0-9a-f]{8}$`)

type response[T any] struct {
	Result T                `json:"result"`
	Error  errors.BaseError `json:"error"`
}

func decode[T any](s suite.TestingSuite, recorder *httptest.ResponseRecorder) response[T] {

	var resp response[T]
	err := json.Unmarshal(recorder.Body.Bytes(), &resp)
	if err != nil {
		s.T().Fatalf("Decoding response %q failed: %v", recorder.Body.String(), err)
	}

	return resp
}

type APISuite struct {
	suite.Suite
	g       *gin.Engine
	labs    *labs.LabsRepository
	created repository.Record[objects.Lab]
}

func (s *APISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *APISuite) SetupTest() {

	ctx := context.Background()
	store := memstore.New()

	labsRepo, err := labs.NewLabsRepository(store)
	s.Require().NoError(err, "Create labs repository failed")
	s.Require().NoError(labsRepo.EnsureIndexes(ctx))

	patientsRepo, err := patients.NewPatientsRepository(store)
	s.Require().NoError(err, "Create patients repository failed")

	appointmentsRepo, err := appointments.NewAppointmentsRepository(store)
	s.Require().NoError(err, "Create appointments repository failed")

	g := NewRouter(zerolog.Nop(), time.Second)
	RegisterCrudAPI[objects.Lab](labsRepo, g.Group("api/labs"))
	RegisterPatientAPI(patientsRepo, g.Group("api/patients"))
	RegisterAppointmentAPI(appointmentsRepo, g.Group("api/appointments"))

	s.g = g
	s.labs = labsRepo

	recorder := s.do(http.MethodPost, "/api/labs", fakeLab())
	s.Require().Equal(http.StatusCreated, recorder.Code, "Creating lab before test failed")
	s.created = decode[repository.Record[objects.Lab]](s, recorder).Result
}

func (s *APISuite) do(method string, target string, body any) *httptest.ResponseRecorder {

	reader := bytes.NewBuffer(nil)
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewBuffer(raw)
	}

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	s.g.ServeHTTP(recorder, req)

	return recorder
}

func (s *APISuite) TestCreate() {

	s.Run("Should create lab properly", func() {

		lab := fakeLab()

		recorder := s.do(http.MethodPost, "/api/labs", lab)
		s.Require().Equal(http.StatusCreated, recorder.Code)

		resp := decode[repository.Record[objects.Lab]](s, recorder)
		s.Require().Empty(resp.Error)
		s.Require().NotEmpty(resp.Result.ID)
		s.Require().Regexp(labCodePattern, resp.Result.Data.Code)

		lab.Code = resp.Result.Data.Code
		s.Require().Equal(lab, resp.Result.Data)
	})

	s.Run("Should reject an empty body", func() {

		recorder := s.do(http.MethodPost, "/api/labs", map[string]any{})
		s.Require().Equal(http.StatusBadRequest, recorder.Code)

		resp := decode[any](s, recorder)
		s.Require().Nil(resp.Result)
		s.Require().ErrorIs(resp.Error, errors.RequestInvalidError.New())
	})

	s.Run("Should reject a malformed body", func() {

		recorder := s.do(http.MethodPost, "/api/labs", `{"type":`)
		s.Require().Equal(http.StatusBadRequest, recorder.Code)
		s.Require().ErrorIs(decode[any](s, recorder).Error, errors.RequestInvalidError.New())
	})
}

func (s *APISuite) TestRead() {

	s.Run("Should read lab by id", func() {

		recorder := s.do(http.MethodGet, "/api/labs/"+s.created.ID, nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		resp := decode[repository.Record[objects.Lab]](s, recorder)
		s.Require().Equal(s.created.ID, resp.Result.ID)
		s.Require().Equal(s.created.Data, resp.Result.Data)
	})

	s.Run("Should return not found for unknown id", func() {

		recorder := s.do(http.MethodGet, "/api/labs/unknown", nil)
		s.Require().Equal(http.StatusNotFound, recorder.Code)

		resp := decode[any](s, recorder)
		s.Require().True(errors.IsError(resp.Error, errors.ObjectIDNotFoundError.New("unknown")))
	})

	s.Run("Should count labs", func() {

		recorder := s.do(http.MethodGet, "/api/labs/count", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Equal(int64(1), decode[CountResult](s, recorder).Result.Count)
	})
}

func (s *APISuite) TestList() {

	for i := 0; i < 2; i++ {
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/labs", fakeLab()).Code)
	}

	s.Run("Should return every lab when no page is asked", func() {

		recorder := s.do(http.MethodGet, "/api/labs", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		page := decode[repository.Page[repository.Record[objects.Lab]]](s, recorder).Result
		s.Require().Len(page.Items, 3)
		s.Require().False(page.HasNext)
		s.Require().Nil(page.Request)
	})

	s.Run("Should walk the pages by cursor", func() {

		recorder := s.do(http.MethodGet, "/api/labs?page=1&size=2&sort=code:asc", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		first := decode[repository.Page[repository.Record[objects.Lab]]](s, recorder).Result
		s.Require().Len(first.Items, 2)
		s.Require().True(first.HasNext)
		s.Require().False(first.HasPrevious)
		s.Require().NotNil(first.NextCursor)
		s.Require().Less(first.Items[0].Data.Code, first.Items[1].Data.Code)

		recorder = s.do(http.MethodGet, "/api/labs?size=2&sort=code:asc&cursor="+url.QueryEscape(*first.NextCursor), nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		second := decode[repository.Page[repository.Record[objects.Lab]]](s, recorder).Result
		s.Require().Len(second.Items, 1)
		s.Require().False(second.HasNext)
		s.Require().True(second.HasPrevious)
		s.Require().NotNil(second.PreviousCursor)
		s.Require().Less(first.Items[1].Data.Code, second.Items[0].Data.Code)
	})

	s.Run("Should reject invalid list queries", func() {

		tests := map[string]errors.BaseError{
			"/api/labs?sort=code:up":       errors.SortDirectionInvalidError.New("code", "up"),
			"/api/labs?page=0":             errors.CurrentPageInvalidError.New(),
			"/api/labs?cursor=%21%21":      errors.PageCursorInvalidError.New(),
			"/api/labs?direction=sideways": errors.RequestInvalidError.New(),
			"/api/labs?page=1&size=0":      errors.RequestInvalidError.New(),
		}

		for target, expected := range tests {

			recorder := s.do(http.MethodGet, target, nil)
			s.Require().Equal(http.StatusBadRequest, recorder.Code, target)
			s.Require().ErrorIs(decode[any](s, recorder).Error, expected, target)
		}
	})
}

func (s *APISuite) TestSearch() {

	lab := fakeLab()
	lab.Type = "Zyxquartz"
	lab.Status = "Need Result"
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/labs", lab).Code)

	s.Run("Should search by text", func() {

		recorder := s.do(http.MethodGet, "/api/labs?text=zyxq", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		records := decode[[]repository.Record[objects.Lab]](s, recorder).Result
		s.Require().Len(records, 1)
		s.Require().Equal("Zyxquartz", records[0].Data.Type)
	})

	s.Run("Should search by text and status", func() {

		recorder := s.do(http.MethodGet, "/api/labs?text=zyxq&status=Done", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Empty(decode[[]repository.Record[objects.Lab]](s, recorder).Result)
	})

	s.Run("Should treat status all as no filter", func() {

		recorder := s.do(http.MethodGet, "/api/labs?status=all", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Len(decode[[]repository.Record[objects.Lab]](s, recorder).Result, 2)
	})
}

func (s *APISuite) TestUpdate() {

	s.Run("Should update lab fields", func() {

		recorder := s.do(http.MethodPut, "/api/labs/"+s.created.ID, map[string]any{"status": "Reviewed"})
		s.Require().Equal(http.StatusOK, recorder.Code)

		resp := decode[repository.Record[objects.Lab]](s, recorder)
		s.Require().Equal(s.created.ID, resp.Result.ID)
		s.Require().Equal("Reviewed", resp.Result.Data.Status)
		s.Require().Equal(s.created.Data.Type, resp.Result.Data.Type)
		s.Require().Equal(s.created.Data.Code, resp.Result.Data.Code)
	})

	s.Run("Should clear fields sent with a zero value", func() {

		recorder := s.do(http.MethodPut, "/api/labs/"+s.created.ID, map[string]any{"status": "", "unit": "g/L"})
		s.Require().Equal(http.StatusOK, recorder.Code)

		resp := decode[repository.Record[objects.Lab]](s, recorder)
		s.Require().Empty(resp.Result.Data.Status)
		s.Require().Equal("g/L", resp.Result.Data.Unit)
		s.Require().Equal(s.created.Data.Type, resp.Result.Data.Type)

		found := decode[repository.Record[objects.Lab]](s, s.do(http.MethodGet, "/api/labs/"+s.created.ID, nil))
		s.Require().Empty(found.Result.Data.Status)
	})

	s.Run("Should save a new lab when the id is unknown", func() {

		recorder := s.do(http.MethodPut, "/api/labs/unknown", map[string]any{"status": "Reviewed"})
		s.Require().Equal(http.StatusOK, recorder.Code)

		resp := decode[repository.Record[objects.Lab]](s, recorder)
		s.Require().NotEqual("unknown", resp.Result.ID)
		s.Require().Regexp(labCodePattern, resp.Result.Data.Code)
	})

	s.Run("Should reject an empty update", func() {

		recorder := s.do(http.MethodPut, "/api/labs/"+s.created.ID, map[string]any{})
		s.Require().Equal(http.StatusBadRequest, recorder.Code)

		recorder = s.do(http.MethodPut, "/api/labs/"+s.created.ID, `{"status":`)
		s.Require().Equal(http.StatusBadRequest, recorder.Code)
	})
}

func (s *APISuite) TestDelete() {

	recorder := s.do(http.MethodDelete, "/api/labs/"+s.created.ID, nil)
	s.Require().Equal(http.StatusOK, recorder.Code)
	s.Require().Equal(s.created.ID, decode[repository.Record[objects.Lab]](s, recorder).Result.ID)

	recorder = s.do(http.MethodGet, "/api/labs/"+s.created.ID, nil)
	s.Require().Equal(http.StatusNotFound, recorder.Code)
}

func (s *APISuite) TestPatientRecords() {

	recorder := s.do(http.MethodPost, "/api/patients", objects.Patient{FirstName: "Zyxion", LastName: "Qwopescu"})
	s.Require().Equal(http.StatusCreated, recorder.Code)

	patient := decode[repository.Record[objects.Patient]](s, recorder).Result
	s.Require().Equal("Zyxion Qwopescu", patient.Data.FullName)

	lab := fakeLab()
	lab.PatientID = patient.ID
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/labs", lab).Code)

	for _, reason := range []string{"Follow up", "Checkup"} {
		appointment := objects.Appointment{PatientID: patient.ID, Reason: reason, Location: "Ward 3"}
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/appointments", appointment).Code)
	}

	s.Run("Should list labs of the patient", func() {

		recorder := s.do(http.MethodGet, "/api/patients/"+patient.ID+"/labs", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		records := decode[[]repository.Record[objects.Lab]](s, recorder).Result
		s.Require().Len(records, 1)
		s.Require().Equal(patient.ID, records[0].Data.PatientID)
	})

	s.Run("Should list medications of the patient", func() {

		recorder := s.do(http.MethodGet, "/api/patients/"+patient.ID+"/medications", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Empty(decode[[]repository.Record[objects.Medication]](s, recorder).Result)
	})

	s.Run("Should list appointments of the patient", func() {

		recorder := s.do(http.MethodGet, "/api/patients/"+patient.ID+"/appointments", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Len(decode[[]repository.Record[objects.Appointment]](s, recorder).Result, 2)
	})

	s.Run("Should search appointments of the patient", func() {

		recorder := s.do(http.MethodGet, "/api/appointments/patient/"+patient.ID+"?text=follow", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		records := decode[[]repository.Record[objects.Appointment]](s, recorder).Result
		s.Require().Len(records, 1)
		s.Require().Equal("Follow up", records[0].Data.Reason)
	})
}

func (s *APISuite) TestPatientEmbeddedRecords() {

	recorder := s.do(http.MethodPost, "/api/patients", objects.Patient{FirstName: "Ilse", LastName: "Norwend"})
	s.Require().Equal(http.StatusCreated, recorder.Code)

	patient := decode[repository.Record[objects.Patient]](s, recorder).Result
	base := "/api/patients/" + patient.ID

	update := map[string]any{
		"notes": []objects.Note{
			{ID: "n-1", Name: "Intake", Type: "General", Content: "Mild fever"},
		},
		"relatedPersons": []objects.RelatedPerson{
			{ID: "r-1", FirstName: "Ada", LastName: "Norwend", Relation: "Mother"},
		},
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodPut, base, update).Code)

	s.Run("Should list and find notes", func() {

		recorder := s.do(http.MethodGet, base+"/notes", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Len(decode[[]objects.Note](s, recorder).Result, 1)

		recorder = s.do(http.MethodGet, base+"/notes/n-1", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Equal("Mild fever", decode[objects.Note](s, recorder).Result.Content)

		recorder = s.do(http.MethodGet, base+"/notes/n-404", nil)
		s.Require().Equal(http.StatusNotFound, recorder.Code)
	})

	s.Run("Should remove a related person", func() {

		recorder := s.do(http.MethodDelete, base+"/related-persons/r-1", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)

		recorder = s.do(http.MethodGet, base+"/related-persons", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Empty(decode[[]objects.RelatedPerson](s, recorder).Result)
	})

	s.Run("Should add a visit", func() {

		visit := objects.Visit{Date: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), Reason: "Check-up"}

		recorder := s.do(http.MethodPost, base+"/visits", visit)
		s.Require().Equal(http.StatusCreated, recorder.Code)

		added := decode[objects.Visit](s, recorder).Result
		s.Require().NotEmpty(added.ID)
		s.Require().Equal("Check-up", added.Reason)

		recorder = s.do(http.MethodGet, base+"/visits", nil)
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Equal([]objects.Visit{added}, decode[[]objects.Visit](s, recorder).Result)
	})

	s.Run("Should reject an empty visit", func() {

		recorder := s.do(http.MethodPost, base+"/visits", map[string]any{})
		s.Require().Equal(http.StatusBadRequest, recorder.Code)
	})

	s.Run("Should answer 404 for an unknown patient", func() {

		for _, path := range []string{"/notes", "/related-persons", "/visits"} {
			recorder := s.do(http.MethodGet, "/api/patients/unknown"+path, nil)
			s.Require().Equal(http.StatusNotFound, recorder.Code, path)
		}
	})

	s.Run("Should follow a renamed patient in the full name", func() {

		recorder := s.do(http.MethodPut, base, map[string]any{"firstName": "Ilsabet"})
		s.Require().Equal(http.StatusOK, recorder.Code)
		s.Require().Equal("Ilsabet Norwend", decode[repository.Record[objects.Patient]](s, recorder).Result.Data.FullName)
	})
}

func TestAPI(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func fakeLab() objects.Lab {

	return objects.Lab{
		PatientID:   gofakeit.UUID(),
		PatientName: gofakeit.Name(),
		Type:        gofakeit.RandomString([]string{"Hematology", "Chemistry", "Microbiology"}),
		TestName:    gofakeit.Word(),
		Result:      gofakeit.DigitN(3),
		Unit:        gofakeit.RandomString([]string{"mg/dL", "mmol/L", "g/L"}),
		Date:        gofakeit.Date().UTC().Truncate(time.Millisecond),
		Status:      "Done",
		Recurrent:   gofakeit.RandomString([]string{"Yes", "No", "Not Known"}),
	}
}
