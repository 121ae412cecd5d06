package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	academyapp "github.com/academy/backend/internal/application/academy"
	"github.com/academy/backend/internal/domain/academy"
	"github.com/academy/backend/internal/domain/attendance"
	"github.com/academy/backend/internal/domain/billing"
	"github.com/academy/backend/internal/domain/roster"
	"github.com/academy/backend/internal/infrastructure/persistence"
	"github.com/academy/backend/internal/interfaces/http/dto"
	"github.com/academy/backend/internal/interfaces/http/middleware"
)

type studentTestEnv struct {
	db       *gorm.DB
	engine   *gin.Engine
	tenantID uuid.UUID
}

// setupStudentEnv wires the student routes against an in-memory store.
// The auth middleware runs with an empty secret so the tenant comes
// from the X-Tenant-ID header, same as local development.
func setupStudentEnv(t *testing.T) *studentTestEnv {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&academy.Student{},
		&academy.Lecture{},
		&academy.Instructor{},
		&roster.Link{},
		&attendance.Record{},
		&billing.Payment{},
	))

	txm := &persistence.Database{DB: db}
	studentRepo := persistence.NewGormStudentRepository(db)
	lectureRepo := persistence.NewGormLectureRepository(db)
	instructorRepo := persistence.NewGormInstructorRepository(db)
	ledger := persistence.NewGormRosterLedger(db)
	attendanceRepo := persistence.NewGormAttendanceRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	recalc := academyapp.NewFeeRecalculator(studentRepo, lectureRepo, ledger)

	students := academyapp.NewStudentService(txm, studentRepo, ledger, attendanceRepo, paymentRepo, recalc)
	rosterService := academyapp.NewRosterService(txm, studentRepo, lectureRepo, instructorRepo, ledger, recalc)
	h := NewStudentHandler(students, rosterService)

	engine := gin.New()
	engine.Use(middleware.Auth(""))
	engine.POST("/students", h.Create)
	engine.GET("/students/:id", h.Get)
	engine.GET("/students", h.List)
	engine.POST("/students/:id/deactivate", h.Deactivate)
	engine.PUT("/students/:id/lectures", h.SetLectures)

	return &studentTestEnv{db: db, engine: engine, tenantID: uuid.New()}
}

func (e *studentTestEnv) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", e.tenantID.String())
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeStudent(t *testing.T, w *httptest.ResponseRecorder) academyapp.StudentResponse {
	var resp struct {
		Success bool                       `json:"success"`
		Data    academyapp.StudentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	var resp struct {
		Success bool           `json:"success"`
		Error   *dto.ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestStudentHandler_Create(t *testing.T) {
	env := setupStudentEnv(t)

	w := env.do(t, http.MethodPost, "/students", academyapp.CreateStudentRequest{
		Name:  "Alice",
		Phone: "010-1111-2222",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	student := decodeStudent(t, w)
	assert.Equal(t, "Alice", student.Name)
	assert.True(t, student.Active)
	assert.Zero(t, student.TotalFee)
}

func TestStudentHandler_Create_InvalidJSON(t *testing.T) {
	env := setupStudentEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", env.tenantID.String())
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandler_Create_MissingTenant(t *testing.T) {
	env := setupStudentEnv(t)

	raw, err := json.Marshal(academyapp.CreateStudentRequest{Name: "Alice"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeTenantRequired, decodeError(t, w).Code)
}

func TestStudentHandler_Get_NotFound(t *testing.T) {
	env := setupStudentEnv(t)

	w := env.do(t, http.MethodGet, "/students/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeError(t, w).Code)
}

func TestStudentHandler_Get_InvalidID(t *testing.T) {
	env := setupStudentEnv(t)

	w := env.do(t, http.MethodGet, "/students/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandler_SetLectures(t *testing.T) {
	env := setupStudentEnv(t)

	lecture, err := academy.NewLecture(env.tenantID, "Math", 100000)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(lecture).Error)

	created := decodeStudent(t, env.do(t, http.MethodPost, "/students", academyapp.CreateStudentRequest{Name: "Alice"}))

	w := env.do(t, http.MethodPut, "/students/"+created.ID.String()+"/lectures",
		academyapp.ReconcileStudentLecturesRequest{LectureIDs: []uuid.UUID{lecture.ID}})

	require.Equal(t, http.StatusOK, w.Code)
	student := decodeStudent(t, w)
	assert.Equal(t, int64(100000), student.TotalFee)
}

func TestStudentHandler_Deactivate(t *testing.T) {
	env := setupStudentEnv(t)

	created := decodeStudent(t, env.do(t, http.MethodPost, "/students", academyapp.CreateStudentRequest{Name: "Alice"}))

	w := env.do(t, http.MethodPost, "/students/"+created.ID.String()+"/deactivate", nil)

	require.Equal(t, http.StatusOK, w.Code)
	student := decodeStudent(t, w)
	assert.False(t, student.Active)
	assert.NotNil(t, student.DeactivatedAt)
}
