package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"amserver/authentication"
	"amserver/database"
)

// setupMockDB points the shared connection at a sqlmock-backed gorm
// instance for the duration of a test.
func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	previous := database.GormDB
	database.GormDB = gormDB
	t.Cleanup(func() {
		database.GormDB = previous
		_ = db.Close()
	})
	return mock
}

// claimsMiddleware stands in for the JWT interceptor.
func claimsMiddleware(userId uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("claims", &authentication.Claims{UserId: userId})
		c.Next()
	}
}

func performJSON(t *testing.T, router *gin.Engine, method string, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBase(t *testing.T, recorder *httptest.ResponseRecorder) BaseResponse {
	var response BaseResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func eventColumns() []string {
	return []string{"id", "alarm_id", "partition", "armed", "timestamp"}
}

func TestNewAlarmEventMissingField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupMockDB(t)
	router := gin.New()
	router.POST("/alarms/new-event", NewAlarmEventHandler)

	recorder := performJSON(t, router, http.MethodPost, "/alarms/new-event", gin.H{
		"alarm_id":  "ALM_232",
		"partition": 1,
		// armed omitted
		"timestamp": "2025-01-28 18:15:05",
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, ParameterError, decodeBase(t, recorder).Code)
}

func TestNewAlarmEventStored(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.POST("/alarms/new-event", NewAlarmEventHandler)

	mock.ExpectExec("INSERT INTO `alarm_events`").
		WillReturnResult(sqlmock.NewResult(10, 1))

	recorder := performJSON(t, router, http.MethodPost, "/alarms/new-event", gin.H{
		"alarm_id":  "ALM_232",
		"partition": 0,
		"armed":     false,
		"timestamp": "2025-01-28 18:15:05",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	var response AlarmEventResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, Success, response.Code)
	assert.Equal(t, "ALM_232", response.Event.AlarmID)
	assert.Equal(t, uint(10), response.Event.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateAlarmNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.POST("/alarms/validate", claimsMiddleware(7), ValidateAlarmHandler)

	mock.ExpectQuery("SELECT (.+) FROM `alarm_events`").
		WithArgs("ALM_999").
		WillReturnRows(sqlmock.NewRows(eventColumns()))

	recorder := performJSON(t, router, http.MethodPost, "/alarms/validate", gin.H{"alarm_id": "ALM_999"})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "alarm not found", decodeBase(t, recorder).Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateAlarmReturnsLatestEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.POST("/alarms/validate", claimsMiddleware(7), ValidateAlarmHandler)

	mock.ExpectQuery("SELECT (.+) FROM `alarm_events`").
		WithArgs("ALM_232").
		WillReturnRows(sqlmock.NewRows(eventColumns()).
			AddRow(12, "ALM_232", 1, true, "2025-01-28 18:15:05"))

	recorder := performJSON(t, router, http.MethodPost, "/alarms/validate", gin.H{"alarm_id": "ALM_232"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	var response AlarmValidateResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, Success, response.Code)
	assert.Equal(t, uint(12), response.Alarm.ID)
	assert.True(t, response.Alarm.Armed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateAlarmRejectsMalformedId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupMockDB(t)
	router := gin.New()
	router.POST("/alarms/validate", claimsMiddleware(7), ValidateAlarmHandler)

	recorder := performJSON(t, router, http.MethodPost, "/alarms/validate", gin.H{"alarm_id": "not valid!"})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, InvalidAlarmId, decodeBase(t, recorder).Code)
}

func TestAssociateAlarmUnknownId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.POST("/alarms/associate", claimsMiddleware(7), AssociateAlarmHandler)

	mock.ExpectQuery("SELECT count(.+) FROM `alarm_events`").
		WithArgs("ALM_999").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	recorder := performJSON(t, router, http.MethodPost, "/alarms/associate", gin.H{"alarm_id": "ALM_999"})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "alarm not found", decodeBase(t, recorder).Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssociateAlarmThenConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.POST("/alarms/associate", claimsMiddleware(7), AssociateAlarmHandler)

	associationColumns := []string{"user_id", "alarm_id", "date_associated"}

	mock.ExpectQuery("SELECT count(.+) FROM `alarm_events`").
		WithArgs("ALM_232").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT (.+) FROM `alarm_associations`").
		WillReturnRows(sqlmock.NewRows(associationColumns))
	mock.ExpectExec("INSERT INTO `alarm_associations`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	recorder := performJSON(t, router, http.MethodPost, "/alarms/associate", gin.H{"alarm_id": "ALM_232"})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, Success, decodeBase(t, recorder).Code)

	mock.ExpectQuery("SELECT count(.+) FROM `alarm_events`").
		WithArgs("ALM_232").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT (.+) FROM `alarm_associations`").
		WillReturnRows(sqlmock.NewRows(associationColumns).
			AddRow(7, "ALM_232", time.Date(2025, 1, 28, 18, 20, 0, 0, time.UTC)))

	recorder = performJSON(t, router, http.MethodPost, "/alarms/associate", gin.H{"alarm_id": "ALM_232"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "alarm is already associated with this account", decodeBase(t, recorder).Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDisassociateAlarmNotAssociated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.DELETE("/alarms/disassociate", claimsMiddleware(7), DisassociateAlarmHandler)

	mock.ExpectExec("DELETE FROM `alarm_associations`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	recorder := performJSON(t, router, http.MethodDelete, "/alarms/disassociate", gin.H{"alarm_id": "ALM_232"})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "alarm is not associated with this account", decodeBase(t, recorder).Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDisassociateAlarm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.DELETE("/alarms/disassociate", claimsMiddleware(7), DisassociateAlarmHandler)

	mock.ExpectExec("DELETE FROM `alarm_associations`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	recorder := performJSON(t, router, http.MethodDelete, "/alarms/disassociate", gin.H{"alarm_id": "ALM_232"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, Success, decodeBase(t, recorder).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAlarmsEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.GET("/alarms/user-alarms", claimsMiddleware(7), UserAlarmsHandler)

	mock.ExpectQuery("SELECT (.+) FROM `alarm_associations`").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "alarm_id", "date_associated"}))

	recorder := performJSON(t, router, http.MethodGet, "/alarms/user-alarms", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	var response UserAlarmsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, Success, response.Code)
	assert.Equal(t, "no alarms associated with this account", response.Message)
	require.NotNil(t, response.AlarmNotifications)
	assert.Empty(t, *response.AlarmNotifications)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAlarmsPaginated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := gin.New()
	router.GET("/alarms/user-alarms", claimsMiddleware(7), UserAlarmsHandler)

	mock.ExpectQuery("SELECT (.+) FROM `alarm_associations`").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "alarm_id", "date_associated"}).
			AddRow(7, "ALM_232", time.Date(2025, 1, 28, 18, 20, 0, 0, time.UTC)))
	mock.ExpectQuery("SELECT count(.+) FROM `alarm_events`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM `alarm_events`").
		WillReturnRows(sqlmock.NewRows(eventColumns()).
			AddRow(6, "ALM_232", 1, false, "2025-01-28 18:20:00").
			AddRow(5, "ALM_232", 1, true, "2025-01-28 18:15:05"))

	recorder := performJSON(t, router, http.MethodGet, "/alarms/user-alarms?page=1&limit=10", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	var response UserAlarmsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, Success, response.Code)
	assert.Equal(t, int64(2), response.Total)
	assert.Equal(t, 1, response.TotalPages)
	require.NotNil(t, response.AlarmNotifications)
	require.Len(t, *response.AlarmNotifications, 2)
	assert.Equal(t, uint(6), (*response.AlarmNotifications)[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
