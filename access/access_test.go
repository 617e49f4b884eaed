package access

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"amserver/model"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *gorm.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock, gormDB
}

func userColumns() []string {
	return []string{"id", "username", "email", "credential_hash", "camera_id", "has_live_access"}
}

func associationColumns() []string {
	return []string{"user_id", "alarm_id", "date_associated"}
}

func TestResolveUserNotFound(t *testing.T) {
	db, mock, gormDB := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(userColumns()))

	_, err := Resolve(gormDB, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveWithCameraAndAlarms(t *testing.T) {
	db, mock, gormDB := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(7, "alice", "alice@example.com", []byte("hash"), "cam1", true))
	mock.ExpectQuery("SELECT (.+) FROM `alarm_associations`").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(associationColumns()).
			AddRow(7, "ALM_232", time.Now()).
			AddRow(7, "ALM_233", time.Now()))

	snapshot, err := Resolve(gormDB, 7)
	require.NoError(t, err)
	assert.True(t, snapshot.HasCamera)
	assert.Equal(t, "cam1", snapshot.CameraID)
	assert.True(t, snapshot.HasAlarm)
	assert.Len(t, snapshot.AlarmIDs, 2)
	assert.Contains(t, snapshot.AlarmIDs, "ALM_232")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveWithoutAnyAccess(t *testing.T) {
	db, mock, gormDB := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(7, "bob", "bob@example.com", []byte("hash"), nil, false))
	mock.ExpectQuery("SELECT (.+) FROM `alarm_associations`").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(associationColumns()))

	snapshot, err := Resolve(gormDB, 7)
	require.NoError(t, err)
	assert.False(t, snapshot.HasCamera)
	assert.False(t, snapshot.HasAlarm)
	assert.False(t, snapshot.VisibleAlert(model.Alert{CameraID: "cam1"}))
	assert.False(t, snapshot.VisibleAlarmEvent(model.AlarmEvent{AlarmID: "ALM_232"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVisibleAlert(t *testing.T) {
	snapshot := Snapshot{CameraID: "cam1", HasCamera: true}
	assert.True(t, snapshot.VisibleAlert(model.Alert{CameraID: "cam1"}))
	assert.False(t, snapshot.VisibleAlert(model.Alert{CameraID: "cam2"}))
	assert.False(t, Snapshot{}.VisibleAlert(model.Alert{CameraID: "cam1"}))
}

func TestVisibleAlarmEvent(t *testing.T) {
	snapshot := Snapshot{
		AlarmIDs: map[string]struct{}{"ALM_232": {}},
		HasAlarm: true,
	}
	assert.True(t, snapshot.VisibleAlarmEvent(model.AlarmEvent{AlarmID: "ALM_232"}))
	assert.False(t, snapshot.VisibleAlarmEvent(model.AlarmEvent{AlarmID: "ALM_999"}))
	assert.False(t, Snapshot{}.VisibleAlarmEvent(model.AlarmEvent{AlarmID: "ALM_232"}))
}
