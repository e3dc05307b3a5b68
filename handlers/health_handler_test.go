package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readinessPayload(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response["data"].(map[string]interface{})
}

func readinessDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestHandleHealth(t *testing.T) {
	handler := NewHealthHandler(nil, zap.NewNop())

	w := httptest.NewRecorder()
	handler.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := readinessPayload(t, w)
	assert.Equal(t, "healthy", data["status"])
	assert.NotEmpty(t, data["timestamp"])
	assert.NotContains(t, data, "checks")
}

func TestHandleReadiness(t *testing.T) {
	logger := zap.NewNop()

	t.Run("ready when the database answers", func(t *testing.T) {
		db, mock := readinessDB(t)
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		w := httptest.NewRecorder()
		NewHealthHandler(db, logger).HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		data := readinessPayload(t, w)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "healthy", data["checks"].(map[string]interface{})["database"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("503 when the ping fails", func(t *testing.T) {
		db, mock := readinessDB(t)
		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		w := httptest.NewRecorder()
		NewHealthHandler(db, logger).HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		data := readinessPayload(t, w)
		assert.Equal(t, "unhealthy", data["status"])
		assert.Equal(t, "unhealthy", data["checks"].(map[string]interface{})["database"])
	})

	t.Run("503 when the probe query fails", func(t *testing.T) {
		db, mock := readinessDB(t)
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnError(sql.ErrConnDone)

		w := httptest.NewRecorder()
		NewHealthHandler(db, logger).HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		data := readinessPayload(t, w)
		assert.Equal(t, "unhealthy", data["status"])
	})

	t.Run("ready with no database configured", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler(nil, logger).HandleReadiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		data := readinessPayload(t, w)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "healthy", data["checks"].(map[string]interface{})["database"])
	})
}
