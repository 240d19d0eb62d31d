package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negobi/negobi-gateway/internal/inventory/repository"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

func newSerialService(t *testing.T, h http.Handler) *SerialService {
	t.Helper()
	return NewSerialService(repository.NewSerialRepository(newUpstreamClient(t, h)), logger.New("test", "test"))
}

func TestSerialCreate_DefaultsToAvailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /product-serials", func(w http.ResponseWriter, r *http.Request) {
		var serial repository.ProductSerial
		require.NoError(t, json.NewDecoder(r.Body).Decode(&serial))
		assert.Equal(t, repository.SerialStatusAvailable, serial.Status)
		serial.ID = 1
		writeOne(w, serial)
	})

	svc := newSerialService(t, mux)

	created, err := svc.Create(context.Background(), repository.ProductSerial{SerialNumber: "SN-1"})
	require.NoError(t, err)
	assert.Equal(t, repository.SerialStatusAvailable, created.Status)
}

func TestSerialCreate_RejectsBadInput(t *testing.T) {
	svc := newSerialService(t, http.NewServeMux())

	_, err := svc.Create(context.Background(), repository.ProductSerial{})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = svc.Create(context.Background(), repository.ProductSerial{SerialNumber: "SN-1", Status: "Broken"})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestChangeStatus_AnyKnownStatusAccepted(t *testing.T) {
	var lastStatus string
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /product-serials/7", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		lastStatus = body["status"]
		writeOne(w, repository.ProductSerial{ID: 7, Status: lastStatus})
	})

	svc := newSerialService(t, mux)

	// A sold unit can go straight back to available; no transition table.
	for _, status := range []string{
		repository.SerialStatusSold,
		repository.SerialStatusAvailable,
		repository.SerialStatusDefective,
	} {
		serial, err := svc.ChangeStatus(context.Background(), 7, status)
		require.NoError(t, err)
		assert.Equal(t, status, serial.Status)
		assert.Equal(t, status, lastStatus)
	}

	_, err := svc.ChangeStatus(context.Background(), 7, "Lost")
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestTransferToWarehouse_ForcesInTransit(t *testing.T) {
	var patched map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /product-serials/7", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		writeOne(w, repository.ProductSerial{ID: 7, CurrentWarehouseID: 3, Status: repository.SerialStatusInTransit})
	})

	svc := newSerialService(t, mux)

	serial, err := svc.TransferToWarehouse(context.Background(), 7, 3)
	require.NoError(t, err)

	assert.Equal(t, repository.SerialStatusInTransit, serial.Status)
	assert.Equal(t, "In Transit", patched["status"])
	assert.Equal(t, 3.0, patched["currentWarehouseId"])

	_, err = svc.TransferToWarehouse(context.Background(), 7, 0)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestIsAvailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /product-serials", func(w http.ResponseWriter, r *http.Request) {
		// Upstream search may also return prefix matches; only the exact
		// serial number counts.
		assert.Equal(t, "SN-10", r.URL.Query().Get("serial_number"))
		json.NewEncoder(w).Encode([]repository.ProductSerial{
			{ID: 1, SerialNumber: "SN-100", Status: repository.SerialStatusAvailable},
			{ID: 2, SerialNumber: "SN-10", Status: repository.SerialStatusReserved},
		})
	})

	svc := newSerialService(t, mux)

	available, serial, err := svc.IsAvailable(context.Background(), "SN-10")
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, int64(2), serial.ID)
}

func TestIsAvailable_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /product-serials", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]repository.ProductSerial{})
	})

	svc := newSerialService(t, mux)

	_, _, err := svc.IsAvailable(context.Background(), "SN-404")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, _, err = svc.IsAvailable(context.Background(), "")
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestSerialBulkCreate_AbortsOnFirstFailure(t *testing.T) {
	var created []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /product-serials", func(w http.ResponseWriter, r *http.Request) {
		var serial repository.ProductSerial
		require.NoError(t, json.NewDecoder(r.Body).Decode(&serial))
		if serial.SerialNumber == "SN-2" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "duplicate serial"})
			return
		}
		created = append(created, serial.SerialNumber)
		writeOne(w, serial)
	})

	svc := newSerialService(t, mux)

	res, err := svc.BulkCreate(context.Background(), []repository.ProductSerial{
		{SerialNumber: "SN-1"},
		{SerialNumber: "SN-2"},
		{SerialNumber: "SN-3"},
	})
	require.Error(t, err)

	assert.Equal(t, []string{"SN-1"}, created)
	assert.False(t, res.Complete)
	assert.Equal(t, 1, res.FailedIndex)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BULK_PARTIAL_FAILURE", appErr.Code)
}
