package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"fleetsync/internal/models"
)

// ClientLister reads client entities, used by the dashboard's filter lists.
type ClientLister interface {
	List(ctx context.Context) ([]models.Client, error)
}

// VehicleLister reads vehicle entities.
type VehicleLister interface {
	List(ctx context.Context) ([]models.Vehicle, error)
}

// ClientsHandler serves GET /api/v1/clients.
type ClientsHandler struct {
	clients ClientLister
	logger  *zap.Logger
}

// NewClientsHandler returns handler.
func NewClientsHandler(clients ClientLister, logger *zap.Logger) *ClientsHandler {
	return &ClientsHandler{clients: clients, logger: logger}
}

func (h *ClientsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context())
	if err != nil {
		h.logger.Error("client list failed", zap.Error(err))
		http.Error(w, "failed to list clients", http.StatusInternalServerError)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// VehiclesHandler serves GET /api/v1/vehicles.
type VehiclesHandler struct {
	vehicles VehicleLister
	logger   *zap.Logger
}

// NewVehiclesHandler returns handler.
func NewVehiclesHandler(vehicles VehicleLister, logger *zap.Logger) *VehiclesHandler {
	return &VehiclesHandler{vehicles: vehicles, logger: logger}
}

func (h *VehiclesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicles.List(r.Context())
	if err != nil {
		h.logger.Error("vehicle list failed", zap.Error(err))
		http.Error(w, "failed to list vehicles", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}
