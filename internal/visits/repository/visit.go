package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/negobi/negobi-gateway/pkg/erp"
)

const visitCollection = "/visits"

// Visit status values.
const (
	VisitStatusPending   = "pending"
	VisitStatusCompleted = "completed"
	VisitStatusCancelled = "cancelled"
)

// GeoPoint is a lon/lat coordinate pair, transmitted as a GeoJSON Point:
// {"type":"Point","coordinates":[lon,lat]}.
type GeoPoint struct {
	Lon float64
	Lat float64
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// MarshalJSON encodes the point as GeoJSON.
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{Type: "Point", Coordinates: []float64{p.Lon, p.Lat}})
}

// UnmarshalJSON decodes a GeoJSON Point. Structural errors are rejected here;
// coordinate range violations are left to visit validation so they can be
// reported together with the other field errors.
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var raw geoJSONPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != "Point" {
		return fmt.Errorf("visits: unsupported geometry type %q", raw.Type)
	}
	if len(raw.Coordinates) != 2 {
		return fmt.Errorf("visits: point requires exactly 2 coordinates, got %d", len(raw.Coordinates))
	}
	p.Lon = raw.Coordinates[0]
	p.Lat = raw.Coordinates[1]
	return nil
}

// Visit is a scheduled field visit.
type Visit struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Location    GeoPoint  `json:"location"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	ClientID    int64     `json:"clientId"`
}

// VisitQuery filters visit list requests.
type VisitQuery struct {
	Status   string
	ClientID int64
	DateFrom time.Time
	DateTo   time.Time
	Search   string
	Order    string
	Page     int
	PerPage  int
}

func (q VisitQuery) listQuery() erp.ListQuery {
	filters := map[string]string{}
	if q.Status != "" {
		filters["status"] = q.Status
	}
	if q.ClientID > 0 {
		filters["clientId"] = strconv.FormatInt(q.ClientID, 10)
	}
	if !q.DateFrom.IsZero() {
		filters["date_from"] = q.DateFrom.UTC().Format(time.RFC3339)
	}
	if !q.DateTo.IsZero() {
		filters["date_to"] = q.DateTo.UTC().Format(time.RFC3339)
	}
	return erp.ListQuery{
		Page:    q.Page,
		PerPage: q.PerPage,
		Search:  q.Search,
		Order:   q.Order,
		Filters: filters,
	}
}

// VisitRepository adapts the /visits endpoints.
type VisitRepository struct {
	client *erp.Client
}

// NewVisitRepository creates a visit repository over the upstream client.
func NewVisitRepository(client *erp.Client) *VisitRepository {
	return &VisitRepository{client: client}
}

// List fetches one page of visits.
func (r *VisitRepository) List(ctx context.Context, q VisitQuery) (erp.ListPage[Visit], error) {
	return erp.GetList[Visit](ctx, r.client, visitCollection, q.listQuery())
}

// ListAll fetches every visit matching the query, following pages.
func (r *VisitRepository) ListAll(ctx context.Context, q VisitQuery) ([]Visit, error) {
	return erp.FetchAll[Visit](ctx, r.client, visitCollection, q.listQuery())
}

// GetByID fetches one visit.
func (r *VisitRepository) GetByID(ctx context.Context, id int64) (Visit, error) {
	return erp.GetOne[Visit](ctx, r.client, erp.Path(visitCollection, id))
}

// Create creates a visit.
func (r *VisitRepository) Create(ctx context.Context, visit Visit) (Visit, error) {
	return erp.Post[Visit](ctx, r.client, visitCollection, visit)
}

// Update applies a partial update to a visit.
func (r *VisitRepository) Update(ctx context.Context, id int64, fields map[string]any) (Visit, error) {
	return erp.Patch[Visit](ctx, r.client, erp.Path(visitCollection, id), fields)
}

// Delete removes a visit.
func (r *VisitRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, erp.Path(visitCollection, id))
}
