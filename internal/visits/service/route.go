package service

import (
	"math"
	"sort"

	"github.com/negobi/negobi-gateway/internal/visits/repository"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between two points in km,
// rounded to 2 decimals.
func Distance(a, b repository.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	km := 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(km*100) / 100
}

// OptimizeRoute orders visits with a greedy nearest-neighbor walk: start at
// the earliest-dated visit, then repeatedly append the closest unvisited
// location. O(n²), no backtracking, so not globally optimal; fine for a
// field rep's daily visit count.
func OptimizeRoute(visits []repository.Visit) []repository.Visit {
	if len(visits) <= 1 {
		out := make([]repository.Visit, len(visits))
		copy(out, visits)
		return out
	}

	remaining := make([]repository.Visit, len(visits))
	copy(remaining, visits)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Date.Before(remaining[j].Date)
	})

	route := make([]repository.Visit, 0, len(remaining))
	route = append(route, remaining[0])
	remaining = remaining[1:]

	for len(remaining) > 0 {
		last := route[len(route)-1]
		best := 0
		bestDist := Distance(last.Location, remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			if d := Distance(last.Location, remaining[i].Location); d < bestDist {
				best = i
				bestDist = d
			}
		}
		route = append(route, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return route
}

// RouteLeg is one hop of an optimized route.
type RouteLeg struct {
	Visit      repository.Visit `json:"visit"`
	DistanceKm float64          `json:"distance_km"`
}

// RoutePlan is an optimized route with per-leg and total distances.
type RoutePlan struct {
	Legs    []RouteLeg `json:"legs"`
	TotalKm float64    `json:"total_km"`
}

// PlanRoute runs OptimizeRoute and annotates each leg with the distance from
// the previous stop.
func PlanRoute(visits []repository.Visit) RoutePlan {
	ordered := OptimizeRoute(visits)
	plan := RoutePlan{Legs: make([]RouteLeg, len(ordered))}
	for i, visit := range ordered {
		leg := RouteLeg{Visit: visit}
		if i > 0 {
			leg.DistanceKm = Distance(ordered[i-1].Location, visit.Location)
			plan.TotalKm += leg.DistanceKm
		}
		plan.Legs[i] = leg
	}
	plan.TotalKm = math.Round(plan.TotalKm*100) / 100
	return plan
}
