package logistics

import (
	"fmt"
	"time"

	"github.com/freightdesk/backoffice/pkg/listing"
)

// Vehicle statuses
const (
	VehicleMoving  = "Moving"
	VehicleIdle    = "Idle"
	VehicleLoading = "Loading"
	VehicleOffline = "Offline"
)

// Vehicle is a tracked truck and its last known position.
type Vehicle struct {
	ID        string    `json:"id" yaml:"id"`
	Plate     string    `json:"plate" yaml:"plate"`
	Driver    string    `json:"driver" yaml:"driver"`
	Status    string    `json:"status" yaml:"status"`
	Lat       float64   `json:"lat" yaml:"lat"`
	Lng       float64   `json:"lng" yaml:"lng"`
	SpeedKmh  float64   `json:"speed_kmh" yaml:"speed_kmh"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// RecordID implements Record.
func (v Vehicle) RecordID() string { return v.ID }

var vehicleSchema = listing.MustSchema(
	Vehicle.RecordID,
	listing.Field[Vehicle]{Key: "plate", Label: "Plate", Kind: listing.KindString, Searchable: true,
		Get: func(v Vehicle) listing.Value { return str(v.Plate) }},
	listing.Field[Vehicle]{Key: "driver", Label: "Driver", Kind: listing.KindString, Searchable: true,
		Get: func(v Vehicle) listing.Value { return str(v.Driver) }},
	listing.Field[Vehicle]{Key: "status", Label: "Status", Kind: listing.KindString,
		Get: func(v Vehicle) listing.Value { return str(v.Status) }},
	listing.Field[Vehicle]{Key: "lat", Label: "Latitude", Kind: listing.KindNumber,
		Get: func(v Vehicle) listing.Value { return listing.Number(v.Lat) }},
	listing.Field[Vehicle]{Key: "lng", Label: "Longitude", Kind: listing.KindNumber,
		Get: func(v Vehicle) listing.Value { return listing.Number(v.Lng) }},
	listing.Field[Vehicle]{Key: "speed_kmh", Label: "Speed", Kind: listing.KindNumber,
		Get: func(v Vehicle) listing.Value { return listing.Number(v.SpeedKmh) }},
	listing.Field[Vehicle]{Key: "updated_at", Label: "Last update", Kind: listing.KindDate,
		Get: func(v Vehicle) listing.Value { return listing.Date(v.UpdatedAt) }},
)

// Vehicles is the tracking map screen.
func Vehicles() Screen[Vehicle] {
	return Screen[Vehicle]{
		Name:   "vehicles",
		Title:  "Tracking",
		Schema: vehicleSchema,
		Filters: []listing.FilterCondition{
			{ID: "status", Label: "Status", Type: listing.FilterCheckbox,
				Options: options(VehicleMoving, VehicleIdle, VehicleLoading, VehicleOffline)},
		},
		DefaultSort: listing.SortSpec{Field: "plate", Direction: listing.SortAsc},
		Seed:        SeedVehicles,
		WithID:      func(v Vehicle, id string) Vehicle { v.ID = id; return v },
	}
}

// SeedVehicles returns the vehicle fixtures, scattered around northern Italy
// and southern Germany.
func SeedVehicles() []Vehicle {
	drivers := []string{"Carlos Mendes", "Ava Thompson", "Piotr Nowak", "Fatima Zahra", "Kenji Sato", "Emma Schulz", "Luca Bianchi", "Sofia Costa"}
	statuses := []string{VehicleMoving, VehicleMoving, VehicleIdle, VehicleLoading, VehicleMoving, VehicleOffline}

	out := make([]Vehicle, 0, 12)
	for n := range 12 {
		status := pick(statuses, n)
		speed := 0.0
		if status == VehicleMoving {
			speed = float64(55 + (n*13)%35)
		}
		out = append(out, Vehicle{
			ID:        fmt.Sprintf("VEH-%03d", 101+n),
			Plate:     fmt.Sprintf("FD %03d %c%c", 200+n*17, 'A'+rune(n%26), 'K'+rune(n*3%15)),
			Driver:    pick(drivers, n),
			Status:    status,
			Lat:       45.0 + float64((n*37)%400)/100,
			Lng:       8.5 + float64((n*53)%500)/100,
			SpeedKmh:  speed,
			UpdatedAt: seedTime(0),
		})
	}
	return out
}
