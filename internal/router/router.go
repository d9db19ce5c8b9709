// Package router talks to the external router service that executes the
// physical actions of an order: picking up, dropping and driving.
package router

import (
	"context"
	"encoding/json"
	"fmt"
)

// Status is the router's answer to an action request.
type Status int

const (
	Done Status = iota
	NoStationLeft
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case NoStationLeft:
		return "no_station_left"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Action names a router operation.
type Action string

const (
	Pickup Action = "Pickup"
	Drop   Action = "Drop"
	Drive  Action = "Drive"
)

// Coordinate is a point on the floor plan.
type Coordinate struct {
	X float64 `cty:"x" json:"x"`
	Y float64 `cty:"y" json:"y"`
}

// Exclusion lists stations, areas and points a target must avoid.
type Exclusion struct {
	Stations     []string     `cty:"stations" json:"stations,omitempty"`
	StationAreas []string     `cty:"stationareas" json:"stationareas,omitempty"`
	Coordinates  []Coordinate `cty:"coordinates" json:"coordinates,omitempty"`
}

// Target describes where an action should happen. Every field is optional.
type Target struct {
	Stations     []string     `cty:"stations" json:"stations,omitempty"`
	StationAreas []string     `cty:"stationareas" json:"stationareas,omitempty"`
	Coordinates  []Coordinate `cty:"coordinates" json:"coordinates,omitempty"`
	Not          *Exclusion   `cty:"not" json:"not,omitempty"`
}

func (t Target) String() string {
	b, _ := json.Marshal(t)
	return string(b)
}

// Client executes router actions. Implementations must be safe for
// concurrent use since spawned tasks share one client.
type Client interface {
	Pickup(ctx context.Context, target Target) (Status, error)
	Drop(ctx context.Context, target Target) (Status, error)
	Drive(ctx context.Context, target Target) (Status, error)
}

// Do dispatches action to the matching Client method.
func Do(ctx context.Context, c Client, action Action, target Target) (Status, error) {
	switch action {
	case Pickup:
		return c.Pickup(ctx, target)
	case Drop:
		return c.Drop(ctx, target)
	case Drive:
		return c.Drive(ctx, target)
	default:
		return 0, fmt.Errorf("unknown router action %q", action)
	}
}

// StaticClient answers every request with the same status.
type StaticClient struct {
	Status Status
}

func (c StaticClient) Pickup(ctx context.Context, _ Target) (Status, error) { return c.answer(ctx) }
func (c StaticClient) Drop(ctx context.Context, _ Target) (Status, error)   { return c.answer(ctx) }
func (c StaticClient) Drive(ctx context.Context, _ Target) (Status, error)  { return c.answer(ctx) }

func (c StaticClient) answer(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.Status, nil
}
