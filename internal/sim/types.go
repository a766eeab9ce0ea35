package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/physics"
)

// Phase is the lifecycle state of a Loop.
type Phase int

const (
	Uninitialized Phase = iota
	Running
	Finished
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Frame is one fully stepped snapshot of the live particles. Positions,
// Velocities and Colors are index-aligned and Live long.
type Frame struct {
	Step       int
	Time       float64
	Live       int
	Absorbed   int
	Positions  []r3.Vec
	Velocities []r3.Vec
	Colors     []physics.Color
}

func (f *Frame) Clone() *Frame {
	c := *f
	c.Positions = append([]r3.Vec(nil), f.Positions...)
	c.Velocities = append([]r3.Vec(nil), f.Velocities...)
	c.Colors = append([]physics.Color(nil), f.Colors...)
	return &c
}

// Metric accumulates a scalar over the frames of a run. Observe receives a
// frame that is only valid for the duration of the call.
type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

// Observer is notified of every frame; the frame must not be retained.
type Observer interface {
	OnFrame(f *Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f *Frame)

func (fn ObserverFunc) OnFrame(f *Frame) { fn(f) }

// Result summarizes a completed or interrupted run.
type Result struct {
	StepsTaken int
	Initial    int
	Live       int
	Absorbed   int
	Metrics    map[string]float64
	Final      *Frame
}
