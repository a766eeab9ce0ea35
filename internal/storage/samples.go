package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/horizon/internal/metrics"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
)

var sampleHeader = []string{"step", "time", "live", "absorbed", "mean_radius", "max_speed", "energy"}

// Sample is one row of a run's time series. Absorbed is cumulative.
type Sample struct {
	Step       int     `json:"step"`
	Time       float64 `json:"time"`
	Live       int     `json:"live"`
	Absorbed   int     `json:"absorbed"`
	MeanRadius float64 `json:"mean_radius"`
	MaxSpeed   float64 `json:"max_speed"`
	Energy     float64 `json:"energy"`
}

// Recorder is a sim.Observer that samples every n-th frame and the last one.
type Recorder struct {
	gm       float64
	every    int
	steps    int
	absorbed int
	samples  []Sample
}

func NewRecorder(cfg physics.Config, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{
		gm:      cfg.GM(),
		every:   every,
		steps:   cfg.Steps,
		samples: make([]Sample, 0, cfg.Steps/every+1),
	}
}

func (r *Recorder) OnFrame(f *sim.Frame) {
	r.absorbed += f.Absorbed
	if f.Step%r.every != 0 && f.Step != r.steps {
		return
	}
	st := metrics.FrameStats(f, r.gm)
	r.samples = append(r.samples, Sample{
		Step:       f.Step,
		Time:       f.Time,
		Live:       f.Live,
		Absorbed:   r.absorbed,
		MeanRadius: st.MeanRadius,
		MaxSpeed:   st.MaxSpeed,
		Energy:     st.Energy,
	})
}

func (r *Recorder) Samples() []Sample { return r.samples }

// SeriesNames lists the columns Series accepts.
var SeriesNames = sampleHeader[2:]

// Series extracts one named column as a float series. Besides
// SeriesNames it accepts "step" and "time".
func Series(samples []Sample, name string) ([]float64, error) {
	var get func(s Sample) float64
	switch name {
	case "step":
		get = func(s Sample) float64 { return float64(s.Step) }
	case "time":
		get = func(s Sample) float64 { return s.Time }
	case "live":
		get = func(s Sample) float64 { return float64(s.Live) }
	case "absorbed":
		get = func(s Sample) float64 { return float64(s.Absorbed) }
	case "mean_radius":
		get = func(s Sample) float64 { return s.MeanRadius }
	case "max_speed":
		get = func(s Sample) float64 { return s.MaxSpeed }
	case "energy":
		get = func(s Sample) float64 { return s.Energy }
	default:
		return nil, fmt.Errorf("unknown series %q (have %v)", name, SeriesNames)
	}

	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = get(s)
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteSamplesCSV writes samples with a header row.
func WriteSamplesCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Time),
			strconv.Itoa(s.Live),
			strconv.Itoa(s.Absorbed),
			formatFloat(s.MeanRadius),
			formatFloat(s.MaxSpeed),
			formatFloat(s.Energy),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sampleHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		p := fieldParser{rec: rec}
		s := Sample{
			Step:       p.intAt(0),
			Time:       p.floatAt(1),
			Live:       p.intAt(2),
			Absorbed:   p.intAt(3),
			MeanRadius: p.floatAt(4),
			MaxSpeed:   p.floatAt(5),
			Energy:     p.floatAt(6),
		}
		if p.err != nil {
			return nil, fmt.Errorf("run %s: %s row %d: %w", runID, samplesFile, i+2, p.err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// fieldParser keeps the first conversion error of a record.
type fieldParser struct {
	rec []string
	err error
}

func (p *fieldParser) floatAt(i int) float64 {
	v, err := strconv.ParseFloat(p.rec[i], 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *fieldParser) intAt(i int) int {
	v, err := strconv.Atoi(p.rec[i])
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}
