package viz

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/horizon/internal/dynamo"
	"github.com/san-kum/horizon/internal/metrics"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	panelWidth      = 46
	graphWidth      = 30
	historyCapacity = 600
	horizonSegments = 48
	defaultFPS      = 30
	defaultGIFPath  = "horizon.gif"
	maxGIFFrames    = 300
)

var gifPalette = color.Palette(palette.Plan9)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(panelWidth)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Options tune the live view.
type Options struct {
	Name         string
	Theme        string
	FPS          int
	StepsPerTick int
	GIFPath      string
}

type TickMsg time.Time

// Model renders a running loop. Each tick advances the loop by
// StepsPerTick steps and draws the newest frame.
type Model struct {
	ctx           context.Context
	loop          *sim.Loop
	cfg           physics.Config
	opts          Options
	width, height int
	canvas        *Canvas
	camera        *Camera
	horizon       *Wireframe
	axes          *Wireframe
	showAxes      bool
	frame         *sim.Frame
	stats         metrics.Stats
	absorbed      int
	running       bool
	finished      bool
	showHelp      bool
	theme         int
	ticks         int
	liveHistory   []float64
	radiusHistory []float64
	recording     bool
	frames        []*image.Paletted
	notice        string
	err           error
}

func NewModel(ctx context.Context, loop *sim.Loop, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.StepsPerTick <= 0 {
		opts.StepsPerTick = 1
	}
	if opts.GIFPath == "" {
		opts.GIFPath = defaultGIFPath
	}
	if opts.Name == "" {
		opts.Name = "horizon"
	}

	cfg := loop.Config()
	theme := themeIndex(opts.Theme)
	m := Model{
		ctx:           ctx,
		loop:          loop,
		cfg:           cfg,
		opts:          opts,
		width:         defaultWidth,
		height:        defaultHeight,
		canvas:        NewCanvas(defaultWidth, defaultHeight),
		camera:        NewCamera(cfg.MaxRadius() / 1.4),
		horizon:       HorizonWireframe(cfg.AbsorptionRadius(), horizonSegments, Themes[theme].Horizon),
		axes:          AxesWireframe(cfg.MaxRadius()/2, colorful.Color{R: 0.3, G: 0.3, B: 0.4}),
		running:       true,
		theme:         theme,
		liveHistory:   make([]float64, 0, historyCapacity),
		radiusHistory: make([]float64, 0, historyCapacity),
	}
	m.show(loop.Snapshot())
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.advance(1)
			}
		case "r":
			m.reset()
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.horizon.Color = Themes[m.theme].Horizon
		case "a":
			m.showAxes = !m.showAxes
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "0":
			*m.camera = *NewCamera(m.camera.Extent)
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.ticks++
		if m.running && !m.finished {
			m.advance(m.opts.StepsPerTick)
		}
		if m.recording {
			m.draw()
			m.captureFrame()
			if len(m.frames) >= maxGIFFrames {
				m.toggleRecording()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := max(w-panelWidth-8, 20)
	ch := max(h-4, 8)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

// advance steps the loop up to n times and keeps the newest frame.
func (m *Model) advance(n int) {
	var last *sim.Frame
	for i := 0; i < n; i++ {
		f, err := m.loop.Next(m.ctx)
		if errors.Is(err, dynamo.ErrFinished) {
			m.finished = true
			break
		}
		if err != nil {
			m.err = err
			m.running = false
			break
		}
		m.absorbed += f.Absorbed
		last = f
	}
	if last != nil {
		m.show(last)
	}
}

func (m *Model) show(f *sim.Frame) {
	m.frame = f
	m.stats = metrics.FrameStats(f, m.cfg.GM())
	m.liveHistory = appendBounded(m.liveHistory, float64(f.Live))
	m.radiusHistory = appendBounded(m.radiusHistory, m.stats.MeanRadius)
}

func appendBounded(xs []float64, v float64) []float64 {
	if len(xs) >= historyCapacity {
		xs = append(xs[:0], xs[1:]...)
	}
	return append(xs, v)
}

// reset restarts the loop from its seeded initial disk.
func (m *Model) reset() {
	m.loop.Reset()
	m.finished = false
	m.absorbed = 0
	m.err = nil
	m.liveHistory = m.liveHistory[:0]
	m.radiusHistory = m.radiusHistory[:0]
	m.show(m.loop.Snapshot())
}

func (m *Model) draw() {
	m.canvas.Clear()
	th := Themes[m.theme]
	if m.showAxes {
		Render3D(m.canvas, m.axes, m.camera)
	}
	Render3D(m.canvas, m.horizon, m.camera)

	sw, sh := m.canvas.Width*2, m.canvas.Height*4
	for i, p := range m.frame.Positions {
		if x, y, _, ok := m.camera.Project(p, sw, sh); ok {
			m.canvas.Plot(x, y, th.Particle(m.frame.Colors[i]))
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	th := Themes[m.theme]
	canvasView := canvasStyle.Render(m.canvas.Render(colorful.Color{R: 1, G: 1, B: 1}))

	var s strings.Builder
	s.WriteString(GradientText("HORIZON", mustHex(string(th.Primary)), mustHex(string(th.Accent))))
	s.WriteString("  " + Subtle.Render(m.opts.Name) + "\n\n")
	s.WriteString(m.status() + "\n")
	progress := float64(m.frame.Step) / float64(m.cfg.Steps)
	s.WriteString(ProgressBar(progress, graphWidth) + fmt.Sprintf(" %3.0f%%\n\n", 100*progress))

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d / %d", m.frame.Step, m.cfg.Steps))
	row("Time", fmt.Sprintf("%.3f", m.frame.Time))
	row("Live", fmt.Sprintf("%d", m.frame.Live))
	row("Absorbed", fmt.Sprintf("%d", m.absorbed))
	row("r_s", fmt.Sprintf("%.0f", m.cfg.AbsorptionRadius()))
	row("Mean r", fmt.Sprintf("%.4g", m.stats.MeanRadius))
	row("Max speed", fmt.Sprintf("%.4g", m.stats.MaxSpeed))
	row("|L|", fmt.Sprintf("%.4g", m.stats.AngularMomentum))
	row("Theme", th.Name)

	if len(m.liveHistory) > 1 {
		chart := asciigraph.Plot(m.liveHistory, asciigraph.Height(5), asciigraph.Width(graphWidth), asciigraph.Caption("live particles"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(MetricLabel.Render("Mean r") + SparklineChart(m.radiusHistory, graphWidth) + "\n")

	if m.notice != "" {
		s.WriteString("\n" + KeyHint.Render(m.notice) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(graphWidth) + "\nSP:Pause .:Step R:Reset Q:Quit\nT:Theme  A:Axes G:Record ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusRecording.Render("ERROR: " + m.err.Error())
	case m.recording:
		return StatusRecording.Render("● REC")
	case m.finished:
		return StatusFinished.Render("FINISHED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render(AnimatedSpinner(m.ticks) + " RUNNING")
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  .        - Single step when paused  ║
║  R        - Reset to the seeded disk ║
║  Q        - Quit                     ║
║  X/Y/Z    - Rotate camera (shift -)  ║
║  +/-      - Zoom                     ║
║  0        - Reset camera             ║
║  A        - Toggle axes              ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		m.notice = ""
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.notice = "gif: " + err.Error()
	} else {
		m.notice = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.opts.GIFPath)
	}
	m.frames = nil
}

// captureFrame rasterizes the braille canvas, one block per dot, in the
// cell's color.
func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, m.canvas.Width*charW, m.canvas.Height*charH), gifPalette)

	for row := 0; row < m.canvas.Height; row++ {
		for col := 0; col < m.canvas.Width; col++ {
			pattern := m.canvas.Grid[row][col] - blank
			if pattern <= 0 {
				continue
			}
			c := m.canvas.Colors[row][col]
			if m.canvas.lightness[row][col] < 0 {
				c = colorful.Color{R: 1, G: 1, B: 1}
			}
			idx := uint8(gifPalette.Index(c))
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&rune(pixelMap[dy][dx]) == 0 {
						continue
					}
					baseX, baseY := col*charW+dx*dotW, row*charH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+px, baseY+py, idx)
						}
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	delay := max(100/m.opts.FPS, 1)
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(m.opts.GIFPath)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Run shows loop in a full-screen terminal view until the user quits or
// ctx is canceled.
func Run(ctx context.Context, loop *sim.Loop, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, loop, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
