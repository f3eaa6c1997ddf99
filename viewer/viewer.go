// Package viewer renders the simulation with raylib and hosts the
// environment controls. It is a collaborator of the engine: everything
// it knows comes from Snapshot, and every change it makes goes through
// the engine's command surface.
package viewer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mycolab/mycelium/config"
	"github.com/mycolab/mycelium/engine"
	"github.com/mycolab/mycelium/environment"
)

const panelWidth = 260

// colonyColors is the palette for cultivated species, by catalog index.
var colonyColors = []rl.Color{
	{R: 240, G: 240, B: 230, A: 255}, // mycelium white
	{R: 225, G: 215, B: 180, A: 255},
	{R: 235, G: 225, B: 205, A: 255},
	{R: 250, G: 245, B: 220, A: 255},
}

// contamColors is the palette for contaminant species, by catalog index.
var contamColors = []rl.Color{
	{R: 70, G: 160, B: 70, A: 255}, // trichoderma green
	{R: 60, G: 60, B: 70, A: 255},
	{R: 90, G: 130, B: 180, A: 255},
	{R: 50, G: 50, B: 50, A: 255},
}

var starvedColor = rl.Color{R: 130, G: 130, B: 130, A: 160}

// Viewer draws engine snapshots and forwards user input as commands.
type Viewer struct {
	eng *engine.Engine
	cfg *config.Config

	// Dish cells -> screen pixels
	scale      float32
	offX, offY float32

	// Persistent growth canvas: tips are stamped each tick, so the
	// mycelium web accumulates the way it does on a real plate.
	canvas rl.RenderTexture2D

	speciesNames []string
	contamNames  []string
	substrates   []string
	colorIndex   map[string]int

	selSpecies   int
	selContam    int
	selSubstrate int
	placeContam  bool
}

// New creates a viewer. The raylib window must already be open.
func New(eng *engine.Engine, cfg *config.Config) *Viewer {
	dishPx := float32(cfg.Screen.Height) - 20
	v := &Viewer{
		eng:        eng,
		cfg:        cfg,
		scale:      dishPx / float32(cfg.Dish.Size),
		offX:       10,
		offY:       10,
		canvas:     rl.LoadRenderTexture(int32(dishPx), int32(dishPx)),
		colorIndex: make(map[string]int),
	}
	for i, s := range cfg.Species {
		v.speciesNames = append(v.speciesNames, s.Name)
		v.colorIndex[s.Name] = i
	}
	for i, s := range cfg.Contaminants {
		v.contamNames = append(v.contamNames, s.Name)
		v.colorIndex[s.Name] = i
	}
	for _, s := range cfg.Substrates {
		v.substrates = append(v.substrates, s.Name)
	}
	for i, s := range cfg.Substrates {
		if s.Name == cfg.Environment.Substrate {
			v.selSubstrate = i
		}
	}
	v.clearCanvas()
	return v
}

// Update processes input and issues engine commands.
func (v *Viewer) Update() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.eng.SetPaused(!v.eng.Paused())
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.eng.Reset()
		v.clearCanvas()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.placeContam = !v.placeContam
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		if v.placeContam {
			v.selContam = (v.selContam + 1) % len(v.contamNames)
		} else {
			v.selSpecies = (v.selSpecies + 1) % len(v.speciesNames)
		}
	}

	env := v.eng.Environment()
	if rl.IsKeyPressed(rl.KeyComma) && env.Speed > 1 {
		speed := env.Speed - 1
		v.eng.SetEnvironment(environment.Update{Speed: &speed})
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && env.Speed < 10 {
		speed := env.Speed + 1
		v.eng.SetEnvironment(environment.Update{Speed: &speed})
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		mouse := rl.GetMousePosition()
		if mouse.X < float32(v.cfg.Screen.Width-panelWidth) {
			x := (mouse.X - v.offX) / v.scale
			y := (mouse.Y - v.offY) / v.scale
			name := v.speciesNames[v.selSpecies]
			if v.placeContam {
				name = v.contamNames[v.selContam]
			}
			// Out-of-dish clicks are silently ignored by the engine.
			v.eng.PlaceOrganism(x, y, name, v.placeContam)
		}
	}
}

// Stamp draws the current tips of a snapshot onto the growth canvas.
// Call once per simulation tick so segment density tracks growth speed.
func (v *Viewer) Stamp(snap engine.Snapshot) {
	rl.BeginTextureMode(v.canvas)
	for _, org := range snap.Organisms {
		color := v.organismColor(org)
		radius := float32(org.Thickness) * v.scale / 2
		if radius < 1 {
			radius = 1
		}
		for _, b := range org.Branches {
			c := color
			if b.Starved {
				c = starvedColor
			}
			rl.DrawCircleV(rl.Vector2{X: b.X * v.scale, Y: b.Y * v.scale}, radius, c)
		}
	}
	rl.EndTextureMode()
}

// Draw renders one frame from a snapshot.
func (v *Viewer) Draw(snap engine.Snapshot) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 18, G: 16, B: 14, A: 255})

	v.drawDish(snap)
	v.drawCanvas()
	v.drawFruiting(snap)
	v.drawHUD(snap)
	v.drawPanel(snap)

	rl.EndDrawing()
}

// Unload releases GPU resources.
func (v *Viewer) Unload() {
	rl.UnloadRenderTexture(v.canvas)
}

// drawDish paints the substrate disk, tinted by remaining mean nutrient.
func (v *Viewer) drawDish(snap engine.Snapshot) {
	center := float32(v.cfg.Dish.Size) / 2
	cx := v.offX + center*v.scale
	cy := v.offY + center*v.scale
	r := float32(v.cfg.Derived.Radius) * v.scale

	// Overlay intensity scaled by the field summary
	level := float32(0)
	if snap.Fields.SubstrateNutrient > 0 {
		level = snap.Fields.Nutrient.Mean / snap.Fields.SubstrateNutrient
	}
	tint := uint8(30 + level*50)
	rl.DrawCircleV(rl.Vector2{X: cx, Y: cy}, r, rl.Color{R: tint, G: tint, B: uint8(float32(tint) * 0.8), A: 255})
	rl.DrawCircleLines(int32(cx), int32(cy), r, rl.Color{R: 90, G: 85, B: 75, A: 255})
}

func (v *Viewer) drawCanvas() {
	h := float32(v.canvas.Texture.Height)
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(v.canvas.Texture.Width), Height: -h}
	dst := rl.Rectangle{X: v.offX, Y: v.offY, Width: float32(v.canvas.Texture.Width), Height: h}
	rl.DrawTexturePro(v.canvas.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

func (v *Viewer) drawFruiting(snap engine.Snapshot) {
	for _, ev := range snap.Fruiting {
		x := v.offX + ev.X*v.scale
		y := v.offY + ev.Y*v.scale
		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, 4, rl.Color{R: 250, G: 200, B: 60, A: 220})
	}
}

func (v *Viewer) drawHUD(snap engine.Snapshot) {
	colonies, contams := 0, 0
	for _, org := range snap.Organisms {
		if org.Contaminant {
			contams++
		} else {
			colonies++
		}
	}
	rl.DrawText(fmt.Sprintf("Tick: %d", snap.Tick), 20, 20, 20, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("Colonies: %d  Contaminants: %d", colonies, contams), 20, 45, 20, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]", snap.Environment.Speed), 20, 70, 20, rl.RayWhite)
	if snap.Paused {
		rl.DrawText("PAUSED", 20, 95, 20, rl.Yellow)
	}
}

// drawPanel renders the environment sliders and placement controls.
func (v *Viewer) drawPanel(snap engine.Snapshot) {
	env := snap.Environment
	px := float32(v.cfg.Screen.Width - panelWidth)
	py := float32(10)
	w := float32(panelWidth - 80)

	rl.DrawText("Environment", int32(px), int32(py), 20, rl.RayWhite)
	py += 30

	rl.DrawText("pH", int32(px), int32(py), 14, rl.Gray)
	py += 18
	newPH := gui.SliderBar(
		rl.Rectangle{X: px, Y: py, Width: w, Height: 20},
		"4.0", "10.0",
		float32(env.PH), float32(v.cfg.Environment.PHMin), float32(v.cfg.Environment.PHMax),
	)
	rl.DrawText(fmt.Sprintf("%.1f", env.PH), int32(px+w+10), int32(py+2), 16, rl.RayWhite)
	if float64(newPH) != env.PH {
		ph := float64(newPH)
		v.eng.SetEnvironment(environment.Update{PH: &ph})
	}
	py += 32

	rl.DrawText("Temperature (F)", int32(px), int32(py), 14, rl.Gray)
	py += 18
	newTemp := gui.SliderBar(
		rl.Rectangle{X: px, Y: py, Width: w, Height: 20},
		"40", "100",
		float32(env.Temperature), float32(v.cfg.Environment.TempMin), float32(v.cfg.Environment.TempMax),
	)
	rl.DrawText(fmt.Sprintf("%.0f", env.Temperature), int32(px+w+10), int32(py+2), 16, rl.RayWhite)
	if float64(newTemp) != env.Temperature {
		t := float64(newTemp)
		v.eng.SetEnvironment(environment.Update{Temperature: &t})
	}
	py += 32

	rl.DrawText("Humidity (%)", int32(px), int32(py), 14, rl.Gray)
	py += 18
	newHum := gui.SliderBar(
		rl.Rectangle{X: px, Y: py, Width: w, Height: 20},
		"20", "100",
		float32(env.Humidity), float32(v.cfg.Environment.HumidityMin), float32(v.cfg.Environment.HumidityMax),
	)
	rl.DrawText(fmt.Sprintf("%.0f", env.Humidity), int32(px+w+10), int32(py+2), 16, rl.RayWhite)
	if float64(newHum) != env.Humidity {
		h := float64(newHum)
		v.eng.SetEnvironment(environment.Update{Humidity: &h})
	}
	py += 40

	rl.DrawText(fmt.Sprintf("Substrate: %s", env.Substrate), int32(px), int32(py), 14, rl.Gray)
	py += 18
	if gui.Button(rl.Rectangle{X: px, Y: py, Width: 120, Height: 26}, "Next substrate") {
		v.selSubstrate = (v.selSubstrate + 1) % len(v.substrates)
		// Changing medium clears the plate.
		if err := v.eng.SetSubstrate(v.substrates[v.selSubstrate]); err == nil {
			v.clearCanvas()
		}
	}
	py += 40

	mode := "colony"
	name := v.speciesNames[v.selSpecies]
	if v.placeContam {
		mode = "contaminant"
		name = v.contamNames[v.selContam]
	}
	rl.DrawText(fmt.Sprintf("Placing: %s (%s)", name, mode), int32(px), int32(py), 14, rl.Gray)
	py += 18
	rl.DrawText("[click] place  [C] kind  [Tab] species", int32(px), int32(py), 12, rl.DarkGray)
	py += 16
	rl.DrawText("[Space] pause  [R] reset", int32(px), int32(py), 12, rl.DarkGray)
	py += 28

	rl.DrawText(fmt.Sprintf("Nutrient: %.1f / %.1f", snap.Fields.Nutrient.Mean, snap.Fields.SubstrateNutrient),
		int32(px), int32(py), 14, rl.Gray)
	py += 18
	for _, ch := range snap.Fields.Chemicals {
		rl.DrawText(fmt.Sprintf("%s: %.1f", ch.Name, ch.Range.Mean), int32(px), int32(py), 14, rl.Gray)
		py += 18
	}
}

func (v *Viewer) organismColor(org engine.OrganismState) rl.Color {
	i := v.colorIndex[org.Species]
	if org.Contaminant {
		return contamColors[i%len(contamColors)]
	}
	return colonyColors[i%len(colonyColors)]
}

func (v *Viewer) clearCanvas() {
	rl.BeginTextureMode(v.canvas)
	rl.ClearBackground(rl.Blank)
	rl.EndTextureMode()
}
