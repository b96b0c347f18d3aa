package texmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/tanema/gween/ease"
)

// ErrUnknownAction is returned by LoadScript for a step whose action is not
// recognized.
var ErrUnknownAction = errors.New("unknown script action")

// ScriptStep is a single action in a replay script.
type ScriptStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	W        float64 `json:"w,omitempty"`
	H        float64 `json:"h,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Duration float32 `json:"duration,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

// Script is the top-level JSON structure of a replay script.
type Script struct {
	Steps []ScriptStep `json:"steps"`
}

var scriptActions = map[string]bool{
	"scroll":     true,
	"scrollTo":   true,
	"zoom":       true,
	"scale":      true,
	"invalidate": true,
	"resize":     true,
	"wait":       true,
	"screenshot": true,
}

// Frame is the state a ScriptRunner step acts on.
type Frame struct {
	Viewport *Viewport
	Store    *TiledBackingStore
	Layer    Layer
	// Size is the layer size. resize steps update it.
	Size Size
	// Screenshot is called for screenshot steps. May be nil.
	Screenshot func(label string)
}

// ScriptRunner sequences viewport and content changes across frames for
// headless regression runs.
type ScriptRunner struct {
	steps     []ScriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON replay script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("texmap: parse script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("texmap: parse script: no steps")
	}
	for i, st := range script.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("texmap: parse script: step %d: %w %q", i, ErrUnknownAction, st.Action)
		}
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

// Done reports whether every step has been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Step advances the runner by one frame, executing at most one step.
func (r *ScriptRunner) Step(f *Frame) {
	if r.done {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "scroll":
		f.Viewport.ScrollBy(st.X, st.Y)
	case "scrollTo":
		f.Viewport.ScrollTo(st.X, st.Y, st.Duration, ease.InOutQuad)
	case "zoom":
		f.Viewport.ZoomAt(st.Value, f.Viewport.Width/2, f.Viewport.Height/2)
	case "scale":
		f.Store.UpdateContentsScale(st.Value)
	case "invalidate":
		dirty := Rect{X: st.X, Y: st.Y, Width: st.W, Height: st.H}.Enclosing()
		f.Store.UpdateContents(f.Layer, f.Size, dirty, UpdateCannotModifyOriginalImageData)
	case "resize":
		f.Size = Size{st.W, st.H}
		f.Store.UpdateContents(f.Layer, f.Size, image.Rect(0, 0, int(st.W), int(st.H)), UpdateCannotModifyOriginalImageData)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "screenshot":
		if f.Screenshot != nil {
			f.Screenshot(st.Label)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}
