package director

import (
	"context"
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// DefaultScript picks a random animation that is neither idle nor the one
// currently playing.
const DefaultScript = `
rand := import("rand")
text := import("text")

candidates := []
for _, name in animations {
	if !text.contains(name, "Idle") && name != current {
		candidates = append(candidates, name)
	}
}

next := ""
if len(candidates) > 0 {
	next = candidates[rand.intn(len(candidates))]
}
`

const scriptTimeout = 100 * time.Millisecond

// Picker chooses the next animation.
type Picker interface {
	Pick(animations []string, current, state string) (string, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(animations []string, current, state string) (string, error)

func (f PickerFunc) Pick(animations []string, current, state string) (string, error) {
	return f(animations, current, state)
}

// ScriptPicker runs a tengo script that reads the globals animations, current
// and state and leaves its choice in next.
type ScriptPicker struct {
	compiled *tengo.Compiled
}

// NewScriptPicker compiles src. An empty src uses DefaultScript.
func NewScriptPicker(src []byte) (*ScriptPicker, error) {
	if len(src) == 0 {
		src = []byte(DefaultScript)
	}
	script := tengo.NewScript(src)
	_ = script.Add("animations", []any{})
	_ = script.Add("current", "")
	_ = script.Add("state", "")
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("director: compile script: %w", err)
	}
	return &ScriptPicker{compiled: compiled}, nil
}

// Pick runs the script once.
func (p *ScriptPicker) Pick(animations []string, current, state string) (string, error) {
	names := make([]any, len(animations))
	for i, name := range animations {
		names[i] = name
	}

	c := p.compiled.Clone()
	if err := c.Set("animations", names); err != nil {
		return "", err
	}
	if err := c.Set("current", current); err != nil {
		return "", err
	}
	if err := c.Set("state", state); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()
	if err := c.RunContext(ctx); err != nil {
		return "", fmt.Errorf("director: run script: %w", err)
	}
	if !c.IsDefined("next") {
		return "", nil
	}
	return c.Get("next").String(), nil
}
