// Package render draws an agent's overlay layers from its sprite sheet.
package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/officeagent/agent"
)

// SoundPlayer plays a sound by id.
type SoundPlayer interface {
	Play(id string)
}

// Layer is the visible state of one overlay layer.
type Layer struct {
	Visible bool
	Offset  agent.FrameImage
}

// Overlay is a fixed stack of sprite layers over one sheet. It implements
// animator.RenderSink.
type Overlay struct {
	sheet  *ebiten.Image
	frameW int
	frameH int
	layers []Layer
	sounds SoundPlayer
	cache  map[agent.FrameImage]*ebiten.Image
}

// NewOverlay creates one layer per overlay of lib, all hidden. sheet and
// sounds may be nil.
func NewOverlay(sheet *ebiten.Image, lib *agent.Library, sounds SoundPlayer) *Overlay {
	count := 1
	w, h := 0, 0
	if lib != nil {
		if lib.OverlayCount > count {
			count = lib.OverlayCount
		}
		w, h = lib.Width(), lib.Height()
	}
	return &Overlay{
		sheet:  sheet,
		frameW: w,
		frameH: h,
		layers: make([]Layer, count),
		sounds: sounds,
		cache:  make(map[agent.FrameImage]*ebiten.Image),
	}
}

// Draw positions layer i on images[i] and hides layers without an image. A
// frame without images leaves the layers as they are.
func (o *Overlay) Draw(images []agent.FrameImage) {
	if o == nil || images == nil {
		return
	}
	for i := range o.layers {
		if i < len(images) {
			o.layers[i] = Layer{Visible: true, Offset: images[i]}
		} else {
			o.layers[i].Visible = false
		}
	}
}

// PlaySound forwards to the sound player.
func (o *Overlay) PlaySound(id string) {
	if o == nil || o.sounds == nil {
		return
	}
	o.sounds.Play(id)
}

// Layers returns a copy of the layer states.
func (o *Overlay) Layers() []Layer {
	return append([]Layer(nil), o.layers...)
}

// Size returns the frame size in pixels.
func (o *Overlay) Size() (int, int) {
	return o.frameW, o.frameH
}

// DrawTo composites the visible layers, first layer at the bottom. If op is
// nil a default DrawImageOptions is used.
func (o *Overlay) DrawTo(dst *ebiten.Image, op *ebiten.DrawImageOptions) {
	if o == nil || o.sheet == nil || dst == nil || o.frameW <= 0 || o.frameH <= 0 {
		return
	}
	var dop ebiten.DrawImageOptions
	if op != nil {
		dop = *op
	}
	dop.Filter = ebiten.FilterNearest

	for _, l := range o.layers {
		if !l.Visible {
			continue
		}
		if sub := o.frame(l.Offset); sub != nil {
			screenOp := dop
			dst.DrawImage(sub, &screenOp)
		}
	}
}

func (o *Overlay) frame(offset agent.FrameImage) *ebiten.Image {
	if sub, ok := o.cache[offset]; ok {
		return sub
	}
	r, ok := frameRect(o.sheet.Bounds(), offset, o.frameW, o.frameH)
	if !ok {
		return nil
	}
	sub := o.sheet.SubImage(r).(*ebiten.Image)
	o.cache[offset] = sub
	return sub
}

// frameRect returns the sheet rectangle for a frame at offset, clipped to the
// sheet bounds.
func frameRect(bounds image.Rectangle, offset agent.FrameImage, w, h int) (image.Rectangle, bool) {
	x, y := bounds.Min.X+offset.X(), bounds.Min.Y+offset.Y()
	r := image.Rect(x, y, x+w, y+h).Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, false
	}
	return r, true
}
