package arena

import (
	"fmt"
	"strings"
)

// RGB is a pixel color
type RGB [3]byte

// Outfit colors. Ken's first and third outfits are red and green.
var OutfitPalette = map[int]RGB{
	1: {248, 0, 0},
	2: {0, 64, 248},
	3: {88, 176, 40},
	4: {232, 232, 232},
	5: {160, 32, 240},
	6: {248, 136, 0},
	7: {0, 200, 200},
}

var (
	skyColor    = RGB{40, 40, 56}
	floorColor  = RGB{90, 70, 50}
	healthColor = RGB{250, 210, 0}
)

const (
	fighterWidth  = 24
	fighterHeight = 80
	crouchHeight  = 50
	jumpHeight    = 40
	floorLine     = nativeHeight * 7 / 8
	barHeight     = 8
)

func (e *sfiii3n) frameShape() (int, int, int) {
	h, w, c := e.settings.FrameShape[0], e.settings.FrameShape[1], e.settings.FrameShape[2]
	if h == 0 {
		h = nativeHeight
	}
	if w == 0 {
		w = nativeWidth
	}
	if c == 0 {
		c = nativeChannels
	}
	return h, w, c
}

// draw paints the arena at native resolution scaled to the frame shape
func (e *sfiii3n) draw() Frame {
	h, w, c := e.frameShape()
	f := Frame{Height: h, Width: w, Channels: c, Pix: make([]byte, h*w*c)}

	fill := func(y0, y1, x0, x1 int, col RGB) {
		// native coordinates to frame coordinates
		y0, y1 = y0*h/nativeHeight, y1*h/nativeHeight
		x0, x1 = x0*w/nativeWidth, x1*w/nativeWidth
		y0, x0 = max(0, y0), max(0, x0)
		y1, x1 = min(h, y1), min(w, x1)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				px := f.At(y, x)
				if c == 1 {
					px[0] = luminance(col)
				} else {
					copy(px, col[:])
				}
			}
		}
	}

	fill(0, floorLine, 0, nativeWidth, skyColor)
	fill(floorLine, nativeHeight, 0, nativeWidth, floorColor)

	half := nativeWidth / 2
	for i := range e.fighters {
		fi := e.fighters[i]
		barLen := (half - 2*arenaMargin) * fi.health / maxHealth
		if i == 0 {
			fill(4, 4+barHeight, half-arenaMargin-barLen, half-arenaMargin, healthColor)
		} else {
			fill(4, 4+barHeight, half+arenaMargin, half+arenaMargin+barLen, healthColor)
		}

		height := fighterHeight
		if fi.crouch {
			height = crouchHeight
		}
		bottom := floorLine
		if fi.jump > 0 {
			bottom -= jumpHeight
		}
		col, ok := OutfitPalette[e.outfits[i]]
		if !ok {
			col = RGB{128, 128, 128}
		}
		fill(bottom-height, bottom, fi.x-fighterWidth/2, fi.x+fighterWidth/2, col)
	}
	return f
}

func luminance(c RGB) byte {
	return byte((299*int(c[0]) + 587*int(c[1]) + 114*int(c[2])) / 1000)
}

const asciiWidth = 64

// ascii renders a one-line view of the arena for human mode
func (e *sfiii3n) ascii() string {
	strip := []byte(strings.Repeat(".", asciiWidth))
	for i := range e.fighters {
		pos := e.fighters[i].x * (asciiWidth - 1) / nativeWidth
		mark := byte('0' + i)
		if e.fighters[i].jump > 0 {
			mark = '^'
		} else if e.fighters[i].crouch {
			mark = '_'
		}
		strip[pos] = mark
	}
	return fmt.Sprintf("R%d T%02d %s(%3d) [%s] (%3d)%s",
		e.round, e.timer,
		e.active[0], e.fighters[0].health,
		strip,
		e.fighters[1].health, e.active[1],
	)
}
