package screen

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/kartbot/pkg/track"
)

const S = 128

// Status is what the screen shows.
type Status struct {
	GameState string
	Laps      int
	Machine   string
	Paused    bool
	Pose      track.Pose
	Peers     []track.Pose
}

// Screen holds the latest status for the render loop.  Update is called from
// the event loop.
type Screen struct {
	lock     sync.Mutex
	status   Status
	geometry track.Geometry
}

func New(g track.Geometry) *Screen {
	return &Screen{geometry: g}
}

func (s *Screen) Update(st Status) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.status = st
}

func (s *Screen) Status() Status {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.status
}

// Loop redraws the framebuffer twice a second until ctx is done, then blanks
// it.
func (s *Screen) Loop(ctx context.Context, device string) {
	f, err := os.OpenFile(device, os.O_RDWR, 0666)
	if err != nil {
		fmt.Println("Failed to open screen, ignoring")
		return
	}
	defer f.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			var buf [S * S * 2]byte
			_, _ = f.Seek(0, 0)
			_, _ = f.Write(buf[:])
			return
		case <-ticker.C:
		}

		buf := ToRGB565(Render(s.Status(), s.geometry))
		if _, err := f.Seek(0, 0); err != nil {
			fmt.Println("Screen failure: ", err)
			return
		}
		for i := 0; i < S; i++ {
			if _, err := f.Write(buf[i*S*2 : (i+1)*S*2]); err != nil {
				fmt.Println("Screen failure: ", err)
				return
			}
			time.Sleep(10 * time.Microsecond)
		}
	}
}

// Render draws the status text above a map of the arena with every kart on
// it.
func Render(st Status, g track.Geometry) image.Image {
	dc := gg.NewContext(S, S)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	dc.SetRGBA(1, 0.9, 0, 1)
	dc.DrawString(st.GameState, 2, 12)
	dc.DrawString(fmt.Sprintf("LAPS %d", st.Laps), 84, 12)
	dc.DrawString(st.Machine, 2, 26)

	drawMap(dc, st, g, 2, 32, S-4, S-34)

	if st.Paused {
		dc.Push()
		dc.Translate(S-16, 22)
		DrawWarning(dc)
		dc.Pop()
	}
	return dc.Image()
}

// arenaW and arenaH bound the position service's coordinates.
const (
	arenaW = 240
	arenaH = 180
)

func drawMap(dc *gg.Context, st Status, g track.Geometry, x, y, w, h float64) {
	sx := w / arenaW
	sy := h / arenaH
	px := func(v uint16) float64 { return x + float64(v)*sx }
	py := func(v uint16) float64 { return y + float64(v)*sy }

	dc.SetRGBA(1, 0.9, 0, 1)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()

	// Inner square.
	dc.SetRGBA(0.5, 0.5, 0.5, 1)
	dc.DrawRectangle(px(g.X1), py(g.Y1), float64(g.X2-g.X1)*sx, float64(g.Y2-g.Y1)*sy)
	dc.Fill()

	dc.SetRGB(0, 0.6, 1)
	for _, p := range []track.Point{g.BottomRight, g.TopRight, g.TopLeft, g.BottomLeft, g.ShootingPoint} {
		dc.DrawCircle(px(p.X), py(p.Y), 1.5)
	}
	dc.Fill()

	dc.SetRGB(0.6, 0.6, 0.6)
	for _, p := range st.Peers {
		dc.DrawCircle(px(p.X), py(p.Y), 2.5)
	}
	dc.Fill()

	drawKart(dc, px(st.Pose.X), py(st.Pose.Y), st.Pose.Heading)
}

// drawKart draws a triangle pointing along heading.  Heading 0 faces -X and
// grows towards +Y.
func drawKart(dc *gg.Context, x, y float64, heading uint16) {
	dc.Push()
	dc.SetRGB(0.2, 1, 0.2)
	dc.RotateAbout(gg.Radians(180-float64(heading)), x, y)
	dc.DrawRegularPolygon(3, x, y, 5, 0)
	dc.Fill()
	dc.Pop()
}

func DrawWarning(dc *gg.Context) {
	dc.SetRGB(1, 0.2, 0)
	dc.DrawRegularPolygon(3, 0, 0, 14, 0)
	dc.Fill()
	dc.SetRGBA(0, 0, 0, 0.9)
	dc.DrawString("!", -3, 3)
}

// ToRGB565 converts an S x S image to the framebuffer's layout, which is
// rotated a quarter turn.
func ToRGB565(img image.Image) []byte {
	buf := make([]byte, S*S*2)
	for y := 0; y < S; y++ {
		for x := 0; x < S; x++ {
			r, g, b, _ := img.At(x, y).RGBA() // 16-bit pre-multiplied

			rb := byte(r >> (16 - 5))
			gb := byte(g >> (16 - 6)) // Green has 6 bits
			bb := byte(b >> (16 - 5))

			buf[(S-1-y)*2+x*S*2+1] = (rb << 3) | (gb >> 3)
			buf[(S-1-y)*2+x*S*2] = bb | (gb << 5)
		}
	}
	return buf
}

// SavePNG renders st at four times the screen size.
func SavePNG(path string, st Status, g track.Geometry) error {
	dc := gg.NewContext(S*4, S*4)
	dc.Scale(4, 4)
	dc.DrawImage(Render(st, g), 0, 0)
	if err := dc.SavePNG(path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}
