package motors

import "fmt"

// outputs remembers the last values written to each side.
type outputs struct {
	duty [2]uint8
	dir  [2]Direction
}

func (o *outputs) Duty(ch Channel) uint8 {
	return o.duty[ch]
}

func (o *outputs) Direction(ch Channel) Direction {
	return o.dir[ch]
}

// Dummy records motor commands without driving any hardware.
type Dummy struct {
	outputs
	Verbose bool
}

func NewDummy() *Dummy {
	return &Dummy{}
}

func (d *Dummy) SetDuty(ch Channel, duty uint8) {
	duty = clampDuty(int(duty))
	if d.Verbose {
		fmt.Printf("DMOTORS: SetDuty %v=%d\n", ch, duty)
	}
	d.duty[ch] = duty
}

func (d *Dummy) SetDirection(ch Channel, dir Direction) {
	if d.Verbose {
		fmt.Printf("DMOTORS: SetDirection %v=%v\n", ch, dir)
	}
	d.dir[ch] = dir
}

var _ Interface = (*Dummy)(nil)
