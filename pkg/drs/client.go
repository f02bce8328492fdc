package drs

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/smoother"
	"github.com/tigerbot-team/kartbot/pkg/timers"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

// Conn is a full-duplex transaction with the position service.  periph's
// spi.Conn satisfies it.
type Conn interface {
	Tx(w, r []byte) error
}

type Config struct {
	Device   string `yaml:"device"`
	ClockKHz int    `yaml:"clockKHz"`
	// PollMS is the gap between transactions.
	PollMS int `yaml:"pollMS"`
}

func DefaultConfig() Config {
	return Config{
		Device:   "/dev/spidev0.0",
		ClockKHz: 100,
		PollMS:   10,
	}
}

// Client polls the position service, one query per DRS timer tick, cycling
// through the game state and the three karts.  It posts FlagDropped,
// CautionFlagDropped and GameOver when our kart's game state changes.
type Client struct {
	conn     Conn
	myKart   int
	pollMS   int
	poster   events.Poster
	timers   timers.Interface
	smoother *smoother.Heading

	query     byte
	karts     [4]KartStatus
	lastState GameState
	w, r      [FrameLen]byte

	Failures int
}

func NewClient(conn Conn, myKart int, cfg Config, poster events.Poster, t timers.Interface, h *smoother.Heading) (*Client, error) {
	if KartQuery(myKart) == 0 {
		return nil, errors.Errorf("kart number must be 1-3, not %d", myKart)
	}
	if cfg.PollMS <= 0 {
		return nil, errors.Errorf("invalid DRS poll interval %dms", cfg.PollMS)
	}
	return &Client{
		conn:     conn,
		myKart:   myKart,
		pollMS:   cfg.PollMS,
		poster:   poster,
		timers:   t,
		smoother: h,
		query:    QueryGameState,
	}, nil
}

func (c *Client) Start() {
	fmt.Printf("DRS: Polling every %dms as kart %d\n", c.pollMS, c.myKart)
	c.timers.Start(timers.DRS, c.pollMS)
}

// Run handles the DRS timer.  Everything else passes through.
func (c *Client) Run(ev events.Event) events.Event {
	if !timers.Expired(ev, timers.DRS) {
		return ev
	}
	if err := c.Poll(); err != nil {
		c.Failures++
		fmt.Println("DRS: Retrying:", err)
	}
	c.timers.Start(timers.DRS, c.pollMS)
	return events.Consumed
}

// Poll sends the current query and stores the response.  On failure the same
// query is sent again next time.
func (c *Client) Poll() error {
	for i := range c.w {
		c.w[i] = 0
		c.r[i] = 0
	}
	c.w[0] = c.query
	if err := c.conn.Tx(c.w[:], c.r[:]); err != nil {
		return errors.Wrapf(err, "transfer of query %#x failed", c.query)
	}
	if !Valid(c.r[:]) {
		return errors.Errorf("invalid response to query %#x", c.query)
	}
	c.save(c.query, c.r[:])
	c.query = NextQuery(c.query)
	return nil
}

func (c *Client) save(q byte, resp []byte) {
	if q == QueryGameState {
		for n := 1; n <= 3; n++ {
			DecodeStatus(resp[statusOffset+n-1], &c.karts[n])
		}
		c.checkEdges()
		return
	}

	n := kartForQuery(q)
	pose := DecodePose(resp)
	k := &c.karts[n]
	k.Pose = pose
	k.RawHeading = pose.Heading
	if n == c.myKart {
		c.smoother.Add(pose.Heading)
	}
}

func (c *Client) checkEdges() {
	state := c.karts[c.myKart].GameState
	if state == c.lastState {
		return
	}
	fmt.Printf("DRS: Game state %v -> %v\n", c.lastState, state)
	c.lastState = state

	var k events.Kind
	switch state {
	case FlagDropped:
		k = events.FlagDropped
	case CautionFlag:
		k = events.CautionFlagDropped
	case RaceOver:
		k = events.GameOver
	default:
		return
	}
	c.poster.Post(events.Event{Kind: k})
}

// QueryMyKart returns the last good status of our kart.  The heading is
// smoothed once there are samples since the last drive leg started.
func (c *Client) QueryMyKart() KartStatus {
	k := c.karts[c.myKart]
	if s := c.smoother.Smoothed(); s >= 0 {
		k.Heading = uint16(s)
	}
	return k
}

// QueryKart returns the last good status of kart n (1-3).
func (c *Client) QueryKart(n int) KartStatus {
	if n == c.myKart {
		return c.QueryMyKart()
	}
	if n < 1 || n > 3 {
		return KartStatus{}
	}
	return c.karts[n]
}

func (c *Client) Locate() (track.Pose, track.Progress) {
	k := c.QueryMyKart()
	return k.Pose, k.Progress()
}

var _ track.Locator = (*Client)(nil)
