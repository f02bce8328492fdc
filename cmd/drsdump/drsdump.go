package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"github.com/tigerbot-team/kartbot/pkg/drs"
	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/smoother"
	"github.com/tigerbot-team/kartbot/pkg/timers"
)

var CLI struct {
	Device   string        `help:"SPI device." default:"/dev/spidev0.0"`
	ClockKHz int           `help:"SPI clock." default:"100"`
	Kart     int           `help:"Our kart number." default:"1"`
	Every    time.Duration `help:"Print interval." default:"200ms"`
	Raw      bool          `help:"Print raw frames instead of decoded status."`
}

// drsdump polls the position service the same way the controller does and
// prints what it hears.
func main() {
	k := kong.Parse(&CLI, kong.Name("drsdump"), kong.UsageOnError())

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	for _, r := range spireg.All() {
		log.Printf("Port ref: %v", r)
	}

	cfg := drs.DefaultConfig()
	cfg.Device = CLI.Device
	cfg.ClockKHz = CLI.ClockKHz
	conn, closer, err := drs.OpenSPI(cfg)
	k.FatalIfErrorf(err)
	defer closer.Close()

	if CLI.Raw {
		dumpRaw(conn)
		return
	}

	q := events.NewQueue(16)
	ts := timers.New(q, nil)
	c, err := drs.NewClient(conn, CLI.Kart, cfg, q, ts, smoother.New())
	k.FatalIfErrorf(err)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)

	poll := time.NewTicker(time.Duration(cfg.PollMS) * time.Millisecond)
	defer poll.Stop()
	show := time.NewTicker(CLI.Every)
	defer show.Stop()
	for {
		select {
		case s := <-signals:
			log.Println("Signal: ", s)
			return
		case <-poll.C:
			if err := c.Poll(); err != nil {
				fmt.Println("Poll failed:", err)
			}
			for _, ev := range q.Drain() {
				fmt.Println("Event:", ev)
			}
		case <-show.C:
			for n := 1; n <= 3; n++ {
				fmt.Printf("Kart %d: %v\n", n, c.QueryKart(n))
			}
			fmt.Printf("Failures: %d\n\n", c.Failures)
		}
	}
}

func dumpRaw(conn drs.Conn) {
	q := drs.QueryGameState
	w := make([]byte, drs.FrameLen)
	r := make([]byte, drs.FrameLen)
	for range time.NewTicker(CLI.Every).C {
		w[0] = q
		if err := conn.Tx(w, r); err != nil {
			log.Fatal(err)
		}
		log.Printf("Query %#02x: % x valid=%v", q, r, drs.Valid(r))
		q = drs.NextQuery(q)
	}
}
