package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tigerbot-team/kartbot/pkg/screen"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

// Type a machine name to show it, "p" to toggle the caution warning or
// "x y heading" to move the kart.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scr := screen.New(track.DefaultGeometry())
	st := screen.Status{
		GameState: "FlagDropped",
		Laps:      3,
		Machine:   "DRIVING",
		Pose:      track.Pose{X: 100, Y: 150, Heading: 180},
		Peers:     []track.Pose{{X: 230, Y: 100}, {X: 100, Y: 17}},
	}
	scr.Update(st)
	go scr.Loop(ctx, "/dev/fb1")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Fields(line)
		switch {
		case len(parts) == 0:
			continue
		case parts[0] == "p":
			st.Paused = !st.Paused
		case len(parts) == 3:
			var v [3]int
			for i, p := range parts {
				if v[i], err = strconv.Atoi(p); err != nil {
					break
				}
			}
			if err != nil {
				fmt.Println("Expected x y heading")
				continue
			}
			st.Pose = track.Pose{X: uint16(v[0]), Y: uint16(v[1]), Heading: uint16(v[2])}
		default:
			st.Machine = strings.ToUpper(parts[0])
		}
		scr.Update(st)
	}
}
