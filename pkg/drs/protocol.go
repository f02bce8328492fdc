package drs

import (
	"fmt"

	"github.com/tigerbot-team/kartbot/pkg/angle"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

// Every transaction is a query byte followed by seven zero bytes, clocking
// out an eight byte response.
const FrameLen = 8

const (
	QueryGameState byte = 0x3F
	QueryKart1     byte = 0xC3
	QueryKart2     byte = 0x5A
	QueryKart3     byte = 0x7E
)

// Bits of the per-kart status byte in the game state response.
const (
	shotCompleteBit     = 0x80
	obstacleCompleteBit = 0x40
	gameStateMask       = 0x18
	gameStateShift      = 3
	lapsMask            = 0x07
)

// Game state responses carry one status byte per kart starting here.
const statusOffset = 3

type GameState int

const (
	WaitingForStart GameState = iota
	FlagDropped
	CautionFlag
	RaceOver
)

func (g GameState) String() string {
	switch g {
	case WaitingForStart:
		return "WaitingForStart"
	case FlagDropped:
		return "FlagDropped"
	case CautionFlag:
		return "CautionFlag"
	case RaceOver:
		return "RaceOver"
	}
	return fmt.Sprintf("GameState(%d)", int(g))
}

// KartStatus is everything the position service reports about one kart.
type KartStatus struct {
	track.Pose
	// RawHeading is the last unsmoothed heading.
	RawHeading       uint16
	LapsRemaining    uint8
	ShotComplete     bool
	ObstacleComplete bool
	GameState        GameState
}

func (k KartStatus) Progress() track.Progress {
	return track.Progress{ShotComplete: k.ShotComplete, ObstacleComplete: k.ObstacleComplete}
}

func (k KartStatus) String() string {
	return fmt.Sprintf("%v %v laps=%d shot=%v obstacle=%v",
		k.Pose, k.GameState, k.LapsRemaining, k.ShotComplete, k.ObstacleComplete)
}

// NextQuery returns the query that follows q in the polling cycle.
func NextQuery(q byte) byte {
	switch q {
	case QueryGameState:
		return QueryKart1
	case QueryKart1:
		return QueryKart2
	case QueryKart2:
		return QueryKart3
	}
	return QueryGameState
}

// KartQuery returns the query byte for kart n (1-3).
func KartQuery(n int) byte {
	switch n {
	case 1:
		return QueryKart1
	case 2:
		return QueryKart2
	case 3:
		return QueryKart3
	}
	return 0
}

func kartForQuery(q byte) int {
	switch q {
	case QueryKart1:
		return 1
	case QueryKart2:
		return 2
	case QueryKart3:
		return 3
	}
	return 0
}

// Valid returns false for the response the service sends to a command it
// didn't understand.
func Valid(resp []byte) bool {
	if len(resp) < FrameLen {
		return false
	}
	and := byte(0xff)
	for _, b := range resp[1:FrameLen] {
		and &= b
	}
	return and != 0xff
}

// DecodeStatus updates k from its status byte.
func DecodeStatus(b byte, k *KartStatus) {
	k.GameState = GameState((b & gameStateMask) >> gameStateShift)
	k.LapsRemaining = b & lapsMask
	k.ShotComplete = b&shotCompleteBit != 0
	k.ObstacleComplete = b&obstacleCompleteBit != 0
}

// DecodePose extracts position and heading from a kart query response.  The
// heading is sent as a signed 16-bit value.
func DecodePose(resp []byte) track.Pose {
	theta := int16(uint16(resp[6])<<8 | uint16(resp[7]))
	return track.Pose{
		X:       uint16(resp[2])<<8 | uint16(resp[3]),
		Y:       uint16(resp[4])<<8 | uint16(resp[5]),
		Heading: uint16(angle.Normalize(int(theta))),
	}
}

// EncodeStatus is the inverse of DecodeStatus.
func EncodeStatus(k KartStatus) byte {
	b := byte(k.GameState)<<gameStateShift&gameStateMask | k.LapsRemaining&lapsMask
	if k.ShotComplete {
		b |= shotCompleteBit
	}
	if k.ObstacleComplete {
		b |= obstacleCompleteBit
	}
	return b
}

// EncodePose builds a kart query response.  Headings above 180 are sent as
// negative values, as the service does.
func EncodePose(p track.Pose) []byte {
	theta := int16(p.Heading % 360)
	if theta > 180 {
		theta -= 360
	}
	return []byte{0, 0xaa, byte(p.X >> 8), byte(p.X), byte(p.Y >> 8), byte(p.Y), byte(uint16(theta) >> 8), byte(theta)}
}
