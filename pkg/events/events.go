package events

import "fmt"

type Kind int

const (
	None Kind = iota
	Timeout

	// Game state edges from the position service.
	FlagDropped
	CautionFlagDropped
	GameOver
	EmergencyStop

	// Navigation.
	NextPointCalculated
	PathGenerated
	AtNextAngle
	AtNextPoint

	// Supervisor requests.
	ToShooting
	ToObstacle
	ToDriving

	DetectedBeacon
)

var kindNames = map[Kind]string{
	None:                "None",
	Timeout:             "Timeout",
	FlagDropped:         "FlagDropped",
	CautionFlagDropped:  "CautionFlagDropped",
	GameOver:            "GameOver",
	EmergencyStop:       "EmergencyStop",
	NextPointCalculated: "NextPointCalculated",
	PathGenerated:       "PathGenerated",
	AtNextAngle:         "AtNextAngle",
	AtNextPoint:         "AtNextPoint",
	ToShooting:          "ToShooting",
	ToObstacle:          "ToObstacle",
	ToDriving:           "ToDriving",
	DetectedBeacon:      "DetectedBeacon",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is passed by value through the queue.  For timeouts Param is the
// timer ID and Seq identifies which start of the timer expired.
type Event struct {
	Kind  Kind
	Param int
	Seq   uint64
}

func (e Event) String() string {
	if e.Kind == Timeout {
		return fmt.Sprintf("Timeout(%d)", e.Param)
	}
	return e.Kind.String()
}

// Consumed is returned by Run methods that handled their event.
var Consumed = Event{Kind: None}

type Poster interface {
	Post(e Event) bool
}

// Queue is the bounded event queue between producers and the event loop.
type Queue struct {
	c chan Event
}

func NewQueue(size int) *Queue {
	return &Queue{c: make(chan Event, size)}
}

// Post enqueues e without blocking.  Returns false if the queue is full.
func (q *Queue) Post(e Event) bool {
	select {
	case q.c <- e:
		return true
	default:
		fmt.Println("EVENTS: Queue full, dropping", e)
		return false
	}
}

func (q *Queue) C() <-chan Event {
	return q.c
}

// Drain removes and returns everything currently queued.
func (q *Queue) Drain() []Event {
	var out []Event
	for {
		select {
		case e := <-q.c:
			out = append(out, e)
		default:
			return out
		}
	}
}

func (q *Queue) Len() int {
	return len(q.c)
}
