package rfcomm

import (
	"strconv"
)

// Direction is the readiness condition to wait for.
type Direction uint8

const (
	Readable Direction = iota + 1
	Writable
)

func (d Direction) String() string {
	switch d {
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// Status is the outcome of a successful Step. Either the machine finished
// (Done is set) or the caller must wait until Fd is ready for Dir and then
// call Step again. Each Fd/Dir pair is good for a single readiness
// notification and must not be reused after the next Step.
type Status struct {
	Fd   int
	Dir  Direction
	Done bool
}

func waitFor(fd int, dir Direction) Status {
	return Status{Fd: fd, Dir: dir}
}

var statusDone = Status{Fd: -1, Done: true}

func (s Status) String() string {
	if s.Done {
		return "done"
	}
	return "wait fd " + strconv.Itoa(s.Fd) + " " + s.Dir.String()
}
