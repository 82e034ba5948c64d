package orders

import "strings"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

// COMPLETED dan CANCELED final
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusShipped: true, StatusCanceled: true},
	StatusShipped:   {StatusCompleted: true, StatusCanceled: true},
	StatusCompleted: {},
	StatusCanceled:  {},
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := validNext[st]
	return st, ok
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
