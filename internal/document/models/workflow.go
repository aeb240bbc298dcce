package models

import (
	"fmt"
	"slices"
	"time"

	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

// transitions is the adjacency list of the document workflow. Archived is
// terminal and nothing reaches published without passing review.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusReview, StatusArchived},
	StatusReview:    {StatusPublished, StatusArchived},
	StatusPublished: {StatusArchived},
}

func (s Status) CanTransitionTo(to Status) bool {
	return slices.Contains(transitions[s], to)
}

// Actor is the principal moving a document, with the role it holds inside
// the document's clinic.
type Actor struct {
	ID   id.UserID
	Role id.Role
}

// CanTransition checks adjacency first, then who may perform the move.
// Use with ApplyTransition in Execute callbacks so the check and the write
// happen under the same lock.
func (d *Document) CanTransition(to Status, actor Actor) error {
	if !d.Status.CanTransitionTo(to) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("cannot move document from %s to %s", d.Status, to))
	}
	switch to {
	case StatusReview:
		if actor.ID == d.CreatedBy || actor.Role.IsManagerial() {
			return nil
		}
	case StatusPublished, StatusArchived:
		if actor.Role.IsManagerial() {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, "access denied")
}

// ApplyTransition moves the document. Publishing stamps the signature in
// the same write. Call CanTransition first.
func (d *Document) ApplyTransition(to Status, actor Actor, now time.Time) {
	if to == StatusPublished && d.Signature == nil {
		sig := Sign(d, actor.ID, now)
		d.Signature = &sig
	}
	d.Status = to
	d.UpdatedAt = now
}

// Transition validates and applies in one call.
func (d *Document) Transition(to Status, actor Actor, now time.Time) error {
	if err := d.CanTransition(to, actor); err != nil {
		return err
	}
	d.ApplyTransition(to, actor, now)
	return nil
}
