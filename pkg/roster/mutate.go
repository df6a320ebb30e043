package roster

import (
	"fmt"
	"strings"
)

// Add appends a participant numbered one past the current maximum.
// Numbers freed by deletes are never handed out again while a higher
// number is still on the sheet.
func Add(r Roster, name string) (Roster, Participant, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return r, Participant{}, false, newError(KindValidation, "add", "name must not be empty", nil)
	}
	p := Participant{
		Number: r.MaxNumber() + 1,
		Name:   name,
	}
	out := append(r.clone(), p)
	return out, p, true, nil
}

// Edit replaces the editable fields of one participant. Nothing changes,
// including the timestamp, when the new values equal the current ones.
func Edit(r Roster, no int, first, second bool, comment string) (Roster, bool, error) {
	i := r.indexOf(no)
	if i < 0 {
		return r, false, notFound("edit", no)
	}
	cur := r[i]
	if cur.FirstSession == first && cur.SecondSession == second && cur.Comment == comment {
		return r, false, nil
	}
	out := r.clone()
	out[i].FirstSession = first
	out[i].SecondSession = second
	out[i].Comment = comment
	out[i].LastModified = timestamp()
	return out, true, nil
}

func ToggleFirst(r Roster, no int) (Roster, bool, error) {
	return toggle(r, no, "toggle first session", func(p *Participant) {
		p.FirstSession = !p.FirstSession
	})
}

func ToggleSecond(r Roster, no int) (Roster, bool, error) {
	return toggle(r, no, "toggle second session", func(p *Participant) {
		p.SecondSession = !p.SecondSession
	})
}

func toggle(r Roster, no int, op string, flip func(*Participant)) (Roster, bool, error) {
	i := r.indexOf(no)
	if i < 0 {
		return r, false, notFound(op, no)
	}
	out := r.clone()
	flip(&out[i])
	out[i].LastModified = timestamp()
	return out, true, nil
}

// Delete removes a participant. Deleting a number that is not present is
// not an error; the roster comes back unchanged.
func Delete(r Roster, no int) (Roster, bool) {
	i := r.indexOf(no)
	if i < 0 {
		return r, false
	}
	out := make(Roster, 0, len(r)-1)
	out = append(out, r[:i]...)
	out = append(out, r[i+1:]...)
	return out, true
}

func notFound(op string, no int) *Error {
	return newError(KindNotFound, op, fmt.Sprintf("participant %d not found", no), nil)
}
