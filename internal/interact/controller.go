package interact

import (
	"errors"
	"time"

	"eventcal/internal/model"
)

// ErrUnsaved is returned when deleting an event that has no ID.
var ErrUnsaved = errors.New("event has no id")

// Handler receives the committed outcome of a user action.
type Handler interface {
	OnEventCreate(start time.Time)
	OnEventSave(e model.Event)
	OnEventUpdate(e model.Event)
	OnEventDelete(id string)
}

// HandlerFuncs adapts optional functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	Create func(start time.Time)
	Save   func(e model.Event)
	Update func(e model.Event)
	Delete func(id string)
}

func (h HandlerFuncs) OnEventCreate(start time.Time) {
	if h.Create != nil {
		h.Create(start)
	}
}

func (h HandlerFuncs) OnEventSave(e model.Event) {
	if h.Save != nil {
		h.Save(e)
	}
}

func (h HandlerFuncs) OnEventUpdate(e model.Event) {
	if h.Update != nil {
		h.Update(e)
	}
}

func (h HandlerFuncs) OnEventDelete(id string) {
	if h.Delete != nil {
		h.Delete(id)
	}
}

// Controller runs a gesture or form action and reports it to the handler.
// Each call invokes at most one callback, and none when the action fails.
type Controller struct {
	h Handler
}

func NewController(h Handler) *Controller {
	if h == nil {
		h = HandlerFuncs{}
	}
	return &Controller{h: h}
}

// Create proposes an event at at and reports its snapped start.
func (c *Controller) Create(at time.Time) model.Event {
	e := Create(at)
	c.h.OnEventCreate(e.Start)
	return e
}

// Save validates e and reports it as saved when new, updated otherwise.
func (c *Controller) Save(e model.Event) (model.Event, error) {
	saved, err := Save(e)
	if err != nil {
		return model.Event{}, err
	}
	if saved.IsNew() {
		c.h.OnEventSave(saved)
	} else {
		c.h.OnEventUpdate(saved)
	}
	return saved, nil
}

func (c *Controller) Move(e model.Event, at time.Time) model.Event {
	moved := Move(e, at)
	c.h.OnEventUpdate(moved)
	return moved
}

func (c *Controller) Resize(e model.Event, edge Edge, at time.Time) (model.Event, error) {
	resized, err := Resize(e, edge, at)
	if err != nil {
		return model.Event{}, err
	}
	c.h.OnEventUpdate(resized)
	return resized, nil
}

func (c *Controller) Delete(e model.Event) error {
	if e.IsNew() {
		return ErrUnsaved
	}
	c.h.OnEventDelete(e.ID)
	return nil
}
