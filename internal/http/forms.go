package http

import (
	"net/http"
	"strconv"

	"github.com/example/event-manager/internal/application"
)

// formView is the data shared by the create and edit form templates.
type formView struct {
	Title      string
	ButtonText string
	Action     string
	CancelURL  string
	Errors     map[string]string
	Values     any

	Categories []application.Category
	Events     []application.Event
	Selected   map[string]bool
}

func (f formView) Error(field string) string {
	return f.Errors[field]
}

func validationErrors(err error) (map[string]string, bool) {
	vErr, ok := application.AsValidationError(err)
	if !ok {
		return nil, false
	}
	return vErr.FieldErrors, true
}

func categoryInputFromRequest(r *http.Request) application.CategoryInput {
	return application.CategoryInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
}

func eventInputFromRequest(r *http.Request) application.EventInput {
	return application.EventInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Date:        r.PostFormValue("date"),
		Time:        r.PostFormValue("time"),
		Location:    r.PostFormValue("location"),
		CategoryID:  r.PostFormValue("category"),
	}
}

func participantInputFromRequest(r *http.Request) application.ParticipantInput {
	return application.ParticipantInput{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		EventIDs: r.PostForm["events"],
	}
}

func eventInputFrom(event application.Event) application.EventInput {
	return application.EventInput{
		Name:        event.Name,
		Description: event.Description,
		Date:        event.DateString(),
		Time:        event.TimeString(),
		Location:    event.Location,
		CategoryID:  categoryValue(event.CategoryID),
	}
}

func categoryValue(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func selectedSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// pathID reads the {id} wildcard. ok is false for anything but a positive integer.
func pathID(r *http.Request) (int64, bool) {
	return application.ParseID(r.PathValue("id"))
}
