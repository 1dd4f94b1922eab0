package application

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxCategoryNameLength    = 100
	maxEventNameLength       = 200
	maxEventLocationLength   = 200
	maxParticipantNameLength = 100
)

func requireText(vErr *ValidationError, field, value string, maxLength int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		vErr.add(field, field+" is required")
		return ""
	}
	if maxLength > 0 && utf8.RuneCountInString(value) > maxLength {
		vErr.add(field, fmt.Sprintf("%s must be at most %d characters", field, maxLength))
	}
	return value
}

// validateEmail accepts a bare address such as a@b.com. Display names and
// angle brackets are rejected.
func validateEmail(vErr *ValidationError, raw string) string {
	email := strings.TrimSpace(raw)
	if email == "" {
		vErr.add("email", "email is required")
		return ""
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		vErr.add("email", "email is invalid")
		return email
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		vErr.add("email", "email is invalid")
	}
	return email
}

func validateCategoryInput(input CategoryInput) (Category, *ValidationError) {
	vErr := &ValidationError{}
	category := Category{
		Name:        requireText(vErr, "name", input.Name, maxCategoryNameLength),
		Description: strings.TrimSpace(input.Description),
	}
	return category, vErr
}

// validateEventInput checks the form fields. The category reference is
// returned unresolved; existence is checked by the service.
func validateEventInput(input EventInput) (Event, *ValidationError) {
	vErr := &ValidationError{}
	event := Event{
		Name:        requireText(vErr, "name", input.Name, maxEventNameLength),
		Description: strings.TrimSpace(input.Description),
		Location:    requireText(vErr, "location", input.Location, maxEventLocationLength),
	}

	switch raw := strings.TrimSpace(input.Date); {
	case raw == "":
		vErr.add("date", "date is required")
	default:
		if d, ok := parseDate(raw); ok {
			event.Date = d
		} else {
			vErr.add("date", "date must be a valid date (YYYY-MM-DD)")
		}
	}

	switch raw := strings.TrimSpace(input.Time); {
	case raw == "":
		vErr.add("time", "time is required")
	default:
		if t, ok := parseTimeOfDay(raw); ok {
			event.Time = t
		} else {
			vErr.add("time", "time must be a valid time (HH:MM)")
		}
	}

	if raw := strings.TrimSpace(input.CategoryID); raw != "" {
		if id, ok := parseID(raw); ok {
			event.CategoryID = &id
		} else {
			vErr.add("category", "select a valid category")
		}
	}

	return event, vErr
}

func validateParticipantInput(input ParticipantInput) (Participant, *ValidationError) {
	vErr := &ValidationError{}
	participant := Participant{
		Name:     requireText(vErr, "name", input.Name, maxParticipantNameLength),
		Email:    validateEmail(vErr, input.Email),
		EventIDs: []int64{},
	}

	seen := make(map[int64]struct{}, len(input.EventIDs))
	for _, raw := range input.EventIDs {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, ok := parseID(raw)
		if !ok {
			vErr.add("events", "select valid events")
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		participant.EventIDs = append(participant.EventIDs, id)
	}

	return participant, vErr
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
