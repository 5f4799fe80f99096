package model

import "time"

// Entry is an immutable snapshot of one form submission.
// It is created by the external form-submission subsystem and is read-only
// here; field values are opaque except to conditional-logic evaluation.
type Entry struct {
	ID          string            `json:"id"`
	FormID      string            `json:"form_id"`
	CreatedBy   string            `json:"created_by"` // empty when submitted anonymously
	IP          string            `json:"ip"`
	DateCreated time.Time         `json:"date_created"`
	Fields      map[string]string `json:"fields"`
}

// Field returns the raw value of a form field, or "" when absent.
func (e *Entry) Field(id string) string {
	if e == nil || e.Fields == nil {
		return ""
	}
	return e.Fields[id]
}

// HasOwner reports whether the entry was submitted by a known user account.
func (e *Entry) HasOwner() bool {
	return e != nil && e.CreatedBy != ""
}
