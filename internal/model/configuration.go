package model

// DocumentConfiguration binds one named document template to a form together
// with the access rules that govern who may view or download the rendered
// document. Records are owned by the configuration store; nothing in the
// decision engine mutates them.
type DocumentConfiguration struct {
	ID                  string            `json:"id"`
	FormID              string            `json:"form_id"`
	Name                string            `json:"name"`
	Active              bool              `json:"active"`
	PublicAccess        bool              `json:"public_access"`
	RestrictOwner       bool              `json:"restrict_owner"`
	ConditionalLogic    *ConditionalLogic `json:"conditional_logic,omitempty"` // nil = no logic configured
	NotificationTargets []string          `json:"notification_targets,omitempty"`
	TemplateID          string            `json:"template_id"`
	FilenamePattern     string            `json:"filename_pattern"`

	// Rendering options carried for the renderer; irrelevant to authorization.
	PaperSize   string `json:"paper_size,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	RTL         bool   `json:"rtl,omitempty"`
}

// ConditionalLogic is a flat rule tree deciding whether a configuration
// applies to a given entry. A nil *ConditionalLogic means "no logic
// configured"; a non-nil value with zero rules is present-but-empty and
// still evaluates (to a pass for show, a fail for hide).
type ConditionalLogic struct {
	ActionType string            `json:"action_type"` // "show" or "hide"
	LogicType  string            `json:"logic_type"`  // "all" or "any"
	Rules      []ConditionalRule `json:"rules"`
}

// ConditionalRule compares one entry field value against a target value.
type ConditionalRule struct {
	FieldID  string `json:"field_id"`
	Operator string `json:"operator"` // is, isnot, greater_than, less_than, contains, starts_with, ends_with
	Value    string `json:"value"`
}

// TargetsNotification reports whether this configuration should be attached
// to the given notification.
func (c *DocumentConfiguration) TargetsNotification(notificationID string) bool {
	for _, t := range c.NotificationTargets {
		if t == notificationID {
			return true
		}
	}
	return false
}
