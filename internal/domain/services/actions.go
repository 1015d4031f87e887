package services

import (
	"fmt"

	"github.com/ersonp/compliance-core/internal/domain/entities"
)

const (
	// MaxDocumentActions caps document-derived actions.
	MaxDocumentActions = 3
	// MaxCaseActions caps case-derived actions.
	MaxCaseActions = 3
	// UrgentExpiryDays is the window for a document to become an action.
	UrgentExpiryDays = 7
	// CriticalExpiryDays escalates a document action to critical.
	CriticalExpiryDays = 3
)

// ActionLimits bounds the action queue.
type ActionLimits struct {
	Documents int
	Cases     int
}

// DefaultActionLimits returns the standard 3 + 3 caps.
func DefaultActionLimits() ActionLimits {
	return ActionLimits{Documents: MaxDocumentActions, Cases: MaxCaseActions}
}

// PrioritizeActions builds the next-actions queue: urgent documents first,
// then the first cases, each in input order and each capped by limits.
// Documents must already carry DaysUntilExpiry.
func PrioritizeActions(docs []entities.Document, cases []entities.Case, limits ActionLimits) []entities.Action {
	actions := make([]entities.Action, 0, limits.Documents+limits.Cases)

	docCount := 0
	for i := range docs {
		if docCount >= limits.Documents {
			break
		}
		doc := &docs[i]
		if !expiresWithin(doc, UrgentExpiryDays) {
			continue
		}
		actions = append(actions, documentAction(doc))
		docCount++
	}

	caseCount := 0
	for i := range cases {
		if caseCount >= limits.Cases {
			break
		}
		actions = append(actions, caseAction(&cases[i]))
		caseCount++
	}

	return actions
}

func documentAction(doc *entities.Document) entities.Action {
	days := *doc.DaysUntilExpiry

	priority := entities.PriorityHigh
	if days <= CriticalExpiryDays {
		priority = entities.PriorityCritical
	}

	description := fmt.Sprintf("%s expires in %d days", doc.Name, days)
	if days == 0 {
		description = doc.Name + " expires today"
	}
	if doc.SubjectName != "" {
		description += " (" + doc.SubjectName + ")"
	}

	action := entities.Action{
		ID:          doc.ID,
		Kind:        entities.ActionDocument,
		Title:       "Renew " + doc.Name,
		Description: description,
		Priority:    priority,
	}
	if doc.ExpiryDate != nil {
		due := *doc.ExpiryDate
		action.DueDate = &due
	}
	return action
}

func caseAction(c *entities.Case) entities.Action {
	description := fmt.Sprintf("Case is %s", c.Status)
	if c.SubjectName != "" {
		description = fmt.Sprintf("Case for %s is %s", c.SubjectName, c.Status)
	}
	return entities.Action{
		ID:          c.ID,
		Kind:        entities.ActionCase,
		Title:       c.Title,
		Description: description,
		Priority:    c.Priority,
	}
}
