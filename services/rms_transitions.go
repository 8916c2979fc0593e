package services

import (
	"fmt"

	"records-portal-api/models"
)

// TransitionRule is one edge of the RMS workflow: taking a document from From to
// To requires RequiredRole and hands the document to ResultingHandler.
type TransitionRule struct {
	From             models.DocumentStatus `json:"from_status"`
	To               models.DocumentStatus `json:"to_status"`
	RequiredRole     models.HandlerRole    `json:"required_role"`
	ResultingHandler models.HandlerRole    `json:"resulting_handler"`
	ActionType       string                `json:"action_type"`
}

type transitionKey struct {
	from models.DocumentStatus
	to   models.DocumentStatus
}

// statusHandlers maps every status to the single role responsible for it.
var statusHandlers = map[models.DocumentStatus]models.HandlerRole{
	models.StatusReceived:             models.HandlerRecordsOfficer,
	models.StatusSentToRecords:        models.HandlerRecordsOfficer,
	models.StatusForwardedToSecretary: models.HandlerBoardSecretary,
	models.StatusCommentedBySecretary: models.HandlerChiefOfficer,
	models.StatusSentToChair:          models.HandlerBoardChair,
	models.StatusCommentedByChair:     models.HandlerBoardChair,
	models.StatusSentToHR:             models.HandlerHR,
	models.StatusSentToCommittee:      models.HandlerBoardCommittee,
	models.StatusAgendaSet:            models.HandlerBoardSecretary,
	models.StatusBoardMeeting:         models.HandlerBoardCommittee,
	models.StatusDecisionMade:         models.HandlerRecordsOfficer,
	models.StatusDispatched:           models.HandlerInitiator,
	models.StatusFiled:                models.HandlerRegistry,
}

var transitionRules = []TransitionRule{
	{models.StatusReceived, models.StatusForwardedToSecretary, models.HandlerRecordsOfficer, models.HandlerBoardSecretary, models.ActionDocumentForwarded},
	{models.StatusReceived, models.StatusSentToRecords, models.HandlerChiefOfficer, models.HandlerRecordsOfficer, models.ActionSentToRecords},
	{models.StatusSentToRecords, models.StatusForwardedToSecretary, models.HandlerRecordsOfficer, models.HandlerBoardSecretary, models.ActionDocumentForwarded},
	{models.StatusForwardedToSecretary, models.StatusCommentedBySecretary, models.HandlerBoardSecretary, models.HandlerChiefOfficer, models.ActionDocumentForwarded},
	{models.StatusCommentedBySecretary, models.StatusSentToChair, models.HandlerChiefOfficer, models.HandlerBoardChair, models.ActionDocumentForwarded},
	{models.StatusSentToChair, models.StatusCommentedByChair, models.HandlerBoardChair, models.HandlerBoardChair, models.ActionDocumentForwarded},
	{models.StatusCommentedByChair, models.StatusSentToHR, models.HandlerBoardChair, models.HandlerHR, models.ActionDocumentForwarded},
	{models.StatusCommentedByChair, models.StatusSentToCommittee, models.HandlerBoardChair, models.HandlerBoardCommittee, models.ActionDocumentForwarded},
	{models.StatusSentToHR, models.StatusAgendaSet, models.HandlerHR, models.HandlerBoardSecretary, models.ActionDocumentForwarded},
	{models.StatusSentToCommittee, models.StatusAgendaSet, models.HandlerBoardCommittee, models.HandlerBoardSecretary, models.ActionDocumentForwarded},
	{models.StatusAgendaSet, models.StatusBoardMeeting, models.HandlerBoardSecretary, models.HandlerBoardCommittee, models.ActionDocumentForwarded},
	{models.StatusBoardMeeting, models.StatusDecisionMade, models.HandlerBoardCommittee, models.HandlerRecordsOfficer, models.ActionDocumentForwarded},
	{models.StatusDecisionMade, models.StatusDispatched, models.HandlerRecordsOfficer, models.HandlerInitiator, models.ActionDocumentDispatched},
	{models.StatusDecisionMade, models.StatusFiled, models.HandlerRecordsOfficer, models.HandlerRegistry, models.ActionDocumentFiled},
}

var transitionTable = buildTransitionTable(transitionRules)

func buildTransitionTable(rules []TransitionRule) map[transitionKey]TransitionRule {
	table := make(map[transitionKey]TransitionRule, len(rules))
	for _, rule := range rules {
		key := transitionKey{from: rule.From, to: rule.To}
		if _, dup := table[key]; dup {
			panic(fmt.Sprintf("duplicate transition %s -> %s", rule.From, rule.To))
		}
		if handler, ok := statusHandlers[rule.To]; !ok || handler != rule.ResultingHandler {
			panic(fmt.Sprintf("transition %s -> %s hands to %s, status handler is %s", rule.From, rule.To, rule.ResultingHandler, handler))
		}
		if _, ok := statusHandlers[rule.From]; !ok {
			panic(fmt.Sprintf("transition from unknown status %s", rule.From))
		}
		table[key] = rule
	}
	return table
}

// LookupTransition returns the rule for the (from, to) pair.
func LookupTransition(from, to models.DocumentStatus) (TransitionRule, bool) {
	rule, ok := transitionTable[transitionKey{from: from, to: to}]
	return rule, ok
}

// HandlerFor returns the role responsible for a document in the given status.
func HandlerFor(status models.DocumentStatus) (models.HandlerRole, bool) {
	handler, ok := statusHandlers[status]
	return handler, ok
}

// IsKnownStatus reports whether status appears in the workflow.
func IsKnownStatus(status models.DocumentStatus) bool {
	_, ok := statusHandlers[status]
	return ok
}

// IsTerminal reports whether no further transition may leave status.
func IsTerminal(status models.DocumentStatus) bool {
	return status == models.StatusDispatched || status == models.StatusFiled
}

// TransitionsFrom lists the outgoing edges of from, in table order. A non-empty
// role restricts the result to the edges that role may take.
func TransitionsFrom(from models.DocumentStatus, role models.HandlerRole) []TransitionRule {
	out := make([]TransitionRule, 0, 2)
	for _, rule := range transitionRules {
		if rule.From != from {
			continue
		}
		if role != "" && rule.RequiredRole != role {
			continue
		}
		out = append(out, rule)
	}
	return out
}

// TransitionRules returns a copy of the whole table.
func TransitionRules() []TransitionRule {
	out := make([]TransitionRule, len(transitionRules))
	copy(out, transitionRules)
	return out
}

// KnownStatuses returns every status in workflow order.
func KnownStatuses() []models.DocumentStatus {
	return []models.DocumentStatus{
		models.StatusReceived,
		models.StatusSentToRecords,
		models.StatusForwardedToSecretary,
		models.StatusCommentedBySecretary,
		models.StatusSentToChair,
		models.StatusCommentedByChair,
		models.StatusSentToHR,
		models.StatusSentToCommittee,
		models.StatusAgendaSet,
		models.StatusBoardMeeting,
		models.StatusDecisionMade,
		models.StatusDispatched,
		models.StatusFiled,
	}
}
