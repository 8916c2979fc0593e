package utils

import (
	"strings"

	"records-portal-api/models"
)

// Query parameters and request bodies may spell statuses and roles in a few
// ways ("Sent To HR", "sent-to-hr", "records_officer"). Each canonical value
// lists the extra spellings it accepts; the canonical value itself and its
// case/separator variants are always accepted.
var (
	statusSynonyms = map[models.DocumentStatus][]string{
		models.StatusReceived:             {"new", "registered"},
		models.StatusSentToRecords:        {"returned_to_records"},
		models.StatusForwardedToSecretary: {"forwarded", "with_secretary"},
		models.StatusCommentedBySecretary: {"secretary_commented"},
		models.StatusCommentedByChair:     {"chair_commented"},
		models.StatusSentToCommittee:      {"sent_to_board_committee"},
		models.StatusDecisionMade:         {"decided"},
		models.StatusFiled:                {"archived"},
	}
	roleSynonyms = map[string][]string{
		models.RoleRecordsOfficer: {"records", "registry_officer"},
		models.RoleBoardSecretary: {"secretary"},
		models.RoleChiefOfficer:   {"ceo", "chief"},
		models.RoleBoardChair:     {"chair", "chairperson"},
		models.RoleBoardCommittee: {"committee"},
		models.RoleHR:             {"human_resources"},
	}

	statusAliasToCanonical = buildAliasMap(statusCanonicals(), func(s models.DocumentStatus) []string {
		return statusSynonyms[s]
	})
	roleAliasToCanonical = buildAliasMap(roleCanonicals(), func(r string) []string {
		return roleSynonyms[r]
	})
)

func statusCanonicals() []models.DocumentStatus {
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

func roleCanonicals() []string {
	roles := append([]string{}, models.UserRoles...)
	return append(roles, string(models.HandlerInitiator), string(models.HandlerRegistry))
}

func buildAliasMap[T ~string](canonicals []T, synonyms func(T) []string) map[string]T {
	aliasMap := make(map[string]T)
	for _, canonical := range canonicals {
		aliasMap[aliasKey(string(canonical))] = canonical
		for _, alias := range synonyms(canonical) {
			if key := aliasKey(alias); key != "" {
				aliasMap[key] = canonical
			}
		}
	}
	return aliasMap
}

// aliasKey folds case and drops separators so "sentToHR", "sent-to-hr" and
// "Sent To HR" share a key.
func aliasKey(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeStatus maps a user-supplied status to its canonical value.
func NormalizeStatus(value string) (models.DocumentStatus, bool) {
	status, ok := statusAliasToCanonical[aliasKey(value)]
	return status, ok
}

// NormalizeRole maps a user-supplied role or handler name to its canonical value.
func NormalizeRole(value string) (models.HandlerRole, bool) {
	role, ok := roleAliasToCanonical[aliasKey(value)]
	return models.HandlerRole(role), ok
}

func NormalizePriority(value string) (models.DocumentPriority, bool) {
	priority := models.DocumentPriority(strings.ToLower(strings.TrimSpace(value)))
	return priority, priority.Valid()
}
