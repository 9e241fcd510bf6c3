package model

// CriterionRule is the comparison a group criterion applies.
type CriterionRule string

const (
	RuleEqual          CriterionRule = "="
	RuleLess           CriterionRule = "<"
	RuleLessOrEqual    CriterionRule = "<="
	RuleGreater        CriterionRule = ">"
	RuleGreaterOrEqual CriterionRule = ">="
)

// CriterionRules lists every rule in display order.
var CriterionRules = []CriterionRule{
	RuleEqual, RuleLess, RuleLessOrEqual, RuleGreater, RuleGreaterOrEqual,
}

// IsValid reports whether r is a known rule.
func (r CriterionRule) IsValid() bool {
	for _, known := range CriterionRules {
		if r == known {
			return true
		}
	}
	return false
}

// ActionType is the kind of side effect an action performs. The values are
// stored by the bot API verbatim.
type ActionType string

const (
	ActionRegisterUser   ActionType = "Зарегестрировать пользователя"
	ActionCountClicks    ActionType = "Считать количество кликов"
	ActionSupportMessage ActionType = "Отправить сообщение в поддержку"
	ActionSaveResponse   ActionType = "Сохранить ответ пользователя"
)

// ActionTypes lists every action type in display order.
var ActionTypes = []ActionType{
	ActionRegisterUser, ActionCountClicks, ActionSupportMessage, ActionSaveResponse,
}

// IsValid reports whether t is a known action type.
func (t ActionType) IsValid() bool {
	for _, known := range ActionTypes {
		if t == known {
			return true
		}
	}
	return false
}
