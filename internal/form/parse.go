package form

import (
	"net/url"

	"github.com/me/botadmin/pkg/model"
)

// ParseUserForm decodes the user form.
func ParseUserForm(v url.Values) (model.UserInput, error) {
	f := newFields(v)
	in := model.UserInput{
		GroupID:             f.optionalInt("group_id"),
		FirstName:           f.str("firstname"),
		LastName:            f.str("lastname"),
		Patronymic:          f.str("patronymic"),
		PortobelloID:        f.str("portobello_id"),
		Company:             f.str("company"),
		Rating:              f.float("rating"),
		Turnover:            f.float("turnover"),
		OrdersAmount:        f.int("orders_amount"),
		CashbackAmount:      f.float("cashback_amount"),
		GoldenTicketsAmount: f.int("golden_tickets_amount"),
	}
	return in, f.err()
}

// ParseGroupForm decodes the group form.
func ParseGroupForm(v url.Values) (model.GroupInput, error) {
	f := newFields(v)
	in := model.GroupInput{
		Name:               f.required("name"),
		CriterionField:     f.str("criterion_field"),
		CriterionFieldType: f.str("criterion_field_type"),
		CriterionValue:     f.str("criterion_value"),
		CriterionValueType: f.str("criterion_value_type"),
		CriterionRule:      model.CriterionRule(f.str("criterion_rule")),
	}
	if in.CriterionRule != "" && !in.CriterionRule.IsValid() {
		f.fail("criterion_rule", "unknown rule")
	}
	return in, f.err()
}

// ParseMessageForm decodes the message form. The parents and childrens
// fields carry selected message ids; names resolves them to the
// {name: id} maps the bot API expects.
func ParseMessageForm(v url.Values, names []model.NamePair) (model.MessageInput, error) {
	f := newFields(v)
	in := model.MessageInput{
		GroupID:     f.optionalInt("group_id"),
		Name:        f.required("name"),
		TgAliasName: f.str("tg_alias_name"),
		Text:        f.str("text"),
		Media:       f.list("media"),
		Parents:     LabelMap(f.list("parents"), names),
		Childrens:   LabelMap(f.list("childrens"), names),
	}
	if in.Media == nil {
		in.Media = []string{}
	}
	return in, f.err()
}

// ParseActionForm decodes the action form. params is a JSON object; an
// empty field sends {}.
func ParseActionForm(v url.Values) (model.ActionInput, error) {
	f := newFields(v)
	in := model.ActionInput{
		MessageID:  f.requiredInt("message_id"),
		ActionType: model.ActionType(f.required("action_type")),
		Params:     f.json("params"),
		Name:       f.required("name"),
	}
	if in.ActionType != "" && !in.ActionType.IsValid() {
		f.fail("action_type", "unknown action type")
	}
	return in, f.err()
}

// ParseBroadcastForm decodes the mailing form.
func ParseBroadcastForm(v url.Values) (model.BroadcastInput, error) {
	f := newFields(v)
	in := model.BroadcastInput{
		GroupID:   f.requiredInt("group_id"),
		MessageID: f.requiredInt("message_id"),
		Name:      f.required("name"),
	}
	return in, f.err()
}

// ParseResponseForm decodes the user response form.
func ParseResponseForm(v url.Values) (model.UserResponseInput, error) {
	f := newFields(v)
	in := model.UserResponseInput{
		UserID:           f.requiredInt("user_id"),
		MessageID:        f.requiredInt("message_id"),
		ResponseTypeName: f.str("response_type_name"),
		Text:             f.str("text"),
	}
	return in, f.err()
}
