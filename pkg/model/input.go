package model

import "encoding/json"

// UserInput is the body written by the user create/edit form.
type UserInput struct {
	GroupID             *int64  `json:"group_id"`
	FirstName           string  `json:"firstname"`
	LastName            string  `json:"lastname"`
	Patronymic          string  `json:"patronymic,omitempty"`
	PortobelloID        string  `json:"portobello_id"`
	Company             string  `json:"company"`
	Rating              float64 `json:"rating"`
	Turnover            float64 `json:"turnover"`
	OrdersAmount        int64   `json:"orders_amount"`
	CashbackAmount      float64 `json:"cashback_amount"`
	GoldenTicketsAmount int64   `json:"golden_tickets_amount"`
}

// MessageInput is the body written by the message create/edit form.
type MessageInput struct {
	GroupID     *int64   `json:"group_id"`
	Parents     LinkMap  `json:"parents"`
	Childrens   LinkMap  `json:"childrens"`
	Name        string   `json:"name"`
	TgAliasName string   `json:"tg_alias_name"`
	Text        string   `json:"text"`
	Media       []string `json:"media"`
}

// GroupInput is the body written by the group create/edit form.
type GroupInput struct {
	Name               string        `json:"name"`
	CriterionField     string        `json:"criterion_field"`
	CriterionFieldType string        `json:"criterion_field_type"`
	CriterionValue     string        `json:"criterion_value"`
	CriterionValueType string        `json:"criterion_value_type"`
	CriterionRule      CriterionRule `json:"criterion_rule"`
}

// ActionInput is the body written by the action create/edit form.
type ActionInput struct {
	MessageID  int64           `json:"message_id"`
	ActionType ActionType      `json:"action_type"`
	Params     json.RawMessage `json:"params"`
	Name       string          `json:"name"`
}

// BroadcastInput is the body written by the mailing create/edit form.
type BroadcastInput struct {
	GroupID   int64  `json:"group_id"`
	MessageID int64  `json:"message_id"`
	Name      string `json:"name"`
}

// UserResponseInput is the body written by the response create/edit form.
type UserResponseInput struct {
	UserID           int64  `json:"user_id"`
	MessageID        int64  `json:"message_id"`
	ResponseTypeName string `json:"response_type_name"`
	Text             string `json:"text"`
}

// Credentials is the login and signup request body.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
