package model

import "encoding/json"

// User is a bot user as stored by the bot API.
type User struct {
	ID                  int64     `json:"id"`
	FirstName           string    `json:"firstname"`
	LastName            string    `json:"lastname"`
	Patronymic          string    `json:"patronymic,omitempty"`
	PortobelloID        string    `json:"portobello_id"`
	Company             string    `json:"company"`
	Rating              float64   `json:"rating"`
	Turnover            float64   `json:"turnover"`
	OrdersAmount        int64     `json:"orders_amount"`
	CashbackAmount      float64   `json:"cashback_amount"`
	GoldenTicketsAmount int64     `json:"golden_tickets_amount"`
	GroupID             *int64    `json:"group_id,omitempty"`
	CreatedAt           Timestamp `json:"created_at"`
	UpdatedAt           Timestamp `json:"updated_at"`
}

// Message is a bot message node. Parents and Childrens link it into the
// conversation tree by message name.
type Message struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	GroupID      *int64    `json:"group_id,omitempty"`
	GroupName    string    `json:"group_name,omitempty"`
	TgAliasName  string    `json:"tg_alias_name"`
	Text         string    `json:"text"`
	Media        []string  `json:"media"`
	Parents      LinkMap   `json:"parents"`
	Childrens    LinkMap   `json:"childrens"`
	ClickAmount  int64     `json:"click_amount"`
	UClickAmount int64     `json:"uclick_amount"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

// Group is a user segment selected by a single criterion.
type Group struct {
	ID                 int64         `json:"id"`
	Name               string        `json:"name"`
	CriterionField     string        `json:"criterion_field"`
	CriterionFieldType string        `json:"criterion_field_type"`
	CriterionValue     string        `json:"criterion_value"`
	CriterionValueType string        `json:"criterion_value_type"`
	CriterionRule      CriterionRule `json:"criterion_rule"`
	CreatedAt          Timestamp     `json:"created_at"`
	UpdatedAt          Timestamp     `json:"updated_at"`
}

// Action is a side effect bound to a message.
type Action struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	MessageID  int64           `json:"message_id"`
	ActionType ActionType      `json:"action_type"`
	Params     json.RawMessage `json:"params,omitempty"`
	CreatedAt  Timestamp       `json:"created_at"`
	UpdatedAt  Timestamp       `json:"updated_at"`
}

// Broadcast is a mailing of one message to one group.
type Broadcast struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	GroupID       int64     `json:"group_id"`
	MessageID     int64     `json:"message_id"`
	StartDate     Timestamp `json:"start_date"`
	EndDate       Timestamp `json:"end_date"`
	Status        string    `json:"status"`
	PlannedAmount int64     `json:"planned_amount"`
	SuccessAmount int64     `json:"success_amount"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
}

// UserResponse is a free-text answer a user gave to a message.
type UserResponse struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	MessageID        int64     `json:"message_id"`
	UserName         string    `json:"user_name,omitempty"`
	MessageName      string    `json:"message_name,omitempty"`
	ResponseTypeName string    `json:"response_type_name"`
	Text             string    `json:"text"`
	CreatedAt        Timestamp `json:"created_at"`
	UpdatedAt        Timestamp `json:"updated_at"`
}
