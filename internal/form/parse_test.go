package form

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/botadmin/pkg/model"
)

func ptr[T any](v T) *T { return &v }

func TestParseUserForm(t *testing.T) {
	v := url.Values{
		"group_id":              {"3"},
		"firstname":             {" Ann "},
		"lastname":              {"Lee"},
		"portobello_id":         {"P-77"},
		"company":               {"Acme"},
		"rating":                {"4,5"},
		"turnover":              {"1200.50"},
		"orders_amount":         {"12"},
		"cashback_amount":       {"30"},
		"golden_tickets_amount": {"2"},
	}
	got, err := ParseUserForm(v)
	require.NoError(t, err)

	want := model.UserInput{
		GroupID:             ptr(int64(3)),
		FirstName:           "Ann",
		LastName:            "Lee",
		PortobelloID:        "P-77",
		Company:             "Acme",
		Rating:              4.5,
		Turnover:            1200.5,
		OrdersAmount:        12,
		CashbackAmount:      30,
		GoldenTicketsAmount: 2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseUserForm mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUserForm_BadNumbers(t *testing.T) {
	_, err := ParseUserForm(url.Values{"orders_amount": {"many"}, "rating": {"high"}})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "orders_amount")
	assert.Contains(t, fe, "rating")
	assert.Equal(t, "invalid form: orders_amount: must be a whole number; rating: must be a number", err.Error())
}

func TestParseGroupForm(t *testing.T) {
	tests := []struct {
		name    string
		v       url.Values
		wantErr string
	}{
		{"valid", url.Values{"name": {"VIP"}, "criterion_rule": {">="}}, ""},
		{"missing name", url.Values{"criterion_rule": {"="}}, "name"},
		{"bad rule", url.Values{"name": {"VIP"}, "criterion_rule": {"!="}}, "criterion_rule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGroupForm(tt.v)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe, tt.wantErr)
		})
	}
}

func TestParseMessageForm(t *testing.T) {
	names := []model.NamePair{{Key: "1", Value: "Start"}, {Key: "2", Value: "Menu"}}
	v := url.Values{
		"name":          {"Catalog"},
		"group_id":      {""},
		"tg_alias_name": {"catalog"},
		"text":          {"Pick one"},
		"parents":       {"1"},
		"childrens":     {"2", "9"},
		"media":         {"https://cdn/a.png", ""},
	}
	got, err := ParseMessageForm(v, names)
	require.NoError(t, err)

	want := model.MessageInput{
		Name:        "Catalog",
		TgAliasName: "catalog",
		Text:        "Pick one",
		Media:       []string{"https://cdn/a.png"},
		Parents:     model.LinkMap{"Start": "1"},
		Childrens:   model.LinkMap{"Menu": "2", "9": "9"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseMessageForm mismatch (-want +got):\n%s", diff)
	}

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"group_id":null`)
	assert.Contains(t, string(b), `"parents":{"Start":1}`)
}

func TestParseActionForm(t *testing.T) {
	got, err := ParseActionForm(url.Values{
		"message_id":  {"4"},
		"action_type": {string(model.ActionCountClicks)},
		"name":        {"clicks"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.MessageID)
	assert.JSONEq(t, `{}`, string(got.Params))

	_, err = ParseActionForm(url.Values{
		"message_id":  {"x"},
		"action_type": {"dance"},
		"params":      {"{not json"},
	})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	for _, k := range []string{"message_id", "action_type", "params", "name"} {
		assert.Contains(t, fe, k)
	}
}

func TestParseBroadcastForm(t *testing.T) {
	got, err := ParseBroadcastForm(url.Values{"group_id": {"1"}, "message_id": {"2"}, "name": {"Promo"}})
	require.NoError(t, err)
	assert.Equal(t, model.BroadcastInput{GroupID: 1, MessageID: 2, Name: "Promo"}, got)

	_, err = ParseBroadcastForm(url.Values{"name": {"Promo"}})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "required", fe["group_id"])
}

func TestParseResponseForm(t *testing.T) {
	got, err := ParseResponseForm(url.Values{
		"user_id":            {"10"},
		"message_id":         {"20"},
		"response_type_name": {"feedback"},
		"text":               {"great"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserResponseInput{UserID: 10, MessageID: 20, ResponseTypeName: "feedback", Text: "great"}, got)
}
