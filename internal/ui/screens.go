package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/me/botadmin/internal/form"
	"github.com/me/botadmin/internal/listview"
	"github.com/me/botadmin/pkg/botapi"
	"github.com/me/botadmin/pkg/model"
)

// field describes one input of an entity form.
type field struct {
	Name     string
	Label    string
	Kind     string // text, textarea, number, select, multi, media, json
	Lookup   string // lookup list feeding select and multi fields
	Required bool
}

// screen is the type-erased surface of one entity screen.
type screen interface {
	Name() string
	Title() string
	Entity() string
	Fields() []field
	Lookups() map[string]form.Lookup
	NewView(logger *slog.Logger, pageSize int) listview.View
	Values(ctx context.Context, id string) (url.Values, error)
	Submit(ctx context.Context, id string, v url.Values, names map[string][]model.NamePair) (string, error)
}

// entityScreen binds a bot API resource of T, edited through input I, to
// its table columns and form.
type entityScreen[T, I any] struct {
	name     string
	title    string
	entity   string
	resource *botapi.Resource[T]
	columns  []listview.Column[T]
	rowID    func(T) string
	filter   string
	fields   []field
	lookups  map[string]form.Lookup
	values   func(T) url.Values
	parse    func(url.Values, map[string][]model.NamePair) (I, error)
	form     *form.Controller[I]
}

func (s *entityScreen[T, I]) Name() string                     { return s.name }
func (s *entityScreen[T, I]) Title() string                    { return s.title }
func (s *entityScreen[T, I]) Entity() string                   { return s.entity }
func (s *entityScreen[T, I]) Fields() []field                  { return s.fields }
func (s *entityScreen[T, I]) Lookups() map[string]form.Lookup { return s.lookups }

func (s *entityScreen[T, I]) NewView(logger *slog.Logger, pageSize int) listview.View {
	return listview.New(listview.Options[T]{
		Screen:       s.name,
		Source:       s.resource,
		Deleter:      s.resource,
		Columns:      s.columns,
		RowID:        s.rowID,
		FilterColumn: s.filter,
		PageSize:     pageSize,
		Logger:       logger,
	})
}

func (s *entityScreen[T, I]) Values(ctx context.Context, id string) (url.Values, error) {
	entity, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.values(*entity), nil
}

func (s *entityScreen[T, I]) Submit(ctx context.Context, id string, v url.Values, names map[string][]model.NamePair) (string, error) {
	in, err := s.parse(v, names)
	if err != nil {
		return "", err
	}
	return s.form.Submit(ctx, id, in)
}

// staticLookup serves a fixed vocabulary through the same path as remote
// name lists.
type staticLookup []model.NamePair

func (l staticLookup) Names(context.Context) ([]model.NamePair, error) {
	return l, nil
}

type lookupFunc func(ctx context.Context) ([]model.NamePair, error)

func (f lookupFunc) Names(ctx context.Context) ([]model.NamePair, error) {
	return f(ctx)
}

// userLookupLimit bounds the user selector; the bot API has no user name list.
const userLookupLimit = 100

func userLookup(users *botapi.Resource[model.User]) form.Lookup {
	return lookupFunc(func(ctx context.Context) ([]model.NamePair, error) {
		page, err := users.List(ctx, 1, userLookupLimit)
		if err != nil {
			return nil, err
		}
		pairs := make([]model.NamePair, 0, len(page.Data))
		for _, u := range page.Data {
			label := strings.TrimSpace(u.FirstName + " " + u.LastName)
			if label == "" {
				label = strconv.FormatInt(u.ID, 10)
			}
			pairs = append(pairs, model.NamePair{Key: model.Key(strconv.FormatInt(u.ID, 10)), Value: label})
		}
		return pairs, nil
	})
}

func ruleLookup() form.Lookup {
	pairs := make(staticLookup, 0, len(model.CriterionRules))
	for _, r := range model.CriterionRules {
		pairs = append(pairs, model.NamePair{Key: model.Key(r), Value: string(r)})
	}
	return pairs
}

func actionTypeLookup() form.Lookup {
	pairs := make(staticLookup, 0, len(model.ActionTypes))
	for _, t := range model.ActionTypes {
		pairs = append(pairs, model.NamePair{Key: model.Key(t), Value: string(t)})
	}
	return pairs
}

func dateColumn[T any](key, title string, value func(T) model.Timestamp) listview.Column[T] {
	return listview.Column[T]{
		Key:      key,
		Title:    title,
		Value:    func(t T) string { return value(t).Date() },
		Compare:  func(a, b T) int { return value(a).Compare(value(b).Time) },
		Sortable: true,
	}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optItoa(n *int64) string {
	if n == nil {
		return ""
	}
	return itoa(*n)
}

// buildScreens wires every entity screen to the bot API. observe receives
// the outcome of every form submit.
func buildScreens(client *botapi.Client, observe form.Observer, logger *slog.Logger) []screen {
	users := botapi.Users(client)
	messages := botapi.Messages(client)
	groups := botapi.Groups(client)
	actions := botapi.Actions(client)
	broadcasts := botapi.Broadcasts(client)
	responses := botapi.UserResponses(client)

	listURL := func(name string) string { return "/" + name }

	return []screen{
		&entityScreen[model.User, model.UserInput]{
			name:     "users",
			entity:   "user",
			title:    "Users",
			resource: users,
			columns: []listview.Column[model.User]{
				listview.Int("id", "ID", func(u model.User) int64 { return u.ID }),
				listview.Text("firstname", "First name", func(u model.User) string { return u.FirstName }),
				listview.Text("lastname", "Last name", func(u model.User) string { return u.LastName }),
				listview.Text("portobello_id", "Internal code", func(u model.User) string { return u.PortobelloID }),
				listview.Text("company", "Company", func(u model.User) string { return u.Company }),
				listview.Float("rating", "Rating", func(u model.User) float64 { return u.Rating }),
				listview.Float("turnover", "Turnover", func(u model.User) float64 { return u.Turnover }),
				listview.Int("orders_amount", "Orders", func(u model.User) int64 { return u.OrdersAmount }),
				dateColumn("created_at", "Created", func(u model.User) model.Timestamp { return u.CreatedAt }),
				dateColumn("updated_at", "Updated", func(u model.User) model.Timestamp { return u.UpdatedAt }),
			},
			rowID:  func(u model.User) string { return itoa(u.ID) },
			filter: "firstname",
			fields: []field{
				{Name: "group_id", Label: "Group", Kind: "select", Lookup: "groups"},
				{Name: "firstname", Label: "First name", Kind: "text"},
				{Name: "lastname", Label: "Last name", Kind: "text"},
				{Name: "patronymic", Label: "Patronymic", Kind: "text"},
				{Name: "portobello_id", Label: "Internal code", Kind: "text"},
				{Name: "company", Label: "Company", Kind: "text"},
				{Name: "rating", Label: "Rating", Kind: "number"},
				{Name: "turnover", Label: "Turnover", Kind: "number"},
				{Name: "orders_amount", Label: "Orders", Kind: "number"},
				{Name: "cashback_amount", Label: "Cashback", Kind: "number"},
				{Name: "golden_tickets_amount", Label: "Golden tickets", Kind: "number"},
			},
			lookups: map[string]form.Lookup{"groups": groups},
			values: func(u model.User) url.Values {
				return url.Values{
					"group_id":              {optItoa(u.GroupID)},
					"firstname":             {u.FirstName},
					"lastname":              {u.LastName},
					"patronymic":            {u.Patronymic},
					"portobello_id":         {u.PortobelloID},
					"company":               {u.Company},
					"rating":                {ftoa(u.Rating)},
					"turnover":              {ftoa(u.Turnover)},
					"orders_amount":         {itoa(u.OrdersAmount)},
					"cashback_amount":       {ftoa(u.CashbackAmount)},
					"golden_tickets_amount": {itoa(u.GoldenTicketsAmount)},
				}
			},
			parse: func(v url.Values, _ map[string][]model.NamePair) (model.UserInput, error) {
				return form.ParseUserForm(v)
			},
			form: form.NewController[model.UserInput]("user", users, listURL("users"), logger).Observe(observe),
		},
		&entityScreen[model.Message, model.MessageInput]{
			name:     "messages",
			entity:   "message",
			title:    "Messages",
			resource: messages,
			columns: []listview.Column[model.Message]{
				listview.Int("id", "ID", func(m model.Message) int64 { return m.ID }),
				listview.Text("name", "Name", func(m model.Message) string { return m.Name }),
				listview.Text("group_name", "Group", func(m model.Message) string { return m.GroupName }),
				listview.Int("click_amount", "Clicks", func(m model.Message) int64 { return m.ClickAmount }),
				listview.Int("uclick_amount", "Unique clicks", func(m model.Message) int64 { return m.UClickAmount }),
				dateColumn("created_at", "Created", func(m model.Message) model.Timestamp { return m.CreatedAt }),
				dateColumn("updated_at", "Updated", func(m model.Message) model.Timestamp { return m.UpdatedAt }),
			},
			rowID:  func(m model.Message) string { return itoa(m.ID) },
			filter: "name",
			fields: []field{
				{Name: "name", Label: "Name", Kind: "text", Required: true},
				{Name: "group_id", Label: "Group", Kind: "select", Lookup: "groups"},
				{Name: "tg_alias_name", Label: "Telegram alias", Kind: "text"},
				{Name: "text", Label: "Text", Kind: "textarea"},
				{Name: "media", Label: "Media", Kind: "media"},
				{Name: "parents", Label: "Parents", Kind: "multi", Lookup: "messages"},
				{Name: "childrens", Label: "Children", Kind: "multi", Lookup: "messages"},
			},
			lookups: map[string]form.Lookup{"groups": groups, "messages": messages},
			values: func(m model.Message) url.Values {
				return url.Values{
					"name":          {m.Name},
					"group_id":      {optItoa(m.GroupID)},
					"tg_alias_name": {m.TgAliasName},
					"text":          {m.Text},
					"media":         m.Media,
					"parents":       form.LinkKeys(m.Parents),
					"childrens":     form.LinkKeys(m.Childrens),
				}
			},
			parse: func(v url.Values, names map[string][]model.NamePair) (model.MessageInput, error) {
				return form.ParseMessageForm(v, names["messages"])
			},
			form: form.NewController[model.MessageInput]("message", messages, listURL("messages"), logger).Observe(observe),
		},
		&entityScreen[model.Action, model.ActionInput]{
			name:     "actions",
			entity:   "action",
			title:    "Actions",
			resource: actions,
			columns: []listview.Column[model.Action]{
				listview.Int("id", "ID", func(a model.Action) int64 { return a.ID }),
				listview.Text("name", "Name", func(a model.Action) string { return a.Name }),
				listview.Int("message_id", "Message", func(a model.Action) int64 { return a.MessageID }),
				listview.Text("action_type", "Type", func(a model.Action) string { return string(a.ActionType) }),
				dateColumn("created_at", "Created", func(a model.Action) model.Timestamp { return a.CreatedAt }),
				dateColumn("updated_at", "Updated", func(a model.Action) model.Timestamp { return a.UpdatedAt }),
			},
			rowID:  func(a model.Action) string { return itoa(a.ID) },
			filter: "name",
			fields: []field{
				{Name: "name", Label: "Name", Kind: "text", Required: true},
				{Name: "message_id", Label: "Message", Kind: "select", Lookup: "messages", Required: true},
				{Name: "action_type", Label: "Type", Kind: "select", Lookup: "action_types", Required: true},
				{Name: "params", Label: "Params (JSON)", Kind: "json"},
			},
			lookups: map[string]form.Lookup{"messages": messages, "action_types": actionTypeLookup()},
			values: func(a model.Action) url.Values {
				return url.Values{
					"name":        {a.Name},
					"message_id":  {itoa(a.MessageID)},
					"action_type": {string(a.ActionType)},
					"params":      {string(a.Params)},
				}
			},
			parse: func(v url.Values, _ map[string][]model.NamePair) (model.ActionInput, error) {
				return form.ParseActionForm(v)
			},
			form: form.NewController[model.ActionInput]("action", actions, listURL("actions"), logger).Observe(observe),
		},
		&entityScreen[model.Broadcast, model.BroadcastInput]{
			name:     "mailings",
			entity:   "broadcast",
			title:    "Mailings",
			resource: broadcasts,
			columns: []listview.Column[model.Broadcast]{
				listview.Int("id", "ID", func(b model.Broadcast) int64 { return b.ID }),
				listview.Text("name", "Name", func(b model.Broadcast) string { return b.Name }),
				dateColumn("start_date", "Start", func(b model.Broadcast) model.Timestamp { return b.StartDate }),
				dateColumn("end_date", "End", func(b model.Broadcast) model.Timestamp { return b.EndDate }),
				listview.Text("status", "Status", func(b model.Broadcast) string { return b.Status }),
				listview.Int("planned_amount", "Planned", func(b model.Broadcast) int64 { return b.PlannedAmount }),
				listview.Int("success_amount", "Delivered", func(b model.Broadcast) int64 { return b.SuccessAmount }),
				dateColumn("created_at", "Created", func(b model.Broadcast) model.Timestamp { return b.CreatedAt }),
				dateColumn("updated_at", "Updated", func(b model.Broadcast) model.Timestamp { return b.UpdatedAt }),
			},
			rowID:  func(b model.Broadcast) string { return itoa(b.ID) },
			filter: "name",
			fields: []field{
				{Name: "name", Label: "Name", Kind: "text", Required: true},
				{Name: "group_id", Label: "Group", Kind: "select", Lookup: "groups", Required: true},
				{Name: "message_id", Label: "Message", Kind: "select", Lookup: "messages", Required: true},
			},
			lookups: map[string]form.Lookup{"groups": groups, "messages": messages},
			values: func(b model.Broadcast) url.Values {
				return url.Values{
					"name":       {b.Name},
					"group_id":   {itoa(b.GroupID)},
					"message_id": {itoa(b.MessageID)},
				}
			},
			parse: func(v url.Values, _ map[string][]model.NamePair) (model.BroadcastInput, error) {
				return form.ParseBroadcastForm(v)
			},
			form: form.NewController[model.BroadcastInput]("broadcast", broadcasts, listURL("mailings"), logger).Observe(observe),
		},
		&entityScreen[model.Group, model.GroupInput]{
			name:     "groups",
			entity:   "group",
			title:    "Groups",
			resource: groups,
			columns: []listview.Column[model.Group]{
				listview.Int("id", "ID", func(g model.Group) int64 { return g.ID }),
				listview.Text("name", "Name", func(g model.Group) string { return g.Name }),
				listview.Text("criterion_rule", "Rule", func(g model.Group) string {
					if g.CriterionField == "" {
						return string(g.CriterionRule)
					}
					return fmt.Sprintf("%s %s %s", g.CriterionField, g.CriterionRule, g.CriterionValue)
				}),
				dateColumn("created_at", "Created", func(g model.Group) model.Timestamp { return g.CreatedAt }),
				dateColumn("updated_at", "Updated", func(g model.Group) model.Timestamp { return g.UpdatedAt }),
			},
			rowID:  func(g model.Group) string { return itoa(g.ID) },
			filter: "name",
			fields: []field{
				{Name: "name", Label: "Name", Kind: "text", Required: true},
				{Name: "criterion_field", Label: "Criterion field", Kind: "text"},
				{Name: "criterion_field_type", Label: "Field type", Kind: "text"},
				{Name: "criterion_rule", Label: "Rule", Kind: "select", Lookup: "rules"},
				{Name: "criterion_value", Label: "Criterion value", Kind: "text"},
				{Name: "criterion_value_type", Label: "Value type", Kind: "text"},
			},
			lookups: map[string]form.Lookup{"rules": ruleLookup()},
			values: func(g model.Group) url.Values {
				return url.Values{
					"name":                 {g.Name},
					"criterion_field":      {g.CriterionField},
					"criterion_field_type": {g.CriterionFieldType},
					"criterion_rule":       {string(g.CriterionRule)},
					"criterion_value":      {g.CriterionValue},
					"criterion_value_type": {g.CriterionValueType},
				}
			},
			parse: func(v url.Values, _ map[string][]model.NamePair) (model.GroupInput, error) {
				return form.ParseGroupForm(v)
			},
			form: form.NewController[model.GroupInput]("group", groups, listURL("groups"), logger).Observe(observe),
		},
		&entityScreen[model.UserResponse, model.UserResponseInput]{
			name:     "responses",
			entity:   "user_response",
			title:    "Responses",
			resource: responses,
			columns: []listview.Column[model.UserResponse]{
				listview.Int("id", "ID", func(r model.UserResponse) int64 { return r.ID }),
				listview.Text("user", "User", func(r model.UserResponse) string {
					if r.UserName != "" {
						return r.UserName
					}
					return itoa(r.UserID)
				}),
				listview.Text("message", "Message", func(r model.UserResponse) string {
					if r.MessageName != "" {
						return r.MessageName
					}
					return itoa(r.MessageID)
				}),
				listview.Text("response_type_name", "Response type", func(r model.UserResponse) string { return r.ResponseTypeName }),
				listview.Text("text", "Response", func(r model.UserResponse) string { return r.Text }),
				dateColumn("created_at", "Created", func(r model.UserResponse) model.Timestamp { return r.CreatedAt }),
				dateColumn("updated_at", "Updated", func(r model.UserResponse) model.Timestamp { return r.UpdatedAt }),
			},
			rowID:  func(r model.UserResponse) string { return itoa(r.ID) },
			filter: "user",
			fields: []field{
				{Name: "user_id", Label: "User", Kind: "select", Lookup: "users", Required: true},
				{Name: "message_id", Label: "Message", Kind: "select", Lookup: "messages", Required: true},
				{Name: "response_type_name", Label: "Response type", Kind: "text"},
				{Name: "text", Label: "Response", Kind: "textarea"},
			},
			lookups: map[string]form.Lookup{"users": userLookup(users), "messages": messages},
			values: func(r model.UserResponse) url.Values {
				return url.Values{
					"user_id":            {itoa(r.UserID)},
					"message_id":         {itoa(r.MessageID)},
					"response_type_name": {r.ResponseTypeName},
					"text":               {r.Text},
				}
			},
			parse: func(v url.Values, _ map[string][]model.NamePair) (model.UserResponseInput, error) {
				return form.ParseResponseForm(v)
			},
			form: form.NewController[model.UserResponseInput]("user_response", responses, listURL("responses"), logger).Observe(observe),
		},
	}
}

// fieldView is a field with the values and options to render.
type fieldView struct {
	field
	Value   string
	Values  []string
	Options []form.Option
}

func fieldViews(fields []field, values url.Values, names map[string][]model.NamePair) []fieldView {
	views := make([]fieldView, 0, len(fields))
	for _, f := range fields {
		fv := fieldView{field: f, Value: values.Get(f.Name), Values: values[f.Name]}
		if f.Lookup != "" {
			fv.Options = form.Options(names[f.Lookup], fv.Values...)
		}
		views = append(views, fv)
	}
	return views
}
