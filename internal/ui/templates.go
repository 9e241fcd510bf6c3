package ui

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"statusColor": func(status string) string {
		if status == "ok" {
			return "bg-green-100 text-green-800"
		}
		return "bg-red-100 text-red-800"
	},
	"add": func(a, b int) int {
		return a + b
	},
	"sub": func(a, b int) int {
		return a - b
	},
	"truncate": func(s string, n int) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n]) + "..."
	},
	"sortDesc": func(current, key string, desc bool) string {
		// Clicking the active ascending column flips it to descending.
		if current == key && !desc {
			return "1"
		}
		return "0"
	},
	"sortMark": func(current, key string, desc bool) string {
		switch {
		case current != key:
			return ""
		case desc:
			return " ▼"
		default:
			return " ▲"
		}
	},
	"fieldError": func(errs map[string]string, name string) string {
		return errs[name]
	},
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			m[k] = kv[i+1]
		}
		return m, nil
	},
}

// parseComponents adds the shared fragments to tmpl.
func parseComponents(tmpl *template.Template) error {
	for name, content := range templates {
		if !strings.HasPrefix(name, "components/") {
			continue
		}
		if _, err := tmpl.New(strings.TrimPrefix(name, "components/")).Parse(content); err != nil {
			return fmt.Errorf("parse component %s: %w", name, err)
		}
	}
	return nil
}

// renderTemplate renders a page inside the layout.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if _, err := tmpl.New("content").Parse(content); err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	if err := parseComponents(tmpl); err != nil {
		return err
	}

	return tmpl.Execute(w, data)
}

// renderComponent renders a single fragment without the layout, for HTMX
// swaps.
func renderComponent(w io.Writer, name string, data map[string]any) error {
	tmpl := template.New("fragments").Funcs(templateFuncs)
	if err := parseComponents(tmpl); err != nil {
		return err
	}
	if tmpl.Lookup(name) == nil {
		return fmt.Errorf("fragment not found: %s", name)
	}
	return tmpl.ExecuteTemplate(w, name, data)
}

// templates holds all template content.
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <script src="https://cdn.tailwindcss.com"></script>
    <style>
        .htmx-indicator { display: none; }
        .htmx-request .htmx-indicator { display: inline-block; }
        .htmx-request.htmx-indicator { display: inline-block; }
    </style>
</head>
<body class="bg-gray-50 min-h-screen">
    {{if .Session}}
    <nav class="bg-white shadow-sm border-b">
        <div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">
            <div class="flex justify-between h-16">
                <div class="flex">
                    <a href="/" class="flex items-center px-2 py-2 text-xl font-bold text-indigo-600">
                        Bot Admin
                    </a>
                    <div class="hidden sm:ml-6 sm:flex sm:space-x-8">
                        {{range .Screens}}
                        <a href="/{{.Name}}" class="border-transparent text-gray-500 hover:border-gray-300 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">
                            {{.Title}}
                        </a>
                        {{end}}
                        <a href="/audit" class="border-transparent text-gray-500 hover:border-gray-300 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">
                            Audit
                        </a>
                    </div>
                </div>
                <div class="flex items-center">
                    <span class="text-sm text-gray-500 mr-4">{{.Session.Username}}</span>
                    <a href="/logout" class="text-sm text-gray-500 hover:text-gray-700">Logout</a>
                </div>
            </div>
        </div>
    </nav>
    {{end}}

    <main class="max-w-7xl mx-auto py-6 sm:px-6 lg:px-8">
        {{template "content" .}}
    </main>
</body>
</html>`,

	"login": `{{define "content"}}
<div class="min-h-screen flex items-center justify-center bg-gray-50 py-12 px-4 sm:px-6 lg:px-8">
    <div class="max-w-md w-full space-y-8">
        <div>
            <h2 class="mt-6 text-center text-3xl font-extrabold text-gray-900">Bot Admin</h2>
            <p class="mt-2 text-center text-sm text-gray-600">Sign in with your bot API account</p>
        </div>
        {{if .Error}}
        <div class="rounded-md bg-red-50 p-4">
            <div class="text-sm text-red-700">{{.Error}}</div>
        </div>
        {{end}}
        <form class="mt-8 space-y-6" action="/login" method="POST">
            <div class="rounded-md shadow-sm -space-y-px">
                <input id="email" name="email" type="email" required
                       class="appearance-none rounded-none relative block w-full px-3 py-2 border border-gray-300 placeholder-gray-500 text-gray-900 rounded-t-md focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm"
                       placeholder="Email">
                <input id="password" name="password" type="password" required
                       class="appearance-none rounded-none relative block w-full px-3 py-2 border border-gray-300 placeholder-gray-500 text-gray-900 rounded-b-md focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm"
                       placeholder="Password">
            </div>
            <button type="submit"
                    class="w-full flex justify-center py-2 px-4 border border-transparent text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700">
                Sign in
            </button>
        </form>
        <details class="bg-white shadow rounded-md p-4">
            <summary class="text-sm text-gray-600 cursor-pointer">Create an account</summary>
            <form class="mt-4 space-y-3" action="/signup" method="POST">
                <input name="name" type="text" required placeholder="Name" class="block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                <input name="email" type="email" required placeholder="Email" class="block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                <input name="password" type="password" required placeholder="Password" class="block w-full px-3 py-2 border border-gray-300 rounded-md sm:text-sm">
                <button type="submit" class="w-full py-2 px-4 text-sm font-medium rounded-md text-indigo-700 bg-indigo-100 hover:bg-indigo-200">
                    Sign up
                </button>
            </form>
        </details>
    </div>
</div>
{{end}}`,

	"dashboard": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="mb-8">
        <h1 class="text-2xl font-semibold text-gray-900">Dashboard</h1>
        <p class="mt-1 text-sm text-gray-500">Welcome back, {{.Session.Username}}</p>
    </div>

    <div class="grid grid-cols-1 gap-5 sm:grid-cols-2 lg:grid-cols-3 mb-8">
        {{range .Screens}}
        <a href="/{{.Name}}" class="bg-white overflow-hidden shadow rounded-lg p-5 hover:bg-gray-50">
            <p class="text-lg font-semibold text-gray-900">{{.Title}}</p>
            <p class="mt-1 text-sm text-indigo-600">Open list &rarr;</p>
        </a>
        {{end}}
    </div>

    <div class="bg-white shadow sm:rounded-lg">
        <div class="px-4 py-5 sm:px-6 flex justify-between">
            <h3 class="text-lg leading-6 font-medium text-gray-900">Recent changes</h3>
            <a href="/audit" class="text-sm text-indigo-600 hover:text-indigo-500">View all</a>
        </div>
        {{template "audit_table" .}}
    </div>

    <p class="mt-6 text-xs text-gray-400">Up {{.Uptime}} · {{.Views}} open list views</p>
</div>
{{end}}`,

	"audit": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">Audit log</h1>
    <div class="bg-white shadow sm:rounded-lg">
        {{template "audit_table" .}}
    </div>
</div>
{{end}}`,

	"error": `{{define "content"}}
<div class="min-h-screen flex items-center justify-center">
    <div class="text-center">
        <h1 class="text-4xl font-bold text-gray-900 mb-4">Error</h1>
        <p class="text-gray-600 mb-2">{{.Message}}</p>
        {{if .Detail}}<p class="text-sm text-gray-400 mb-8">{{.Detail}}</p>{{end}}
        <a href="/" class="text-indigo-600 hover:text-indigo-500">Return to Dashboard</a>
    </div>
</div>
{{end}}`,

	"list": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="flex justify-between items-center mb-6">
        <h1 class="text-2xl font-semibold text-gray-900">{{.Screen.Title}}</h1>
        <a href="/{{.Screen.Name}}/new" class="inline-flex items-center px-4 py-2 border border-transparent text-sm font-medium rounded-md shadow-sm text-white bg-indigo-600 hover:bg-indigo-700">
            Create
        </a>
    </div>

    <div class="mb-4 flex items-center">
        <input type="search" name="q" value="{{.View.FilterText}}"
               placeholder="Filter by {{.View.FilterColumn}}..."
               hx-get="/{{.Screen.Name}}/table"
               hx-trigger="input changed delay:300ms, search"
               hx-target="#table"
               hx-swap="outerHTML"
               class="block w-full max-w-sm px-3 py-2 border border-gray-300 rounded-md text-sm">
        <span class="htmx-indicator ml-3 text-sm text-gray-400">Loading...</span>
    </div>

    {{template "table" .}}
</div>
{{end}}`,

	"form": `{{define "content"}}
<div class="px-4 py-6 sm:px-0 max-w-2xl">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">
        {{if .ID}}Edit {{.Screen.Entity}} #{{.ID}}{{else}}New {{.Screen.Entity}}{{end}}
    </h1>

    {{if .Error}}
    <div class="rounded-md bg-red-50 p-4 mb-6">
        <div class="text-sm text-red-700">{{.Error}}</div>
    </div>
    {{end}}

    <form method="POST" action="/{{.Screen.Name}}/{{if .ID}}{{.ID}}{{else}}new{{end}}" class="bg-white shadow rounded-lg p-6 space-y-5">
        {{$errs := .FieldErrors}}
        {{range .Fields}}
        <div>
            <label for="{{.Name}}" class="block text-sm font-medium text-gray-700">{{.Label}}</label>
            {{if eq .Kind "textarea"}}
            <textarea id="{{.Name}}" name="{{.Name}}" rows="5" class="mt-1 block w-full border border-gray-300 rounded-md px-3 py-2 text-sm">{{.Value}}</textarea>
            {{else if eq .Kind "json"}}
            <textarea id="{{.Name}}" name="{{.Name}}" rows="4" placeholder="{}" class="mt-1 block w-full border border-gray-300 rounded-md px-3 py-2 font-mono text-sm">{{.Value}}</textarea>
            {{else if eq .Kind "select"}}
            <select id="{{.Name}}" name="{{.Name}}" {{if .Required}}required{{end}} class="mt-1 block w-full border border-gray-300 rounded-md px-3 py-2 text-sm">
                <option value="">-</option>
                {{range .Options}}<option value="{{.Value}}" {{if .Selected}}selected{{end}}>{{.Label}}</option>{{end}}
            </select>
            {{else if eq .Kind "multi"}}
            <select id="{{.Name}}" name="{{.Name}}" multiple size="6" class="mt-1 block w-full border border-gray-300 rounded-md px-3 py-2 text-sm">
                {{range .Options}}<option value="{{.Value}}" {{if .Selected}}selected{{end}}>{{.Label}}</option>{{end}}
            </select>
            {{else if eq .Kind "media"}}
            <ul id="media-list" class="mt-1 space-y-2">
                {{range .Values}}{{template "media_item" (dict "URL" .)}}{{end}}
            </ul>
            <input type="file" name="image" accept="image/*"
                   hx-post="/messages/media"
                   hx-encoding="multipart/form-data"
                   hx-target="#media-list"
                   hx-swap="beforeend"
                   class="mt-2 text-sm">
            {{else}}
            <input id="{{.Name}}" name="{{.Name}}" type="text" {{if eq .Kind "number"}}inputmode="decimal"{{end}} value="{{.Value}}" {{if .Required}}required{{end}}
                   class="mt-1 block w-full border border-gray-300 rounded-md px-3 py-2 text-sm">
            {{end}}
            {{with fieldError $errs .Name}}<p class="mt-1 text-xs text-red-600">{{.}}</p>{{end}}
        </div>
        {{end}}
        <div class="flex justify-end space-x-3">
            <a href="/{{.Screen.Name}}" class="px-4 py-2 border border-gray-300 text-sm rounded-md text-gray-700 bg-white hover:bg-gray-50">Cancel</a>
            <button type="submit" class="px-4 py-2 text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700">Save</button>
        </div>
    </form>
</div>
{{end}}`,

	"components/table": `{{define "table"}}
<div id="table">
    {{if .Error}}
    <div class="rounded-md bg-red-50 p-3 mb-3 text-sm text-red-700">{{.Error}}</div>
    {{end}}
    {{if .View.Err}}
    <div class="rounded-md bg-yellow-50 p-3 mb-3 text-sm text-yellow-800">
        Could not load page {{.View.PageNumber}}: {{.View.Err}}
        <button hx-get="/{{.Screen.Name}}/table?page={{.View.PageNumber}}" hx-target="#table" hx-swap="outerHTML" class="ml-2 underline">Retry</button>
    </div>
    {{end}}
    <div class="bg-white shadow overflow-x-auto sm:rounded-md">
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    {{$view := .View}}{{$name := .Screen.Name}}
                    {{range .View.Columns}}
                    <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">
                        {{if .Sortable}}
                        <a href="#" hx-get="/{{$name}}/table?sort={{.Key}}&desc={{sortDesc $view.SortKey .Key $view.SortDesc}}" hx-target="#table" hx-swap="outerHTML">
                            {{.Title}}{{sortMark $view.SortKey .Key $view.SortDesc}}
                        </a>
                        {{else}}{{.Title}}{{end}}
                    </th>
                    {{end}}
                    <th class="px-4 py-3"></th>
                </tr>
            </thead>
            <tbody class="divide-y divide-gray-200">
                {{range .View.Rows}}
                <tr id="row-{{.ID}}" class="hover:bg-gray-50">
                    {{range .Cells}}<td class="px-4 py-3 text-sm text-gray-700">{{truncate . 60}}</td>{{end}}
                    <td class="px-4 py-3 text-right whitespace-nowrap">
                        <a href="/{{$name}}/{{.ID}}" class="text-xs text-indigo-600 hover:text-indigo-500 mr-3">Edit</a>
                        {{if $view.Deletable}}
                        <button hx-delete="/{{$name}}/{{.ID}}"
                                hx-target="#table"
                                hx-swap="outerHTML"
                                hx-confirm="Delete #{{.ID}}?"
                                class="text-xs text-red-600 hover:text-red-500">
                            Delete
                        </button>
                        {{end}}
                    </td>
                </tr>
                {{else}}
                <tr>
                    <td colspan="{{add (len .View.Columns) 1}}" class="px-4 py-8 text-center text-gray-500">
                        {{if .View.Loaded}}No rows match the filter.{{else}}Nothing here yet.{{end}}
                    </td>
                </tr>
                {{end}}
            </tbody>
        </table>
    </div>

    <div class="mt-4 flex justify-between items-center">
        {{if .View.HasPrev}}
        <button hx-get="/{{$name}}/table?page={{.View.PrevPage}}" hx-target="#table" hx-swap="outerHTML"
                class="px-4 py-2 border border-gray-300 text-sm font-medium rounded-md text-gray-700 bg-white hover:bg-gray-50">Previous</button>
        {{else}}<span></span>{{end}}
        <div class="space-x-1">
            {{range .View.Pages}}
            <button hx-get="/{{$name}}/table?page={{.}}" hx-target="#table" hx-swap="outerHTML"
                    class="px-3 py-1 text-sm rounded {{if eq . $view.PageNumber}}bg-indigo-600 text-white{{else}}text-gray-700 hover:bg-gray-100{{end}}">{{.}}</button>
            {{end}}
            <span class="ml-2 text-sm text-gray-500">of {{.View.TotalPages}}</span>
        </div>
        {{if .View.HasNext}}
        <button hx-get="/{{$name}}/table?page={{.View.NextPage}}" hx-target="#table" hx-swap="outerHTML"
                class="px-4 py-2 border border-gray-300 text-sm font-medium rounded-md text-gray-700 bg-white hover:bg-gray-50">Next</button>
        {{else}}<span></span>{{end}}
    </div>
</div>
{{end}}`,

	"components/audit_table": `{{define "audit_table"}}
<table class="min-w-full divide-y divide-gray-200">
    <tbody class="divide-y divide-gray-200">
        {{range .Audit}}
        <tr>
            <td class="px-4 py-2 text-sm text-gray-500 whitespace-nowrap">{{formatTime .CreatedAt}}</td>
            <td class="px-4 py-2 text-sm text-gray-700">{{.Username}}</td>
            <td class="px-4 py-2 text-sm text-gray-700">{{.Action}} {{.Entity}}{{if .EntityID}} #{{.EntityID}}{{end}}</td>
            <td class="px-4 py-2 text-sm">
                <span class="inline-flex px-2 py-0.5 rounded text-xs font-medium {{statusColor .Status}}">{{truncate .Status 80}}</span>
            </td>
        </tr>
        {{else}}
        <tr><td class="px-4 py-6 text-center text-sm text-gray-500">No changes recorded yet.</td></tr>
        {{end}}
    </tbody>
</table>
{{end}}`,

	"components/media_item": `{{define "media_item"}}
<li class="flex items-center space-x-3">
    <img src="{{.URL}}" alt="" class="h-12 w-12 object-cover rounded">
    <input type="hidden" name="media" value="{{.URL}}">
    <span class="text-xs text-gray-500 truncate">{{.URL}}</span>
    <button type="button" onclick="this.closest('li').remove()" class="text-xs text-red-600">Remove</button>
</li>
{{end}}`,

	"components/upload_error": `{{define "upload_error"}}
<li class="text-xs text-red-600">{{.Message}}</li>
{{end}}`,
}
