package core

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "hola", TruncateText("hola", 10))
	assert.Equal(t, "Cale…", TruncateText("Calendario", 5))
	assert.Equal(t, "ñ", TruncateText("ñandú", 1))
	assert.Equal(t, "sin límite", TruncateText("sin límite", "x"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "01/03/2024", FormatDate("2024-03-01"))
	assert.Equal(t, "15/01/2024", FormatDate("2024-01-15T10:30:00Z"))
	assert.Equal(t, "15/01/2024", FormatDate("2024-01-15T10:30:00.000"))
	assert.Equal(t, "mañana", FormatDate("mañana"))
	assert.Empty(t, FormatDate(" "))
}

func TestFieldError(t *testing.T) {
	errs := map[string]string{"email": "Correo es obligatorio."}
	assert.Equal(t, "Correo es obligatorio.", FieldError(errs, "email"))
	assert.Empty(t, FieldError(errs, "password"))
	assert.Empty(t, FieldError(nil, "email"))
}

func TestRenderSection(t *testing.T) {
	var tmpl *template.Template
	funcs := Funcs(Deps{
		Template:           &tmpl,
		ContentTemplateFor: func(page string) string { return page + "-content" },
	})
	tmpl = template.Must(template.New("root").Funcs(funcs).Parse(
		`{{define "home-content"}}<p>{{.}}</p>{{end}}{{define "page"}}{{renderSection "home" .}}{{end}}`))

	var sb strings.Builder
	require.NoError(t, tmpl.ExecuteTemplate(&sb, "page", "<b>hola</b>"))
	assert.Equal(t, "<p>&lt;b&gt;hola&lt;/b&gt;</p>", sb.String())
}
