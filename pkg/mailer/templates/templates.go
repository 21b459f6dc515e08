package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"

	"github.com/davitren/storefront/pkg/mailer"
)

//go:embed *.tmpl
var FS embed.FS

var subjects = map[string]string{
	mailer.TemplateWelcome:       "Welcome to the shop!",
	mailer.TemplateResetPassword: "Reset your password",
}

var parsed = htmpl.Must(htmpl.ParseFS(FS, "*.tmpl"))

// Render executes the named embedded template with data and returns the
// subject line and HTML body.
func Render(name string, data map[string]any) (subject, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
