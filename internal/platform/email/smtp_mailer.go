package email

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"github.com/ferdiebergado/storyboard/internal/config"
)

var _ Mailer = (*SMTPMailer)(nil)

type templateMap map[string]*template.Template

type SMTPMailer struct {
	from      string
	pass      string
	host      string
	port      int
	sender    string
	templates templateMap
}

func (e *SMTPMailer) send(to []string, subject, body, contentType string) error {
	auth := smtp.PlainAuth("", e.from, e.pass, e.host)

	headers := "From: " + e.sender + "\r\n" +
		"To: " + strings.Join(to, ", ") + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0\r\n" +
		"Content-Type: " + contentType + "; charset=\"UTF-8\"\r\n\r\n"

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	if err := smtp.SendMail(addr, auth, e.from, to, []byte(headers+body)); err != nil {
		return fmt.Errorf("sending email from %q to %q: %w", e.from, to, err)
	}

	slog.Info("Email sent.", "subject", subject)
	return nil
}

func (e *SMTPMailer) render(tmplName string, data map[string]string) (string, error) {
	tmpl, ok := e.templates[tmplName]
	if !ok {
		return "", fmt.Errorf("template does not exist: %s", tmplName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %q: %w", tmplName, err)
	}
	return buf.String(), nil
}

func (e *SMTPMailer) SendHTML(to []string, subject, tmplName string, data map[string]string) error {
	body, err := e.render(tmplName, data)
	if err != nil {
		return err
	}

	if err := e.send(to, subject, body, "text/html"); err != nil {
		return fmt.Errorf("sending email to %q with subject %q: %w", to, subject, err)
	}

	return nil
}

func (e *SMTPMailer) SendPlain(to []string, subject, body string) error {
	return e.send(to, subject, body, "text/plain")
}

func NewSMTPMailer(cfg *config.SMTP, opts *config.Email) (*SMTPMailer, error) {
	layoutFile := filepath.Join(opts.Templates, opts.Layout)
	tmplMap, err := parsePages(opts.Templates, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("parse pages at path %q and layout file %q: %w", opts.Templates, layoutFile, err)
	}

	return &SMTPMailer{
		from:      cfg.User,
		pass:      cfg.Password,
		host:      cfg.Host,
		port:      cfg.Port,
		sender:    opts.Sender,
		templates: tmplMap,
	}, nil
}

// parsePages clones the layout for every page template in templateDir.
func parsePages(templateDir, layout string) (templateMap, error) {
	layoutTmpl, err := template.New("layout").ParseFiles(filepath.Join(templateDir, layout))
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	tmplMap := make(templateMap)
	err = fs.WalkDir(os.DirFS(templateDir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk directory %q at path %q: %w", templateDir, path, err)
		}

		const suffix = ".html"
		if d.IsDir() || !strings.HasSuffix(path, suffix) || path == layout {
			return nil
		}

		clone, err := layoutTmpl.Clone()
		if err != nil {
			return fmt.Errorf("clone layout: %w", err)
		}

		page, err := clone.ParseFiles(filepath.Join(templateDir, path))
		if err != nil {
			return fmt.Errorf("parse page %q: %w", path, err)
		}

		name := strings.TrimSuffix(path, suffix)
		tmplMap[name] = page.Lookup(layout)
		slog.Debug("parsed page", "path", path, "name", name)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("load pages templates: %w", err)
	}

	return tmplMap, nil
}
