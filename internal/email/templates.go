package email

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const TemplatePasswordReset = "password_reset"

const passwordResetHTML = `<p>Hello {{.Name}},</p>
<p>We received a request to reset your StudyZone password.</p>
<p><a href="{{.ResetLink}}">Choose a new password</a></p>
<p>This link expires at {{.ExpiresAt}}. If you did not ask for a reset you can ignore this email.</p>`

// TemplateManager holds parsed html templates by name.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager returns a manager preloaded with the built-in templates.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	if err := tm.AddTemplate(TemplatePasswordReset, passwordResetHTML); err != nil {
		panic(err)
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}

// LoadTemplates adds every *.html file under dirPath, named by its base name.
// Files override built-ins of the same name.
func (tm *TemplateManager) LoadTemplates(dirPath string) error {
	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), ".html")
		if err := tm.AddTemplate(name, string(content)); err != nil {
			return fmt.Errorf("failed to add template %s: %w", name, err)
		}
		return nil
	})
}
