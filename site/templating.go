package site

import (
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"inkwell/constants"
	"inkwell/database"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gorm.io/datatypes"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templatesCache sync.Map

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"jsonListToCommaSeparated": func(jsonList datatypes.JSON) string {
			if len(jsonList) == 0 {
				return ""
			}
			var tags []string
			err := json.Unmarshal(jsonList, &tags)
			if err != nil {
				log.Printf("Failed to parse JSON list: %v", err)
				return ""
			}
			for i, tag := range tags {
				tags[i] = strings.TrimSpace(tag)
			}
			return strings.Join(tags, ", ")
		},
		"parseMarkdown": func(markdownStr string) template.HTML {
			extensions := parser.CommonExtensions | parser.AutoHeadingIDs
			p := parser.NewWithExtensions(extensions)
			doc := p.Parse([]byte(markdownStr))

			htmlFlags := html.CommonFlags | html.HrefTargetBlank
			opts := html.RendererOptions{Flags: htmlFlags}
			renderer := html.NewRenderer(opts)

			return template.HTML(markdown.Render(doc, renderer))
		},
		"dateFmt": func(layout string, t time.Time) string {
			return t.Format(layout)
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	type GlobalTemplateData struct {
		CurrentUser *database.User
		IsDebug     bool
		SiteName    string
		PublicURL   string
	}

	templateData := struct {
		Global GlobalTemplateData
		Data   any
	}{
		Global: GlobalTemplateData{
			CurrentUser: Viewer(r),
			IsDebug:     s.debug,
			SiteName:    constants.APP_NAME,
			PublicURL:   constants.PUBLIC_URL,
		},
		Data: data,
	}

	actualTemplate, ok := templatesCache.Load(templateName)
	if !ok {
		baseTemplate := template.New("layout.html").Funcs(templateFuncs())
		baseTemplate = template.Must(baseTemplate.ParseFS(templatesFS, "templates/layout.html"))
		actualTemplate = template.Must(baseTemplate.ParseFS(templatesFS, "templates/"+templateName+".html"))

		templatesCache.Store(templateName, actualTemplate)
	}

	err := actualTemplate.(*template.Template).Execute(w, templateData)
	if err != nil {
		log.Printf("Template execution error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
