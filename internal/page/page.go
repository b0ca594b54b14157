// Package page derives video identity and course context from the host page.
package page

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownCourse is the title used when nothing better is available.
const UnknownCourse = "Unknown Course"

var (
	videoPathRe  = regexp.MustCompile(`/learn/([^/]+)/.*/([\w-]+)`)
	courseSlugRe = regexp.MustCompile(`/learn/([^/]+)`)
)

// Context describes the course a video belongs to. It is passed to
// translation providers so technical terms are translated for the subject.
type Context struct {
	Title string `json:"title"`
	Topic string `json:"topic,omitempty"`
}

// VideoID returns "<course>_<video>" for lecture URLs such as
// https://www.coursera.org/learn/ml/lecture/abc12/intro.
func VideoID(rawURL string) (string, bool) {
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	match := videoPathRe.FindStringSubmatch(path)
	if match == nil {
		return "", false
	}
	return match[1] + "_" + match[2], true
}

// CourseContext builds the translation context. The page title wins; the
// course slug from the URL is the fallback.
func CourseContext(rawURL, title string, breadcrumbs []string) Context {
	ctx := Context{Title: strings.TrimSpace(title)}
	if ctx.Title == "" {
		if match := courseSlugRe.FindStringSubmatch(rawURL); match != nil {
			words := strings.ReplaceAll(match[1], "-", " ")
			ctx.Title = cases.Title(language.English).String(words)
		}
	}
	if ctx.Title == "" {
		ctx.Title = UnknownCourse
	}
	var topics []string
	for _, crumb := range breadcrumbs {
		if crumb = strings.TrimSpace(crumb); crumb != "" {
			topics = append(topics, crumb)
		}
	}
	ctx.Topic = strings.Join(topics, " > ")
	return ctx
}

// Describe renders the context block used in translation prompts.
func (c Context) Describe() string {
	out := "Course: " + c.Title
	if c.Topic != "" {
		out += "\nCategory: " + c.Topic
	}
	return out
}
