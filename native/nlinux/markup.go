package nlinux

import (
	"bytes"
	"encoding/xml"
)

// errorDetails is what the fatal error dialog shows besides the
// message itself.
type errorDetails struct {
	Heading  string
	AppName  string
	Version  string
	LinkURL  string
	LinkText string
	Message  string
}

// errorMarkup renders details as Pango markup. Every piece of text is
// escaped: URLs carry `&` in their query strings, and translations
// may carry anything.
func errorMarkup(d errorDetails) string {
	buf := new(bytes.Buffer)
	esc := func(s string) {
		_ = xml.EscapeText(buf, []byte(s))
	}

	buf.WriteString("<b>")
	esc(d.Heading)
	buf.WriteString("</b>\n\n<i>")
	esc(d.AppName + "-bootstrap, " + d.Version)
	buf.WriteString("</i>\n\n")
	if d.LinkURL != "" {
		buf.WriteString(`<a href="`)
		esc(d.LinkURL)
		buf.WriteString(`">`)
		esc(d.LinkText)
		buf.WriteString("</a>\n\n")
	}
	esc(d.Message)
	return buf.String()
}
