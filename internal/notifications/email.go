package notifications

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	texttemplate "text/template"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/gateway/email"
)

// EmailData is the display content of one milestone email.
type EmailData struct {
	FirstName       string  `json:"first_name"`
	FocusDays       int     `json:"focus_days"`
	CurrentLevel    string  `json:"current_level"`
	CurrentEmoji    string  `json:"current_emoji"`
	NextLevel       string  `json:"next_level"`
	NextEmoji       string  `json:"next_emoji"`
	DaysToNext      int     `json:"days_to_next"`
	KingQueen       string  `json:"king_queen"`
	DaysToKingQueen int     `json:"days_to_king_queen"`
	Percentile      float64 `json:"percentile"`
	MediaURL        string  `json:"media_url,omitempty"`
	ShareQuery      string  `json:"query,omitempty"`
}

// EmailDataFor builds the display content from a composed recipient.
func EmailDataFor(r Recipient) EmailData {
	return EmailData{
		FirstName:       r.FirstName,
		FocusDays:       r.DayNumber,
		CurrentLevel:    r.Current.Title,
		CurrentEmoji:    r.Current.Emoji,
		NextLevel:       r.Next.Title,
		NextEmoji:       r.Next.Emoji,
		DaysToNext:      r.DaysToNext,
		KingQueen:       r.KingQueen,
		DaysToKingQueen: r.DaysToFinal,
		Percentile:      r.Percentile,
		MediaURL:        r.Current.MediaURL,
		ShareQuery:      r.Params[ParamQuery],
	}
}

// PercentileText formats the percentile with one decimal.
func (d EmailData) PercentileText() string {
	return strconv.FormatFloat(d.Percentile, 'f', 1, 64)
}

// ShareURL is the progress share link, empty without a share query.
func (d EmailData) ShareURL() string {
	if d.ShareQuery == "" {
		return ""
	}
	return shareBaseURL + "?" + d.ShareQuery
}

// Subject renders the literal subject line.
func (d EmailData) Subject() string {
	return fmt.Sprintf("%d Days in Focus, %s %s → %s %s",
		d.FocusDays, d.CurrentLevel, d.CurrentEmoji, d.NextLevel, d.NextEmoji)
}

const fallbackHTML = `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#222;">
  <h2>Hi {{.FirstName}},</h2>
  <p>You are <strong>{{.FocusDays}} days</strong> in focus. Current level: <strong>{{.CurrentLevel}} {{.CurrentEmoji}}</strong>.</p>
  <p>{{.DaysToNext}} days to {{.NextLevel}} {{.NextEmoji}}. {{.DaysToKingQueen}} days to {{.KingQueen}}.</p>
  <p>You are ahead of {{.PercentileText}}% of the community.</p>
</body>
</html>
`

const plainText = `Hi {{.FirstName}},

You are {{.FocusDays}} days in focus.
Current level: {{.CurrentLevel}} {{.CurrentEmoji}}
Next level: {{.NextLevel}} {{.NextEmoji}} in {{.DaysToNext}} days
{{.KingQueen}} in {{.DaysToKingQueen}} days
Percentile: {{.PercentileText}}%
`

// EmailRenderer renders milestone emails.
type EmailRenderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewEmailRenderer loads the HTML template at path. A missing file falls
// back to the inline template; a file that fails to parse is an error.
func NewEmailRenderer(path string, logger *slog.Logger) (*EmailRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	source := fallbackHTML
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			source = string(b)
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("Email template not found, using inline fallback", "path", path)
		default:
			return nil, fmt.Errorf("read email template %s: %w", path, err)
		}
	}

	html, err := htmltemplate.New("milestone_email").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	text := texttemplate.Must(texttemplate.New("milestone_text").Parse(plainText))
	return &EmailRenderer{html: html, text: text}, nil
}

// Render builds the message for one recipient address.
func (r *EmailRenderer) Render(to string, data EmailData) (email.Message, error) {
	var html, text bytes.Buffer
	if err := r.html.Execute(&html, data); err != nil {
		return email.Message{}, fmt.Errorf("render email html: %w", err)
	}
	if err := r.text.Execute(&text, data); err != nil {
		return email.Message{}, fmt.Errorf("render email text: %w", err)
	}
	return email.Message{
		To:      to,
		Subject: data.Subject(),
		HTML:    html.String(),
		Text:    text.String(),
		Tags:    map[string]string{"campaign": CampaignTag},
	}, nil
}
