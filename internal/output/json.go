package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/vigil/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format outputs stored notifications as JSON
func (f *JSONFormatter) Format(notifs []model.StoredNotification, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(notifs)
}

// FormatSummary outputs a summary as JSON
func (f *JSONFormatter) FormatSummary(summary Summary, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(summary)
}
