package contacts

import (
	"encoding/csv"
	"io"
	"strings"
)

// Format renders contacts back into "name, phone, business name" lines that
// Parse accepts.
func Format(list []Contact) string {
	var b strings.Builder
	for i, c := range list {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.Name)
		b.WriteString(", ")
		b.WriteString(c.Phone)
		if c.BusinessName != "" {
			b.WriteString(", ")
			b.WriteString(c.BusinessName)
		}
	}
	return b.String()
}

// WriteCSV writes list with a name,phone,business_name header.
func WriteCSV(w io.Writer, list []Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "phone", "business_name"}); err != nil {
		return err
	}
	for _, c := range list {
		if err := cw.Write([]string{c.Name, c.Phone, c.BusinessName}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
