package contacts

import (
	"strings"
)

// Report describes what Parse did with the input.
type Report struct {
	Lines     int  `json:"lines"`
	Valid     int  `json:"valid"`
	Rejected  int  `json:"rejected"`
	Truncated bool `json:"truncated"`
}

// Parse converts pasted text into contacts, one per line, keeping input order.
// Lines that cannot be parsed or fail validation are dropped. At most
// MaxContacts records are returned.
func Parse(text string) []Contact {
	list, _ := ParseWithReport(text)
	return list
}

// ParseWithReport is Parse plus line accounting for previews.
func ParseWithReport(text string) ([]Contact, Report) {
	var (
		list   []Contact
		report Report
	)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		report.Lines++

		c, ok := ParseLine(line)
		if !ok {
			report.Rejected++
			continue
		}
		report.Valid++
		list = append(list, c)
	}

	if len(list) > MaxContacts {
		list = list[:MaxContacts]
		report.Truncated = true
	}
	if list == nil {
		list = []Contact{}
	}
	return list, report
}

// ParseLine extracts a contact from a single line.
//
// Comma separated lines are read as "name, phone[, business name]"; anything
// after the third part is ignored. Lines without commas are scanned for a
// phone-like token and the remaining words become the name.
func ParseLine(line string) (Contact, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Contact{}, false
	}

	var c Contact
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) >= 2 {
		c.Name = parts[0]
		c.Phone = parts[1]
		if len(parts) > 2 {
			c.BusinessName = parts[2]
		}
	} else {
		name, phone, ok := splitPhoneToken(line)
		if !ok {
			return Contact{}, false
		}
		c.Name = name
		c.Phone = phone
	}

	c.Phone = NormalizePhone(c.Phone)
	if !c.Valid() {
		return Contact{}, false
	}
	return c, true
}

// splitPhoneToken finds the first phone number anywhere in line and returns
// the rest of the line, whitespace collapsed, as the name.
func splitPhoneToken(line string) (name, phone string, ok bool) {
	loc := phoneSearchPattern.FindStringIndex(line)
	if loc == nil {
		return "", "", false
	}
	phone = line[loc[0]:loc[1]]
	name = strings.Join(strings.Fields(line[:loc[0]]+" "+line[loc[1]:]), " ")
	return name, phone, true
}
