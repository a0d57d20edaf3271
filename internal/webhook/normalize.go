package webhook

// FallbackMessage is shown when the webhook answered without any readable text.
const FallbackMessage = "Your request was processed successfully."

// responseFields are probed in order when looking for a display message.
var responseFields = []string{"output", "response", "message", "text"}

// Normalize turns an arbitrary decoded webhook response into display text.
func Normalize(v any) string {
	if msg, ok := ExtractMessage(v); ok {
		return msg
	}
	return FallbackMessage
}

// ExtractMessage looks for a display message in v. Arrays are unwrapped to
// their first element, objects are probed for the known text fields and bare
// strings are used as they are.
func ExtractMessage(v any) (string, bool) {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return "", false
		}
		v = arr[0]
	}

	switch t := v.(type) {
	case string:
		return t, t != ""
	case map[string]any:
		for _, field := range responseFields {
			if s, ok := t[field].(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
