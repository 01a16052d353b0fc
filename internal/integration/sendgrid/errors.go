package sendgrid

import "encoding/json"

// firstErrorMessage достаёт первое сообщение из {"errors":[{"message":...}]}.
func firstErrorMessage(body string) string {
	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return ""
	}
	for _, e := range parsed.Errors {
		if e.Message != "" {
			return e.Message
		}
	}
	return ""
}
