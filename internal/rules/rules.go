package rules

import "github.com/jsvs/jsvs/internal/types"

// Rule groups lowercase keyword patterns that share a description and a base
// severity. Keywords may repeat across rules.
type Rule struct {
	ID          string         `json:"id"`
	Keywords    []string       `json:"keywords"`
	Description string         `json:"description"`
	Severity    types.Severity `json:"severity"`
}

// table is evaluated in order; keyword order inside a rule is the emission order.
var table = []Rule{
	{
		ID: "xss",
		Keywords: []string{
			"eval",
			"execscript",
			"document.write",
			`document.createelement("script")`,
			`document.createelement('script')`,
		},
		Description: "Possible XSS",
		Severity:    types.SevAlert,
	},
	{
		ID:          "insecure_api",
		Keywords:    []string{"xmlhttprequest", "xhr.open", "fetch"},
		Description: "Possible insecure API call",
		Severity:    types.SevWarning,
	},
	{
		ID:          "remote_response",
		Keywords:    []string{"xmlhttpreq.responsetext", "xhr.responsetext"},
		Description: "Reading response of a remote request",
		Severity:    types.SevWarning,
	},
	{
		ID:          "encoding",
		Keywords:    []string{"atob", "btoa"},
		Description: "Base64 encoding/decoding routine used",
		Severity:    types.SevWarning,
	},
	{
		ID: "keylogger",
		Keywords: []string{
			`window.addeventlistener("keydown"`,
			`document.addeventlistener("keydown"`,
			"onkeydown",
			"onkeypress",
		},
		Description: "Possible keylogger",
		Severity:    types.SevAlert,
	},
	{
		ID:          "exfiltration",
		Keywords:    []string{"formdata()", "document.cookie", "navigator.sendbeacon"},
		Description: "Possible credential or PII exfiltration",
		Severity:    types.SevWarning,
	},
	{
		ID:          "local_storage",
		Keywords:    []string{"localstorage", "sessionstorage"},
		Description: "Access to browser storage (possible PII harvesting)",
		Severity:    types.SevWarning,
	},
	{
		ID: "clickjacking",
		Keywords: []string{
			`document.createelement("iframe")`,
			`document.createelement('iframe')`,
			"iframe",
		},
		Description: "Possible clickjacking (embedded frame)",
		Severity:    types.SevWarning,
	},
	{
		ID:          "dom_element",
		Keywords:    []string{"document.createelement"},
		Description: "Dynamic DOM element creation",
		Severity:    types.SevWarning,
	},
	{
		ID:          "remote_url",
		Keywords:    []string{"http://", "https://"},
		Description: "Reference to a remote resource",
		Severity:    types.SevWarning,
	},
}

// Table returns a copy of the fixed rule table in evaluation order.
func Table() []Rule {
	out := make([]Rule, len(table))
	for i, r := range table {
		r.Keywords = append([]string(nil), r.Keywords...)
		out[i] = r
	}
	return out
}

// IDs lists rule IDs in table order.
func IDs() []string {
	ids := make([]string, 0, len(table))
	for _, r := range table {
		ids = append(ids, r.ID)
	}
	return ids
}

// ByID returns the rule with the given ID.
func ByID(id string) (Rule, bool) {
	for _, r := range Table() {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
