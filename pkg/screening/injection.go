// Package screening flags user-supplied strings that look like SQL injection
// or cross-site scripting payloads.
package screening

import (
	"sort"

	libinjection "github.com/corazawaf/libinjection-go"
)

// Kind identifies which detector matched.
type Kind string

const (
	KindSQLi Kind = "sqli"
	KindXSS  Kind = "xss"
)

// Finding describes a value that failed screening.
type Finding struct {
	Kind        Kind
	Field       string // name of the argument or path segment
	Value       string
	Fingerprint string // libinjection fingerprint, SQLi only
}

// CheckSQLi returns a Finding when value is a string that libinjection
// recognises as SQL injection. Non-string values are never flagged.
//
//	CheckSQLi("time_period", "2024-Q1")                // nil
//	CheckSQLi("time_period", "'; DROP TABLE orders--") // Kind == KindSQLi
func CheckSQLi(field string, value any) *Finding {
	s, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(s)
	if !isSQLi {
		return nil
	}
	return &Finding{Kind: KindSQLi, Field: field, Value: s, Fingerprint: string(fingerprint)}
}

// CheckXSS returns a Finding when value contains markup that could execute
// script if echoed into a page.
func CheckXSS(field, value string) *Finding {
	if !libinjection.IsXSS(value) {
		return nil
	}
	return &Finding{Kind: KindXSS, Field: field, Value: value}
}

// CheckAll runs both detectors over every value. Findings are ordered by
// field name.
func CheckAll(values map[string]string) []*Finding {
	fields := make([]string, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var findings []*Finding
	for _, f := range fields {
		if r := CheckSQLi(f, values[f]); r != nil {
			findings = append(findings, r)
		}
		if r := CheckXSS(f, values[f]); r != nil {
			findings = append(findings, r)
		}
	}
	return findings
}
