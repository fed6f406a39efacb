// Package naming derives Go identifiers from catalog names.
//
// All functions are pure: the same input always yields the same output.
package naming

import (
	"go/token"
	"slices"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// commonAcronyms are upper-cased as a whole by Pascal.
var commonAcronyms = []string{
	"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML",
	"HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC",
	"SKU", "SLA", "SMTP", "SQL", "SSH", "SSL", "TCP", "TLS", "TTL", "UDP",
	"UI", "UID", "URI", "URL", "UTF8", "UUID", "VM", "XML", "XMPP", "XSRF", "XSS",
}

// Namer converts catalog names into identifiers. The zero value is not usable;
// use New or Default.
type Namer struct {
	acronyms map[string]struct{}
	rules    *inflect.Ruleset
}

// Default is the Namer configured with the common acronyms only.
var Default = New()

// New returns a Namer that knows the common acronyms plus the given ones.
func New(acronyms ...string) *Namer {
	n := &Namer{
		acronyms: make(map[string]struct{}, len(commonAcronyms)+len(acronyms)),
		rules:    inflect.NewDefaultRuleset(),
	}
	for _, a := range slices.Concat(commonAcronyms, acronyms) {
		a = strings.ToUpper(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		n.acronyms[a] = struct{}{}
		n.rules.AddAcronym(a)
	}
	return n
}

// Pascal converts a snake-or-mixed-case name into an exported identifier:
//
//	user_id   => UserID
//	api_url   => APIURL
//	userInfo  => UserInfo
func (n *Namer) Pascal(s string) string {
	words := split(fold(s))
	var b strings.Builder
	for _, w := range words {
		if _, ok := n.acronyms[strings.ToUpper(w)]; ok {
			b.WriteString(strings.ToUpper(w))
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// Plural appends a plural suffix unless the name already ends with one.
func (n *Namer) Plural(s string) string {
	if s == "" || strings.HasSuffix(strings.ToLower(s), "s") {
		return s
	}
	p := n.rules.Pluralize(s)
	if p == s {
		p += "s"
	}
	return p
}

// TypeName returns an exported Go type name for a table.
func (n *Namer) TypeName(table string) string {
	name := n.Pascal(table)
	if name == "" || !token.IsExported(name) {
		name = "T" + name
	}
	return name
}

// EnumMember returns the identifier suffix for a raw enum value.
// Numeric literals are prefixed with V to stay valid identifiers.
func (n *Namer) EnumMember(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Empty"
	}
	name := n.Pascal(raw)
	switch {
	case name == "":
		return "Value"
	case unicode.IsDigit([]rune(name)[0]):
		return "V" + name
	}
	return name
}

// Pascal calls Default.Pascal.
func Pascal(s string) string { return Default.Pascal(s) }

// Plural calls Default.Plural.
func Plural(s string) string { return Default.Plural(s) }

// TypeName calls Default.TypeName.
func TypeName(s string) string { return Default.TypeName(s) }

// EnumMember calls Default.EnumMember.
func EnumMember(s string) string { return Default.EnumMember(s) }

// Snake converts a Pascal or mixed-case name into snake case:
//
//	HTTPCode  => http_code
//	UserIDs   => user_ids
//	full-name => full_name
func Snake(s string) string {
	r := []rune(s)
	var b strings.Builder
	for i := 0; i < len(r); i++ {
		c := r[i]
		if isSeparator(c) {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		}
		if unicode.IsUpper(c) && i > 0 && !strings.HasSuffix(b.String(), "_") {
			prev := r[i-1]
			switch {
			case unicode.IsLower(prev), unicode.IsDigit(prev):
				b.WriteByte('_')
			case unicode.IsUpper(prev) && i+1 < len(r) && unicode.IsLower(r[i+1]) && !pluralTail(r, i+1):
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return strings.TrimSuffix(b.String(), "_")
}

// pluralTail reports whether r[i] is a trailing "s" after an acronym, as in IDs.
func pluralTail(r []rune, i int) bool {
	return i == len(r)-1 && r[i] == 's'
}

// IsIdentifier reports whether s is a valid, non-keyword Go identifier.
func IsIdentifier(s string) bool {
	return token.IsIdentifier(s)
}

// isSeparator reports whether r splits words in a catalog name.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '\t'
}

// split breaks s into words on separators, non alphanumeric runes, and
// lower-to-upper case transitions.
func split(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, c := range s {
		switch {
		case !unicode.IsLetter(c) && !unicode.IsDigit(c):
			flush()
		case unicode.IsUpper(c) && len(cur) > 0 && unicode.IsLower(cur[len(cur)-1]):
			flush()
			cur = append(cur, c)
		default:
			cur = append(cur, c)
		}
	}
	flush()
	return words
}

// fold strips diacritics so "Crème" becomes "Creme".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
