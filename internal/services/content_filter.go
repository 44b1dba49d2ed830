package services

import (
	"regexp"
	"sort"
	"strings"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

var filterMessages = map[string]string{
	"inappropriate_language":   "contains inappropriate language",
	"url_not_allowed":          "links are not allowed",
	"contact_info_not_allowed": "contact information is not allowed",
	"spam_detected":            "looks like spam",
}

// ContentFilter screens user-authored text (team names, riddle titles and
// questions, riddle requests) before it is stored.
type ContentFilter struct {
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	emailPattern        *regexp.Regexp
	phonePattern        *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps:   make([]*regexp.Regexp, 0, len(BannedWords)),
		urlPattern:          regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:        regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		phonePattern:        regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}|\+\d{1,3}[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		repeatedCharPattern: regexp.MustCompile(`(?i)(a{6,}|b{6,}|c{6,}|d{6,}|e{6,}|f{6,}|g{6,}|h{6,}|i{6,}|j{6,}|k{6,}|l{6,}|m{6,}|n{6,}|o{6,}|p{6,}|q{6,}|r{6,}|s{6,}|t{6,}|u{6,}|v{6,}|w{6,}|x{6,}|y{6,}|z{6,}|!{6,}|\?{6,}|\.{6,})`),
	}
	for _, word := range BannedWords {
		f.bannedWordRegexps = append(f.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check returns ("", true) for acceptable text, otherwise a reason code.
func (f *ContentFilter) Check(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", true
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return "inappropriate_language", false
		}
	}
	if f.urlPattern.MatchString(text) {
		return "url_not_allowed", false
	}
	if f.emailPattern.MatchString(text) || f.phonePattern.MatchString(text) {
		return "contact_info_not_allowed", false
	}
	if f.repeatedCharPattern.MatchString(text) {
		return "spam_detected", false
	}
	return "", true
}

// Screen checks every named field and returns an ErrInvalidInput naming the
// first field that fails.
func (f *ContentFilter) Screen(fields map[string]string) error {
	if f == nil {
		return nil
	}
	for _, name := range sortedKeys(fields) {
		if reason, ok := f.Check(fields[name]); !ok {
			return invalidf("%s %s", name, filterMessages[reason])
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
