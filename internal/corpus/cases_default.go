package corpus

// defaultTests are whole-input correctness cases run against every engine.
var defaultTests = []struct {
	pattern, input string
	expected        bool
}{
	{"[a]|[b-b]", "", false},
	{"[a]|[b-b]", "a", true},
	{"[a]|[b-b]", "aa", false},
	{"[a]|[b-b]", "b", true},
	{"[a]|[b-b]", "ab", false},
	{"[a]|[b-b]", "ba", false},
	{"[a]|[b-b]", " aa", false},
	{"[a]|[b-b]", "aa aa", false},
	{"([a]|[b-b])*", "", true},
	{"([a]|[b-b])*", "a", true},
	{"([a]|[b-b])*", "aa", true},
	{"([a]|[b-b])*", "b", true},
	{"([a]|[b-b])*", "ab", true},
	{"([a]|[b-b])*", "ba", true},
	{"([a]|[b-b])*", " aa", false},
	{"([a]|[b-b])*", "aa aa", false},
	{"([a]|[b-b])+", "", false},
	{"([a]|[b-b])+", "a", true},
	{"([a]|[b-b])+", "aa", true},
	{"([a]|[b-b])+", "b", true},
	{"([a]|[b-b])+", "ab", true},
	{"([a]|[b-b])+", "ba", true},
	{"([a]|[b-b])+", " aa", false},
	{"([a]|[b-b])+", "aa aa", false},
	{"((..)|(.))", "", false},
	{"((..)|(.))((..)|(.))", "", false},
	{"((..)|(.))+", "", false},
	{"((..)|(.)){3}", "", false},
	{"((..)|(.))*", "", true},
	{"((..)|(.))", "a", true},
	{"((..)|(.))((..)|(.))", "a", false},
	{"((..)|(.))+", "a", true},
	{"((..)|(.)){3}", "a", false},
	{"((..)|(.))*", "a", true},
	{"a(b?)?", "ab", true},
	{"(a*)*", "", true},
	{"(a*)*", "a", true},
	{"(a*)*", "x", false},
	{"(a+)*", "", true},
	{"(a+)*", "a", true},
	{"(a+)*", "x", false},
	{"(a*)+", "", true},
	{"(a*)+", "a", true},
	{"(a*)+", "x", false},
	{"(a+)+", "", false},
	{"(a+)+", "a", true},
	{"(a+)+", "x", false},
	{"", "", true},
	{"", "a", false},
	{"|", "", true},
	{"|", "a", false},
	{"a* ?", "", true},
	{"a* ?", "aaa", true},
	{"a* ?", " ", true},
	{"a* ?", "  ", false},
	{"a* ?", "aaa ", true},
	{"a* ?", "a a", false},
	{"\x01.?[\xc0-\xff]+\x02", "\x01\x03\xc8\xd0\x02", true},
	{"[.]", "a", false},
	{"[.]", ".", true},
	{"[.]", "", false},
	{"[^.]", "a", true},
	{"[^.]", ".", false},
	{"[^.]", "", false},
	{"\\**", "", true},
	{"\\**", "*", true},
	{"\\**", "**", true},
	{"\\++", "", false},
	{"\\++", "+", true},
	{"\\++", "++", true},
	{"\\?+", "", false},
	{"\\?+", "?", true},
	{"\\?+", "??", true},
	{"(\\??)?", "", true},
	{"(\\??)?", "?", true},
	{"(\\??)?", "??", false},
	{"(\\?+)?", "", true},
	{"(\\?+)?", "?", true},
	{"(\\?+)?", "??", true},
	{"(\\?*)?", "", true},
	{"(\\?*)?", "?", true},
	{"(\\?*)?", "??", true},
	{"((a*|b*))*", "aaabbbaaa", true},
	{"[^a-z]", "\x00", true},
	{"[^a-z]", "0", true},
	{"[^a-z]", "\n", true},
	{"[^a-z]", "f", false},
	{"[^a-z]", "a", false},
	{"[^a-z]", "z", false},
	{"\\\".*\\\"\\s*(;.*)?", "\"1234\"", true},
	{"\\\".*\\\"\\s*(;.*)?", "\"abcd\" ;", true},
	{"\\\".*\\\"\\s*(;.*)?", "\"\" ; rhubarb", true},
	{"\\\".*\\\"\\s*(;.*)?", "\"1234\" : things", false},
	{"[aeiou\\d]{4,5}", "uoie", true},
	{"[aeiou\\d]{4,5}", "1234", true},
	{"[aeiou\\d]{4,5}", "12345", true},
	{"[aeiou\\d]{4,5}", "aaaaa", true},
	{"[aeiou\\d]{4,5}", "123456", false},
	{"([^a]*)*", "b", true},
	{"([^a]*)*", "bbbb", true},
	{"([^a]*)*", "aaa", false},
	{"([^ab]*)*", "cccc", true},
	{"([^ab]*)*", "abab", false},
	{"(([a]*)?)*", "a", true},
	{"(([a]*)?)*", "aaaa", true},
	{"(([ab]*)?)*", "a", true},
	{"(([ab]*)?)*", "b", true},
	{"(([ab]*)?)*", "abab", true},
	{"(([ab]*)?)*", "baba", true},
	{"(([^a]*)?)*", "b", true},
	{"(([^a]*)?)*", "bbbb", true},
	{"(([^a]*)?)*", "aaa", false},
	{"(([^ab]*)?)*", "c", true},
	{"(([^ab]*)?)*", "cccc", true},
	{"(([^ab]*)?)*", "baba", false},
	{"([abc])*bcd", "abcd", true},
	{"([abc])*bcd", "abbcd", true},
	{"((((((((((((((((((((x))))))))))))))))))))", "x", true},
	{"((((((((((((((((((((x))))))))))))))))))))", "", false},
	{"\\w*I\\w*", "", false},
	{"\\w*I\\w*", "I", true},
	{"\\w*I\\w*", "Inc", true},
	{"\\w*I\\w*", "Inc.", false},
	{".+\nabc", "a\nabc", true},
	{"a(.*)?[b\n]", "a12345b", true},
	{"a(.*)?[b\n]", "a12345\n", true},
	{"((.*)?)(\n|\r\n?)", "ab\r", true},
	{"((.*)?)(\n|\r\n?)", "ab\\r", false},
	{"((.*)?)(\n|\r\n?)", "ab\\n", false},
	{"[\r\n]A", "\r\nA", false},
	{"[\r\n]A", "\rA", true},
	{"[\r\n]A", "\nA", true},
	{"[\r\n]A", "A", false},
	{"(\r|\n)A", "\r\nA", false},
	{"(\r|\n)A", "\rA", true},
	{"(\r|\n)A", "\nA", true},
	{"(\r|\n)A", "A", false},
	{"a.c", "a\x00c", true},
	{"a.c", "a\x00d", false},
	{"a\x00c", "a\x00c", true},
	{"a\x00c", "a\x00d", false},
}

// defaultBenchmarks stress backtracking and long scans.
var defaultBenchmarks = []struct {
	pattern, input string
	expected        bool
}{
	{"(a?){20}a{20}", "aaaaaaaaaaaaaaaaaaaa", true},
	{"(a+)+", "aaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
	{"(a+)+", "aaaaaaaaaaaaaaaaaaaaaaaaaaa!", false},
	{"(([0-9a-fA-F]{1,4}:)*([0-9a-fA-F]{1,4}))*(::)", "b51:4:1DB:9EE1:5:27d60:f44:D4:cd:E:5:0A5:4a:D24:41Ad:", false},
	{"[0-9a-zA-Z]([-.\\w]*[0-9a-zA-Z])?@.*", "test@contoso.com", true},
	{"(([A-Z]\\w*)+\\.)*[A-Z]\\w*", "aaaaaaaaaaaaaaaaaaaaaa.", false},
	{".*(es).*", "Essential services are provided by regular expressions.", true},
}
