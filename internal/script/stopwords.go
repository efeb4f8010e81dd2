package script

// Fixed stopword lists per supported language. Unknown languages fall back
// to the English list, which is harmless for scripts in other Latin-script
// languages: unmatched stopwords simply stay in the ranking.

func stopwordsFor(iso string) map[string]struct{} {
	switch iso {
	case "ja":
		return japaneseStopwords
	default:
		return englishStopwords
	}
}

var englishStopwords = toSet([]string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "did", "do",
	"does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "i", "if", "in", "into",
	"is", "it", "its", "itself", "just", "me", "more", "most", "my",
	"myself", "no", "nor", "not", "now", "of", "off", "on", "once", "only",
	"or", "other", "our", "ours", "ourselves", "out", "over", "own", "s",
	"same", "she", "should", "so", "some", "such", "t", "than", "that",
	"the", "their", "theirs", "them", "themselves", "then", "there",
	"these", "they", "this", "those", "through", "to", "too", "under",
	"until", "up", "very", "was", "we", "were", "what", "when", "where",
	"which", "while", "who", "whom", "why", "will", "with", "you", "your",
	"yours", "yourself", "yourselves",
})

// Mostly particles, copulas and light verbs; these dominate hiragana runs
// once tokens are split at writing-system boundaries.
var japaneseStopwords = toSet([]string{
	"の", "に", "は", "を", "た", "が", "で", "て", "と", "し", "れ", "さ",
	"ある", "いる", "も", "する", "から", "な", "こと", "として", "い",
	"や", "れる", "など", "なっ", "ない", "この", "ため", "その", "あっ",
	"よう", "また", "もの", "という", "あり", "まで", "られ", "なる",
	"へ", "か", "だ", "これ", "によって", "により", "おり", "より",
	"による", "ず", "なり", "られる", "において", "ば", "なかっ", "なく",
	"しかし", "について", "せ", "だっ", "その後", "できる", "それ",
	"う", "ので", "なお", "のみ", "でき", "き", "つ", "における",
	"および", "いう", "さらに", "でも", "ら", "たり", "です", "ます",
	"ください", "ましょう", "お",
})

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
