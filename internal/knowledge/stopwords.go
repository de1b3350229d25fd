package knowledge

// stopwords is the fixed set of common English function words excluded from
// term-frequency extraction during fusion.
var stopwords = map[string]bool{}

func init() {
	for _, w := range stopwordList {
		stopwords[w] = true
	}
}

var stopwordList = []string{
	"a", "am", "an", "as", "at", "be", "by", "do", "go", "ha", "he", "if",
	"in", "is", "it", "me", "my", "no", "of", "on", "or", "so", "to", "up",
	"us", "wa", "we",
	"all", "and", "any", "are", "ask", "boy", "but", "can", "day", "did",
	"eat", "end", "eye", "far", "for", "get", "had", "has", "her", "him",
	"his", "how", "its", "let", "may", "new", "not", "now", "oil", "old",
	"one", "our", "out", "put", "run", "say", "sea", "see", "set", "she",
	"sit", "too", "try", "two", "use", "was", "way", "who", "why", "you",
	"also", "back", "been", "both", "call", "came", "case", "come", "does",
	"done", "down", "each", "face", "fact", "feel", "find", "five", "from",
	"give", "good", "hand", "head", "hear", "help", "high", "home", "into",
	"just", "keep", "kind", "know", "land", "last", "left", "like", "line",
	"live", "long", "look", "made", "make", "many", "most", "move", "much",
	"must", "name", "need", "next", "once", "only", "open", "over", "part",
	"play", "read", "said", "same", "seem", "seen", "show", "side", "some",
	"soon", "stop", "such", "sure", "take", "talk", "tell", "than", "that",
	"them", "then", "they", "this", "time", "told", "turn", "upon", "very",
	"well", "went", "were", "what", "when", "will", "with", "word", "work",
	"year", "your",
	"about", "after", "being", "could", "every", "first", "great", "might",
	"never", "other", "shall", "still", "there", "their", "these", "think",
	"those", "where", "which", "while", "would",
}
