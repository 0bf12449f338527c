package live

import "strings"

// LivePhrases signal that a stream has started.
var LivePhrases = []string{
	"is now live on youtube",
	"youtube live",
	"正在直播",
	"開台",
	"直播中",
}

// VideoPhrases signal a recorded video upload. They override LivePhrases because the
// notification bot reuses "live" wording in some upload messages.
var VideoPhrases = []string{
	"published a video",
	"發布了影片",
	"剛剛發佈了影片",
}

// SearchText flattens a message into one lowercased string: the content first, then each
// embed's non-empty title, description, author name and footer text joined by spaces.
func SearchText(m Message) string {
	var b strings.Builder
	b.WriteString(m.Content)
	for _, e := range m.Embeds {
		parts := make([]string, 0, 4)
		for _, s := range []string{e.Title, e.Description, e.AuthorName, e.FooterText} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			continue
		}
		b.WriteByte('\n')
		b.WriteString(strings.Join(parts, " "))
	}
	return strings.ToLower(b.String())
}

// IsLive reports whether m announces a stream going live.
// Matching is plain substring search, no word boundaries.
func IsLive(m Message) bool {
	hay := SearchText(m)
	return containsAny(hay, LivePhrases) && !containsAny(hay, VideoPhrases)
}

func containsAny(hay string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(hay, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
